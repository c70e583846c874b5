// Package email renders personalized report emails and delivers the approved
// ones through the Resend API.
package email

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/craig-dws/Email-Reports/internal/domain/extraction"
	"github.com/craig-dws/Email-Reports/internal/domain/roster"
)

//go:embed templates/report.html
var reportTemplateHTML string

// Config carries the agency boilerplate that fills the non-personalized
// parts of every email.
type Config struct {
	AgencyName    string
	AgencyEmail   string
	AgencyPhone   string
	AgencyWebsite string

	StandardSEOParagraph     string
	StandardSEMParagraph     string
	StandardClosingParagraph string
}

// Email is a fully rendered message, staged for review before anything is
// sent.
type Email struct {
	Subject        string
	HTMLBody       string
	TextBody       string
	RecipientEmail string
	RecipientName  string
}

// KpiRow is one line of the rendered KPI table.
type KpiRow struct {
	Name   string
	Value  string
	Change string
	Trend  string // "up", "down", or ""
}

type templateContext struct {
	Subject          string
	FirstName        string
	BusinessName     string
	ReportLabel      string
	ReportMonth      string
	Intro            template.HTML
	StandardText     string
	Kpis             []KpiRow
	ClosingParagraph string
	AgencyName       string
	AgencyEmail      string
	AgencyPhone      string
	AgencyWebsite    string
}

// Generator renders one email per matched (client, extraction result) pair.
type Generator struct {
	tmpl   *template.Template
	cfg    Config
	logger *slog.Logger
}

// NewGenerator parses the embedded template once up front.
func NewGenerator(cfg Config, logger *slog.Logger) (*Generator, error) {
	tmpl, err := template.New("report").Parse(reportTemplateHTML)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	if cfg.StandardSEOParagraph == "" {
		cfg.StandardSEOParagraph = "Your keyword rankings continue to improve."
	}
	if cfg.StandardSEMParagraph == "" {
		cfg.StandardSEMParagraph = "Your Google Ads campaigns continue to drive quality traffic."
	}
	if cfg.StandardClosingParagraph == "" {
		cfg.StandardClosingParagraph = "Please review the attached PDF for your complete monthly report."
	}
	return &Generator{tmpl: tmpl, cfg: cfg, logger: logger}, nil
}

// Generate renders the subject, HTML body, and plain-text fallback for one
// client. The roster's per-service introduction is trusted HTML (the agency
// writes it); everything extracted from the PDF is escaped by the template.
func (g *Generator) Generate(client *roster.ClientRecord, result *extraction.Result) (*Email, error) {
	serviceType := client.ServiceTypeFor(result.ReportType)

	var reportLabel, standardText string
	if serviceType == "SEM" {
		reportLabel = "Google Ads Report"
		standardText = g.cfg.StandardSEMParagraph
	} else {
		reportLabel = "SEO Report"
		standardText = g.cfg.StandardSEOParagraph
	}

	month := result.ReportMonth
	if month == "" {
		month = "Monthly"
	}
	subject := fmt.Sprintf("Your %s %s", month, reportLabel)

	ctx := templateContext{
		Subject:          subject,
		FirstName:        client.ContactName,
		BusinessName:     client.Name,
		ReportLabel:      reportLabel,
		ReportMonth:      month,
		Intro:            template.HTML(client.IntroFor(result.ReportType)),
		StandardText:     standardText,
		Kpis:             buildKpiRows(result),
		ClosingParagraph: g.cfg.StandardClosingParagraph,
		AgencyName:       g.cfg.AgencyName,
		AgencyEmail:      g.cfg.AgencyEmail,
		AgencyPhone:      g.cfg.AgencyPhone,
		AgencyWebsite:    g.cfg.AgencyWebsite,
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("render email for %s: %w", client.Name, err)
	}

	msg := &Email{
		Subject:        subject,
		HTMLBody:       buf.String(),
		TextBody:       renderTextBody(ctx),
		RecipientEmail: client.ContactEmail,
		RecipientName:  client.ContactName,
	}

	g.logger.Info("email generated",
		slog.String("client", client.Name),
		slog.String("subject", subject),
	)
	return msg, nil
}

// buildKpiRows converts the extracted KPI set into display rows: currency
// metrics re-rendered through go-money, change percentages annotated with a
// trend direction.
func buildKpiRows(result *extraction.Result) []KpiRow {
	var rows []KpiRow
	for _, field := range result.Kpis.Fields() {
		v, _ := result.Kpis.Get(field)
		row := KpiRow{
			Name:   field,
			Value:  v.Value,
			Change: v.Change,
			Trend:  trendOf(v.Change),
		}
		if extraction.CurrencyKpiFields[field] {
			row.Value = formatCurrency(v.Value)
		}
		rows = append(rows, row)
	}
	return rows
}

// trendOf classifies a change token as up or down; "N/A", "", and a literal
// zero give no trend.
func trendOf(change string) string {
	cleaned := strings.TrimSuffix(strings.TrimSpace(change), "%")
	if cleaned == "" || cleaned == "N/A" {
		return ""
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return ""
	}
	switch d.Sign() {
	case 1:
		return "up"
	case -1:
		return "down"
	}
	return ""
}

// formatCurrency normalizes a vendor dollar amount ("$1,234.5") to a proper
// USD display string. Unparseable values pass through untouched.
func formatCurrency(raw string) string {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(raw))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return raw
	}
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// renderTextBody is the plain-text fallback for clients whose mail readers
// strip HTML.
func renderTextBody(ctx templateContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n", ctx.FirstName)
	fmt.Fprintf(&sb, "Your %s %s for %s is attached.\n\n", ctx.ReportMonth, ctx.ReportLabel, ctx.BusinessName)
	if len(ctx.Kpis) > 0 {
		sb.WriteString("Key results:\n")
		for _, row := range ctx.Kpis {
			if row.Change != "" {
				fmt.Fprintf(&sb, "  %s: %s (%s)\n", row.Name, row.Value, row.Change)
			} else {
				fmt.Fprintf(&sb, "  %s: %s\n", row.Name, row.Value)
			}
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%s\n\n%s\n", ctx.StandardText, ctx.ClosingParagraph)
	if ctx.AgencyName != "" {
		fmt.Fprintf(&sb, "\n%s\n%s | %s\n", ctx.AgencyName, ctx.AgencyEmail, ctx.AgencyPhone)
	}
	return sb.String()
}
