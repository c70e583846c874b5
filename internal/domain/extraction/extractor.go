package extraction

import (
	"fmt"
	"log/slog"
	"strings"
)

// Page is the first-page view of a report PDF: its plain text and whatever
// table structures the PDF facility could recover. Deeper pages are never
// consulted; Looker Studio puts the header and KPI block on page one.
type Page struct {
	Text   string
	Tables [][][]string // tables -> rows -> cells
}

// Result is the extraction output for one PDF. Built fresh per file and
// immutable once returned. Optional fields are "" when nothing matched;
// Errors collects every non-fatal problem encountered along the way.
type Result struct {
	BusinessName string     `json:"business_name,omitempty"`
	ReportDate   string     `json:"report_date,omitempty"`
	ReportMonth  string     `json:"report_month,omitempty"`
	ReportType   ReportType `json:"report_type"`
	Kpis         *KpiSet    `json:"kpis"`
	Errors       []string   `json:"extraction_errors,omitempty"`
	SourceFile   string     `json:"source_filename"`
}

// Extractor runs the full extraction pass over a report page.
type Extractor struct {
	classifier *Classifier
	logger     *slog.Logger
}

// NewExtractor creates an extractor with an injected logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{
		classifier: NewClassifier(),
		logger:     logger,
	}
}

// Extract produces a best-effort Result for a report page. It never panics
// past its boundary: missing name, period, or metrics become entries in
// Result.Errors and the caller decides whether the partial result is usable.
// The result is named so the recover branch returns the partial struct
// instead of nil.
func (e *Extractor) Extract(page Page, sourceFile string) (result *Result) {
	result = &Result{
		ReportType: ReportTypeSEO,
		Kpis:       NewKpiSet(),
		SourceFile: sourceFile,
	}

	defer func() {
		// A parse panic on one file must not take down the batch; convert it
		// into the last error entry instead.
		if r := recover(); r != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Failed to extract data from %s: %v", sourceFile, r))
			e.logger.Error("extraction panicked",
				slog.String("file", sourceFile),
				slog.Any("panic", r),
			)
		}
	}()

	if strings.TrimSpace(page.Text) == "" && len(page.Tables) == 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("No extractable text or tables on first page of %s", sourceFile))
		return result
	}

	reportType, tie := e.classifier.Classify(page.Text)
	result.ReportType = reportType
	if tie && page.Text != "" {
		// Resolved to SEO by default; keep it visible for the reviewer.
		result.Errors = append(result.Errors, "Ambiguous report type, defaulted to SEO")
	}

	result.BusinessName = ExtractBusinessName(page.Text)
	result.ReportDate, result.ReportMonth = ExtractDate(page.Text)

	expected := KpiFieldsFor(result.ReportType)
	result.Kpis = e.extractKpis(page, expected)

	if result.BusinessName == "" {
		result.Errors = append(result.Errors, "Could not extract business name")
	}
	if result.ReportMonth == "" {
		result.Errors = append(result.Errors, "Could not extract report date/month")
	}
	if missing := result.Kpis.Missing(expected); len(missing) > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Missing KPIs: %s", strings.Join(missing, ", ")))
	}

	if len(result.Errors) > 0 {
		e.logger.Warn("extraction finished with warnings",
			slog.String("file", sourceFile),
			slog.String("warnings", strings.Join(result.Errors, "; ")),
		)
	} else {
		e.logger.Info("extraction complete",
			slog.String("file", sourceFile),
			slog.String("business", result.BusinessName),
			slog.String("month", result.ReportMonth),
			slog.String("type", string(result.ReportType)),
		)
	}

	return result
}

// extractKpis merges the table view and the positional text fallback.
// Table-derived values win per-field; the text scanner only fills in what
// the tables missed. The merged set is rebuilt in schema order so the result
// always reads left to right like the vendor layout.
func (e *Extractor) extractKpis(page Page, expected []string) *KpiSet {
	fromTables := ExtractKpisFromTables(page.Tables, expected)

	var fromText *KpiSet
	if fromTables.Len() < len(expected) {
		fromText = ScanKpiLines(strings.Split(page.Text, "\n"), expected)
	}

	merged := NewKpiSet()
	for _, field := range expected {
		if v, ok := fromTables.Get(field); ok {
			merged.Set(field, v)
			continue
		}
		if fromText != nil {
			if v, ok := fromText.Get(field); ok {
				merged.Set(field, v)
			}
		}
	}
	return merged
}

// Validate reports whether a result is complete enough to drive an email:
// business name and report month present plus at least four extracted KPIs.
// This is a convenience check for callers, not a hard gate.
func Validate(result *Result) bool {
	if result.BusinessName == "" || result.ReportMonth == "" {
		return false
	}
	return result.Kpis.Len() >= 4
}
