// Package workflow orchestrates the monthly report run: sweep the mailbox,
// extract each PDF, match it to a roster client, render the email, and stage
// it for human review. A second phase sends whatever the reviewer approved.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/craig-dws/Email-Reports/internal/domain/approval"
	"github.com/craig-dws/Email-Reports/internal/domain/archive"
	"github.com/craig-dws/Email-Reports/internal/domain/email"
	"github.com/craig-dws/Email-Reports/internal/domain/extraction"
	"github.com/craig-dws/Email-Reports/internal/domain/mailbox"
	"github.com/craig-dws/Email-Reports/internal/domain/roster"
	"github.com/craig-dws/Email-Reports/pkg/metrics"
)

// Pipeline wires the processing stages together. Archive and Sender are
// optional; a nil archive skips indexing and a nil sender makes SendApproved
// an error.
type Pipeline struct {
	Mailbox   mailbox.Mailbox
	Pages     extraction.PageSource
	Extractor *extraction.Extractor
	Matcher   *roster.Matcher
	Generator *email.Generator
	Tracker   *approval.Tracker
	Archive   *archive.Index
	Sender    *email.Sender
	Metrics   *metrics.Metrics
	DraftsDir string
	// Senders restricts the mailbox sweep to these addresses when the
	// backend supports it.
	Senders []string
	Logger  *slog.Logger
}

// RunSummary reports what one processing sweep did.
type RunSummary struct {
	Processed int
	Matched   int
	Unmatched []string
	Drafted   int
	Failures  []string
}

// Run executes the review-staging phase. One bad PDF never aborts the sweep;
// its failure is recorded and the loop moves to the next attachment.
// Unmatched reports stay in the inbox for manual handling.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	if err := os.MkdirAll(p.DraftsDir, 0755); err != nil {
		return nil, fmt.Errorf("create drafts directory: %w", err)
	}

	attachments, err := p.Mailbox.SearchReports(ctx, p.Senders)
	if err != nil {
		return nil, fmt.Errorf("search mailbox: %w", err)
	}

	summary := &RunSummary{}
	for _, att := range attachments {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := p.processOne(ctx, att, summary); err != nil {
			summary.Failures = append(summary.Failures, fmt.Sprintf("%s: %v", att.Filename, err))
			p.Logger.Error("report processing failed",
				slog.String("file", att.Filename),
				slog.Any("error", err),
			)
		}
	}

	p.Logger.Info("processing sweep complete",
		slog.Int("processed", summary.Processed),
		slog.Int("matched", summary.Matched),
		slog.Int("drafted", summary.Drafted),
		slog.Int("unmatched", len(summary.Unmatched)),
		slog.Int("failures", len(summary.Failures)),
	)
	return summary, nil
}

func (p *Pipeline) processOne(ctx context.Context, att mailbox.Attachment, summary *RunSummary) error {
	page, err := p.Pages.FirstPage(att.Data)
	if err != nil {
		return fmt.Errorf("read first page: %w", err)
	}

	result := p.Extractor.Extract(page, att.Filename)
	summary.Processed++
	p.Metrics.ReportsProcessed.Inc()
	if len(result.Errors) > 0 {
		p.Metrics.ExtractionErrors.Inc()
	}

	client := p.Matcher.FindBest(result.BusinessName)
	if client == nil {
		summary.Unmatched = append(summary.Unmatched, att.Filename)
		p.Logger.Warn("no roster match, leaving report in inbox",
			slog.String("file", att.Filename),
			slog.String("business", result.BusinessName),
		)
		return nil
	}
	summary.Matched++
	p.Metrics.ReportsMatched.Inc()

	msg, err := p.Generator.Generate(client, result)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	if err := p.saveDraft(id, msg); err != nil {
		return err
	}

	entry := &approval.Entry{
		ID:               id,
		ClientName:       client.Name,
		BusinessName:     result.BusinessName,
		Email:            client.ContactEmail,
		ReportType:       string(result.ReportType),
		ReportMonth:      result.ReportMonth,
		Subject:          msg.Subject,
		ExtractionErrors: strings.Join(result.Errors, "; "),
	}
	if err := p.Tracker.Add(entry); err != nil {
		return err
	}
	summary.Drafted++
	p.Metrics.DraftsCreated.Inc()

	if p.Archive != nil {
		if err := p.Archive.AddResult(id, client.Name, result); err != nil {
			p.Logger.Warn("archive indexing failed", slog.Any("error", err))
		}
	}

	return p.Mailbox.MarkProcessed(ctx, att.ID)
}

// SendApproved delivers every entry the reviewer approved, reading the
// rendered bodies back from the drafts directory.
func (p *Pipeline) SendApproved(ctx context.Context) (*email.BatchResult, error) {
	if p.Sender == nil {
		return nil, fmt.Errorf("no sender configured; set the email API key")
	}

	approved, err := p.Tracker.Approved()
	if err != nil {
		return nil, err
	}

	var msgs []*email.Email
	result := &email.BatchResult{}
	for _, entry := range approved {
		msg, err := p.loadDraft(entry)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		msgs = append(msgs, msg)
	}

	batch := p.Sender.SendBatch(ctx, msgs)
	result.Sent = batch.Sent
	result.Failed += batch.Failed
	result.Errors = append(result.Errors, batch.Errors...)

	p.Metrics.EmailsSent.Add(float64(result.Sent))
	p.Metrics.EmailsFailed.Add(float64(result.Failed))
	return result, nil
}

func (p *Pipeline) saveDraft(id string, msg *email.Email) error {
	htmlPath := filepath.Join(p.DraftsDir, id+".html")
	if err := os.WriteFile(htmlPath, []byte(msg.HTMLBody), 0644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	textPath := filepath.Join(p.DraftsDir, id+".txt")
	if err := os.WriteFile(textPath, []byte(msg.TextBody), 0644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

func (p *Pipeline) loadDraft(entry *approval.Entry) (*email.Email, error) {
	htmlBody, err := os.ReadFile(filepath.Join(p.DraftsDir, entry.ID+".html"))
	if err != nil {
		return nil, fmt.Errorf("draft for %s: %w", entry.ClientName, err)
	}
	textBody, err := os.ReadFile(filepath.Join(p.DraftsDir, entry.ID+".txt"))
	if err != nil {
		return nil, fmt.Errorf("draft for %s: %w", entry.ClientName, err)
	}
	return &email.Email{
		Subject:        entry.Subject,
		HTMLBody:       string(htmlBody),
		TextBody:       string(textBody),
		RecipientEmail: entry.Email,
		RecipientName:  entry.ClientName,
	}, nil
}
