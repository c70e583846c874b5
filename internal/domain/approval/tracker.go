// Package approval stages generated emails in a human-reviewable queue.
// Nothing is sent until a reviewer flips an entry to Approved; the queue
// itself is a plain CSV so it can be eyeballed or edited in any spreadsheet
// tool.
package approval

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gocarina/gocsv"
)

// Status is the review state of a staged email.
type Status string

const (
	StatusPending       Status = "Pending"
	StatusApproved      Status = "Approved"
	StatusNeedsRevision Status = "Needs Revision"
)

// ValidStatus reports whether s is one of the recognized review states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusNeedsRevision:
		return true
	}
	return false
}

// Entry is one staged email in the review queue.
type Entry struct {
	ID               string `csv:"ID"`
	ClientName       string `csv:"Client-Name"`
	BusinessName     string `csv:"Business-Name"`
	Email            string `csv:"Email"`
	ReportType       string `csv:"Report-Type"`
	ReportMonth      string `csv:"Report-Month"`
	Subject          string `csv:"Subject"`
	Status           Status `csv:"Status"`
	Notes            string `csv:"Notes"`
	ExtractionErrors string `csv:"Extraction-Errors"`
	GeneratedAt      string `csv:"Generated-Date"`
}

// Summary counts entries per review state.
type Summary struct {
	Total         int
	Pending       int
	Approved      int
	NeedsRevision int
}

// Tracker persists the review queue to a CSV file.
type Tracker struct {
	path   string
	logger *slog.Logger
}

// NewTracker points the tracker at its CSV file; the file is created on
// first Add.
func NewTracker(path string, logger *slog.Logger) *Tracker {
	return &Tracker{path: path, logger: logger}
}

// All loads every entry. A missing tracking file is an empty queue, not an
// error.
func (t *Tracker) All() ([]*Entry, error) {
	f, err := os.Open(t.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open tracking file: %w", err)
	}
	defer f.Close()

	var entries []*Entry
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		if err == gocsv.ErrEmptyCSVFile {
			return nil, nil
		}
		return nil, fmt.Errorf("parse tracking file: %w", err)
	}
	return entries, nil
}

// Add appends entries to the queue with status Pending and a generation
// timestamp.
func (t *Tracker) Add(entries ...*Entry) error {
	existing, err := t.All()
	if err != nil {
		return err
	}

	now := time.Now().Format("2006-01-02 15:04")
	for _, e := range entries {
		if e.Status == "" {
			e.Status = StatusPending
		}
		if e.GeneratedAt == "" {
			e.GeneratedAt = now
		}
		existing = append(existing, e)
	}

	if err := t.save(existing); err != nil {
		return err
	}
	t.logger.Info("entries staged for review",
		slog.Int("added", len(entries)),
		slog.Int("total", len(existing)),
	)
	return nil
}

// UpdateStatus changes the review state of one entry, appending notes.
func (t *Tracker) UpdateStatus(id string, status Status, notes string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid approval status %q", status)
	}

	entries, err := t.All()
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.ID != id {
			continue
		}
		e.Status = status
		if notes != "" {
			e.Notes = notes
		}
		if err := t.save(entries); err != nil {
			return err
		}
		t.logger.Info("review status updated",
			slog.String("id", id),
			slog.String("client", e.ClientName),
			slog.String("status", string(status)),
		)
		return nil
	}

	return fmt.Errorf("no tracked entry with id %q", id)
}

// Pending returns entries still awaiting review.
func (t *Tracker) Pending() ([]*Entry, error) {
	return t.filtered(StatusPending)
}

// Approved returns entries cleared for sending.
func (t *Tracker) Approved() ([]*Entry, error) {
	return t.filtered(StatusApproved)
}

func (t *Tracker) filtered(status Status) ([]*Entry, error) {
	entries, err := t.All()
	if err != nil {
		return nil, err
	}
	var out []*Entry
	for _, e := range entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

// Summarize counts the queue by state.
func (t *Tracker) Summarize() (*Summary, error) {
	entries, err := t.All()
	if err != nil {
		return nil, err
	}
	s := &Summary{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case StatusApproved:
			s.Approved++
		case StatusNeedsRevision:
			s.NeedsRevision++
		default:
			s.Pending++
		}
	}
	return s, nil
}

// Clear removes the tracking file, starting a fresh review cycle.
func (t *Tracker) Clear() error {
	err := os.Remove(t.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (t *Tracker) save(entries []*Entry) error {
	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("write tracking file: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&entries, f); err != nil {
		return fmt.Errorf("write tracking file: %w", err)
	}
	return nil
}
