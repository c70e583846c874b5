package roster

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// knownColumns are the headers the typed ClientRecord fields cover; anything
// else goes into the record's Extra bag.
var knownColumns = map[string]bool{
	"Client-Name":             true,
	"Contact-Name":            true,
	"Contact-Email":           true,
	"Phone":                   true,
	"SEO-Introduction":        true,
	"Google-Ads-Introduction": true,
}

// Roster is the loaded client list.
type Roster struct {
	clients []*ClientRecord
	logger  *slog.Logger
}

// LoadFile reads the roster from a CSV file on disk.
func LoadFile(path string, logger *slog.Logger) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open client database: %w", err)
	}
	defer f.Close()
	return Load(f, logger)
}

// Load parses the roster CSV. Rows without a Client-Name are skipped; rows
// missing contact details load anyway with a warning, since a reviewer can
// fill them in before anything is sent.
func Load(r io.Reader, logger *slog.Logger) (*Roster, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read client database: %w", err)
	}

	// Same reader settings as readExtraColumns so both passes accept or
	// reject a given row identically.
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows []*ClientRecord
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("parse client database: %w", err)
	}

	extras, err := readExtraColumns(data)
	if err != nil {
		return nil, fmt.Errorf("parse client database: %w", err)
	}

	roster := &Roster{logger: logger}
	for i, row := range rows {
		row.Name = strings.TrimSpace(row.Name)
		if row.Name == "" {
			logger.Debug("skipping roster row with empty client name", slog.Int("row", i+2))
			continue
		}
		if strings.TrimSpace(row.ContactEmail) == "" {
			logger.Warn("roster row missing contact email",
				slog.Int("row", i+2), slog.String("client", row.Name))
		}
		if strings.TrimSpace(row.ContactName) == "" {
			logger.Warn("roster row missing contact name",
				slog.Int("row", i+2), slog.String("client", row.Name))
		}
		if i < len(extras) {
			row.Extra = extras[i]
		}
		roster.clients = append(roster.clients, row)
	}

	logger.Info("client roster loaded", slog.Int("clients", len(roster.clients)))
	return roster, nil
}

// readExtraColumns collects the cells of headers the typed record doesn't
// cover, index-aligned with the gocsv row order.
func readExtraColumns(data []byte) ([]map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var unknown []int
	for i, name := range header {
		if !knownColumns[strings.TrimSpace(name)] {
			unknown = append(unknown, i)
		}
	}

	var extras []map[string]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var extra map[string]string
		if len(unknown) > 0 {
			extra = make(map[string]string, len(unknown))
			for _, i := range unknown {
				if i < len(row) {
					extra[strings.TrimSpace(header[i])] = strings.TrimSpace(row[i])
				}
			}
		}
		extras = append(extras, extra)
	}
	return extras, nil
}

// Clients returns the loaded records. Callers must treat them as read-only.
func (r *Roster) Clients() []*ClientRecord {
	return r.clients
}

// Len returns the number of loaded clients.
func (r *Roster) Len() int {
	return len(r.clients)
}

// ValidationReport lists data-quality problems a reviewer should fix in the
// source spreadsheet before a send run.
type ValidationReport struct {
	TotalClients        int
	DuplicateNames      []string
	MissingEmails       []string
	MissingContactNames []string
	MissingSEOIntros    []string
	MissingAdsIntros    []string
}

// HasCriticalIssues reports whether the roster has problems that would block
// draft creation (duplicates or missing contact details). Missing intro
// paragraphs are cosmetic and don't count.
func (v *ValidationReport) HasCriticalIssues() bool {
	return len(v.DuplicateNames) > 0 || len(v.MissingEmails) > 0 || len(v.MissingContactNames) > 0
}

// Validate checks the roster for duplicates and missing fields.
func (r *Roster) Validate() *ValidationReport {
	report := &ValidationReport{TotalClients: len(r.clients)}

	nameCounts := make(map[string]int)
	for _, c := range r.clients {
		nameCounts[strings.ToLower(c.Name)]++
	}
	for name, count := range nameCounts {
		if count > 1 {
			report.DuplicateNames = append(report.DuplicateNames, name)
		}
	}

	for _, c := range r.clients {
		if strings.TrimSpace(c.ContactEmail) == "" {
			report.MissingEmails = append(report.MissingEmails, c.Name)
		}
		if strings.TrimSpace(c.ContactName) == "" {
			report.MissingContactNames = append(report.MissingContactNames, c.Name)
		}
		if strings.TrimSpace(c.SEOIntro) == "" {
			report.MissingSEOIntros = append(report.MissingSEOIntros, c.Name)
		}
		if strings.TrimSpace(c.GoogleAdsIntro) == "" {
			report.MissingAdsIntros = append(report.MissingAdsIntros, c.Name)
		}
	}

	if report.HasCriticalIssues() {
		r.logger.Warn("roster validation found issues",
			slog.Int("duplicates", len(report.DuplicateNames)),
			slog.Int("missing_emails", len(report.MissingEmails)),
			slog.Int("missing_contacts", len(report.MissingContactNames)),
		)
	} else {
		r.logger.Info("roster validation passed", slog.Int("clients", report.TotalClients))
	}

	return report
}
