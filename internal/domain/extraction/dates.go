package extraction

import (
	"regexp"
	"time"
)

// datePattern pairs a structural regex with the time layouts its capture may
// parse as. Patterns are tried in order; the first structural match wins and
// parsing then walks the layouts until one succeeds.
type datePattern struct {
	re      *regexp.Regexp
	layouts []string
	isRange bool
}

var datePatterns = []datePattern{
	// Looker Studio period range: "Jul 1, 2025 - Sep 30, 2025". The report
	// month comes from the end date, since the closing month of the period
	// is the month the report covers.
	{
		re:      regexp.MustCompile(`[A-Z][a-z]{2}\s+\d{1,2},\s+\d{4}\s*-\s*([A-Z][a-z]{2}\s+\d{1,2},\s+\d{4})`),
		layouts: []string{"Jan 2, 2006"},
		isRange: true,
	},
	// Explicit labels: "Date: January 2025", "Period: January 2025".
	{
		re:      regexp.MustCompile(`(?i)(?:Date|Period|Month):\s*([A-Za-z]+\s+\d{4})`),
		layouts: []string{"January 2006"},
	},
	// Full date in running text: "January 15, 2025".
	{
		re:      regexp.MustCompile(`([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
		layouts: []string{"January 2, 2006", "January 2 2006"},
	},
	// Slash date: "01/15/2025".
	{
		re:      regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`),
		layouts: []string{"1/2/2006"},
	},
	// ISO date: "2025-01-15".
	{
		re:      regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
		layouts: []string{"2006-01-02"},
	},
}

// ExtractDate finds the reporting period in the page text. It returns the raw
// matched date (the full range text for period ranges, an ISO date otherwise)
// and a "January 2006" month label, or ("", "") when nothing parses.
func ExtractDate(text string) (rawDate, monthLabel string) {
	for _, p := range datePatterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		for _, layout := range p.layouts {
			t, err := time.Parse(layout, match[1])
			if err != nil {
				continue
			}
			if p.isRange {
				// Keep the vendor's own range text as the raw date.
				return match[0], t.Format("January 2006")
			}
			return t.Format("2006-01-02"), t.Format("January 2006")
		}
	}
	return "", ""
}
