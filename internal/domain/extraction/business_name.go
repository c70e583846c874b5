package extraction

import (
	"regexp"
	"strings"
)

// Business name extraction is a chain of label-anchored patterns tried in
// order, with the first non-empty line of the page as a last resort. Each
// pattern captures the name portion; the chain stops at the first capture
// longer than three characters after whitespace cleanup.
var namePatterns = []*regexp.Regexp{
	// Label-anchored: "SEO Report for Acme Plumbing Jul 1, 2025 ..." or
	// "Client: Acme Plumbing". The trailing alternation stops the capture at
	// an abbreviated date or end of line.
	regexp.MustCompile(`(?m)(?:SEO Report for|Google Ads for|Report for|Client:|Business:)\s+([A-Z][A-Za-z0-9\s&,.'-]+?)(?:\s+[A-Z][a-z]{2}\s+\d|\n|$)`),
	// Name-like line followed by a service-type suffix: "Acme Plumbing - SEO".
	regexp.MustCompile(`(?m)^([A-Z][A-Za-z0-9\s&,.'-]{3,}?)(?:\s*-\s*(?:SEO|SEM|Google Ads)|\n)`),
}

// Lines that disqualify the first-line fallback: page markers, report
// boilerplate, date labels, leading digits.
var nameFallbackReject = regexp.MustCompile(`^\d|^Page\s+\d|^Report|^Date:`)

var whitespaceRun = regexp.MustCompile(`\s+`)

const maxBusinessNameLen = 100

// ExtractBusinessName returns the best-effort client name found in the page
// text, or "" when no pattern matches and the fallback line is rejected.
func ExtractBusinessName(text string) string {
	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		name := whitespaceRun.ReplaceAllString(strings.TrimSpace(match[1]), " ")
		if len(name) > 3 {
			return name
		}
	}

	// Fallback: the header is usually the very first line of the page.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if nameFallbackReject.MatchString(line) {
			return ""
		}
		// Truncate by runes so a multi-byte character never gets split.
		if runes := []rune(line); len(runes) > maxBusinessNameLen {
			line = string(runes[:maxBusinessNameLen])
		}
		return line
	}

	return ""
}
