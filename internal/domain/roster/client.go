// Package roster loads the agency's client list from CSV and matches
// extracted business names to client records with exact-then-fuzzy scoring.
// The loaded roster is an immutable in-memory snapshot; matching never
// mutates it, so concurrent lookups need no locking.
package roster

import (
	"github.com/craig-dws/Email-Reports/internal/domain/extraction"
)

// ClientRecord is one roster entry. Tagged fields follow the Client-Name CSV
// schema; columns the schema doesn't know about land in Extra so the loader
// tolerates drift without silently dropping data.
type ClientRecord struct {
	Name           string `csv:"Client-Name"`
	ContactName    string `csv:"Contact-Name"`
	ContactEmail   string `csv:"Contact-Email"`
	Phone          string `csv:"Phone"`
	SEOIntro       string `csv:"SEO-Introduction"`
	GoogleAdsIntro string `csv:"Google-Ads-Introduction"`

	// Extra holds unrecognized CSV columns by header name.
	Extra map[string]string `csv:"-"`
}

// ServiceTypeFor maps a report family to the service label used in email
// copy: Google Ads reports are SEM engagements, everything else is SEO.
func (c *ClientRecord) ServiceTypeFor(reportType extraction.ReportType) string {
	if reportType == extraction.ReportTypeGoogleAds {
		return "SEM"
	}
	return "SEO"
}

// IntroFor returns the personalized introduction paragraph for the report
// family, or "" when the roster has none for this client.
func (c *ClientRecord) IntroFor(reportType extraction.ReportType) string {
	if reportType == extraction.ReportTypeGoogleAds {
		return c.GoogleAdsIntro
	}
	return c.SEOIntro
}
