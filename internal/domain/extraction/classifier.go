package extraction

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Keyword vocabularies for report-type detection. Each keyword counts once
// when present anywhere in the page text, matching how the reports actually
// differ: Google Ads pages talk about clicks and cost, SEO pages about
// engagement and organic traffic.
var (
	googleAdsKeywords = []string{
		"google ads", "cpc", "clicks", "impressions", "ctr", "cost per click",
	}
	seoKeywords = []string{
		"seo report", "organic search", "bounce rate", "engagement rate",
		"active users", "key events",
	}
)

// Classifier decides whether a report page belongs to the SEO or Google Ads
// family by scoring its text against two keyword vocabularies. Classification
// is text-only and deterministic; filename and sender are never consulted.
type Classifier struct {
	adsMatcher *ahocorasick.Matcher
	seoMatcher *ahocorasick.Matcher
}

// NewClassifier builds the keyword matchers once; Classify is then read-only
// and safe for concurrent use.
func NewClassifier() *Classifier {
	return &Classifier{
		adsMatcher: ahocorasick.NewStringMatcher(googleAdsKeywords),
		seoMatcher: ahocorasick.NewStringMatcher(seoKeywords),
	}
}

// Classify returns the report type for the given page text plus whether the
// keyword scores tied. Strictly higher count wins; any tie, including the
// empty-text 0-0 case, defaults to SEO.
func (c *Classifier) Classify(text string) (ReportType, bool) {
	lower := []byte(strings.ToLower(text))

	// Match reports each vocabulary entry at most once, so the hit count is
	// the number of distinct keywords present.
	adsScore := len(c.adsMatcher.Match(lower))
	seoScore := len(c.seoMatcher.Match(lower))

	if adsScore > seoScore {
		return ReportTypeGoogleAds, false
	}
	if seoScore > adsScore {
		return ReportTypeSEO, false
	}
	return ReportTypeSEO, true
}
