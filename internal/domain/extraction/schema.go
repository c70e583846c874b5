// Package extraction pulls business name, reporting period, and KPI metrics
// out of Looker Studio PDF reports. All entry points are total: malformed
// input degrades to a partial Result with accumulated error strings instead
// of propagating.
package extraction

// ReportType identifies which report family a PDF belongs to, and therefore
// which KPI schema applies.
type ReportType string

const (
	ReportTypeSEO       ReportType = "SEO"
	ReportTypeGoogleAds ReportType = "Google Ads"
)

// SEOKpiFields lists the SEO report metrics in the exact left-to-right order
// Looker Studio renders them. The order drives positional alignment in the
// KPI parser, so it must match the vendor layout.
var SEOKpiFields = []string{
	"Sessions",
	"Active users",
	"New users",
	"Key events",
	"Engagement rate",
	"Bounce rate",
	"Average session duration",
}

// GoogleAdsKpiFields lists the Google Ads report metrics in vendor order.
// "Conv. rate" and "Avg. CPC" are Looker Studio's own abbreviations.
var GoogleAdsKpiFields = []string{
	"Clicks",
	"Impressions",
	"CTR",
	"Conversions",
	"Conv. rate",
	"Avg. CPC",
	"Cost",
}

// KpiFieldsFor returns the ordered field list for a report type.
func KpiFieldsFor(reportType ReportType) []string {
	if reportType == ReportTypeGoogleAds {
		return GoogleAdsKpiFields
	}
	return SEOKpiFields
}

// CurrencyKpiFields marks the Google Ads metrics whose values carry a dollar
// amount rather than a count or percentage.
var CurrencyKpiFields = map[string]bool{
	"Avg. CPC": true,
	"Cost":     true,
}
