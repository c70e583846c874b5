package extraction

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const seoPageText = `SEO Report for The George Centre Jul 1, 2025 - Sep 30, 2025
Website performance overview
Sessions Active users New users Key events Engagement rate Bounce rate Average session duration
22,837 14,350 13,703 1,204 61.2% 38.8% 00:02:31
11.8% 14.8% 15.3% -2.1% 0.4% -0.4% N/A`

const adsPageText = `Google Ads for The George Centre Jul 1, 2025 - Sep 30, 2025
Campaign performance with cost per click trends
Clicks Impressions CTR Conversions Conv. rate Avg. CPC Cost
1,523 48,210 3.16% 87 5.71% $1.42 $2,163.55
4.2% -1.8% 6.1% 12.0% 7.4% -3.0% 1.1%`

func TestExtractor_Extract(t *testing.T) {
	e := NewExtractor(testLogger())

	t.Run("complete seo page", func(t *testing.T) {
		result := e.Extract(Page{Text: seoPageText}, "tgc_seo.pdf")

		assert.Equal(t, "The George Centre", result.BusinessName)
		assert.Equal(t, "Jul 1, 2025 - Sep 30, 2025", result.ReportDate)
		assert.Equal(t, "September 2025", result.ReportMonth)
		assert.Equal(t, ReportTypeSEO, result.ReportType)
		assert.Equal(t, "tgc_seo.pdf", result.SourceFile)
		assert.Empty(t, result.Errors)
		assert.Equal(t, 7, result.Kpis.Len())
		assert.True(t, Validate(result))
	})

	t.Run("complete google ads page", func(t *testing.T) {
		result := e.Extract(Page{Text: adsPageText}, "tgc_google_ads.pdf")

		assert.Equal(t, ReportTypeGoogleAds, result.ReportType)
		assert.Equal(t, 7, result.Kpis.Len())
		assert.Empty(t, result.Errors)
	})

	t.Run("schema exclusivity", func(t *testing.T) {
		result := e.Extract(Page{Text: adsPageText}, "ads.pdf")
		for _, field := range result.Kpis.Fields() {
			assert.NotContains(t, SEOKpiFields, field)
		}

		result = e.Extract(Page{Text: seoPageText}, "seo.pdf")
		for _, field := range result.Kpis.Fields() {
			assert.NotContains(t, GoogleAdsKpiFields, field)
		}
	})

	t.Run("idempotent over identical input", func(t *testing.T) {
		a := e.Extract(Page{Text: seoPageText}, "tgc_seo.pdf")
		b := e.Extract(Page{Text: seoPageText}, "tgc_seo.pdf")
		assert.True(t, reflect.DeepEqual(a, b))
	})

	t.Run("empty page is malformed source", func(t *testing.T) {
		result := e.Extract(Page{}, "blank.pdf")
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "No extractable text or tables")
		assert.Equal(t, ReportTypeSEO, result.ReportType)
		assert.False(t, Validate(result))
	})

	t.Run("tables preferred and text fills gaps", func(t *testing.T) {
		// Table carries a conflicting Sessions value; the table wins.
		page := Page{
			Text: seoPageText,
			Tables: [][][]string{{
				{"Sessions", "99,999"},
			}},
		}
		result := e.Extract(page, "mixed.pdf")
		sessions, ok := result.Kpis.Get("Sessions")
		require.True(t, ok)
		assert.Equal(t, "99,999", sessions.Value)

		// Remaining fields come from the text scanner.
		active, ok := result.Kpis.Get("Active users")
		require.True(t, ok)
		assert.Equal(t, "14,350", active.Value)
	})

	t.Run("accumulates missing kpi error", func(t *testing.T) {
		// Tables provide five of seven fields, text has no KPI block.
		page := Page{
			Text: "SEO Report for The George Centre Jul 1, 2025 - Sep 30, 2025\nengagement rate and bounce rate discussion",
			Tables: [][][]string{{
				{"Sessions", "22,837"},
				{"Active users", "14,350"},
				{"New users", "13,703"},
				{"Key events", "1,204"},
				{"Engagement rate", "61.2%"},
			}},
		}
		result := e.Extract(page, "partial.pdf")

		assert.Equal(t, 5, result.Kpis.Len())
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "Missing KPIs: Bounce rate, Average session duration", result.Errors[0])
		assert.True(t, Validate(result))
	})

	t.Run("panic becomes last error entry, result still returned", func(t *testing.T) {
		// A nil classifier makes the classification step panic, standing in
		// for any unexpected parse failure mid-extraction.
		broken := &Extractor{logger: testLogger()}
		result := broken.Extract(Page{Text: seoPageText}, "tgc_seo.pdf")

		require.NotNil(t, result)
		require.NotEmpty(t, result.Errors)
		assert.Contains(t, result.Errors[len(result.Errors)-1],
			"Failed to extract data from tgc_seo.pdf")
		assert.Equal(t, "tgc_seo.pdf", result.SourceFile)
	})

	t.Run("missing name and month accumulate", func(t *testing.T) {
		result := e.Extract(Page{Text: "42 meaningless numbers\nno structure here"}, "junk.pdf")
		assert.Contains(t, result.Errors, "Could not extract business name")
		assert.Contains(t, result.Errors, "Could not extract report date/month")
		assert.False(t, Validate(result))
	})
}

func TestValidate(t *testing.T) {
	base := func() *Result {
		r := &Result{
			BusinessName: "Acme",
			ReportMonth:  "January 2025",
			Kpis:         NewKpiSet(),
		}
		for _, f := range SEOKpiFields[:4] {
			r.Kpis.Set(f, KpiValue{Value: "1"})
		}
		return r
	}

	t.Run("valid", func(t *testing.T) {
		assert.True(t, Validate(base()))
	})

	t.Run("missing name", func(t *testing.T) {
		r := base()
		r.BusinessName = ""
		assert.False(t, Validate(r))
	})

	t.Run("missing month", func(t *testing.T) {
		r := base()
		r.ReportMonth = ""
		assert.False(t, Validate(r))
	})

	t.Run("too few kpis", func(t *testing.T) {
		r := &Result{BusinessName: "Acme", ReportMonth: "January 2025", Kpis: NewKpiSet()}
		r.Kpis.Set("Sessions", KpiValue{Value: "1"})
		assert.False(t, Validate(r))
	})
}
