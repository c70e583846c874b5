package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanKpiLines(t *testing.T) {
	t.Run("positional alignment of header values changes", func(t *testing.T) {
		lines := []string{
			"Sessions Active users New users",
			"22,837 14,350 13,703",
			"11.8% 14.8% 15.3%",
		}
		expected := []string{"Sessions", "Active users", "New users"}

		kpis := ScanKpiLines(lines, expected)
		require.Equal(t, 3, kpis.Len())

		sessions, ok := kpis.Get("Sessions")
		require.True(t, ok)
		assert.Equal(t, KpiValue{Value: "22,837", Change: "11.8%"}, sessions)

		active, ok := kpis.Get("Active users")
		require.True(t, ok)
		assert.Equal(t, KpiValue{Value: "14,350", Change: "14.8%"}, active)

		newUsers, ok := kpis.Get("New users")
		require.True(t, ok)
		assert.Equal(t, KpiValue{Value: "13,703", Change: "15.3%"}, newUsers)
	})

	t.Run("full seo block with duration and percentages", func(t *testing.T) {
		lines := []string{
			"The George Centre",
			"Jul 1, 2025 - Sep 30, 2025",
			"Sessions Active users New users Key events Engagement rate Bounce rate Average session duration",
			"22,837 14,350 13,703 1,204 61.2% 38.8% 00:02:31",
			"11.8% 14.8% 15.3% -2.1% 0.4% -0.4% N/A",
		}

		kpis := ScanKpiLines(lines, SEOKpiFields)
		require.Equal(t, 7, kpis.Len())

		duration, ok := kpis.Get("Average session duration")
		require.True(t, ok)
		assert.Equal(t, "00:02:31", duration.Value)
		assert.Equal(t, "N/A", duration.Change)

		keyEvents, ok := kpis.Get("Key events")
		require.True(t, ok)
		assert.Equal(t, "1,204", keyEvents.Value)
		assert.Equal(t, "-2.1%", keyEvents.Change)

		assert.Equal(t, SEOKpiFields, kpis.Fields())
	})

	t.Run("google ads block with currency", func(t *testing.T) {
		lines := []string{
			"Clicks Impressions CTR Conversions Conv. rate Avg. CPC Cost",
			"1,523 48,210 3.16% 87 5.71% $1.42 $2,163.55",
			"4.2% -1.8% 6.1% 12.0% 7.4% -3.0% 1.1%",
		}

		kpis := ScanKpiLines(lines, GoogleAdsKpiFields)
		require.Equal(t, 7, kpis.Len())

		cost, ok := kpis.Get("Cost")
		require.True(t, ok)
		assert.Equal(t, "$2,163.55", cost.Value)

		cpc, ok := kpis.Get("Avg. CPC")
		require.True(t, ok)
		assert.Equal(t, "$1.42", cpc.Value)
		assert.Equal(t, "-3.0%", cpc.Change)
	})

	t.Run("below threshold yields empty set", func(t *testing.T) {
		lines := []string{
			"Sessions and Bounce rate summary",
			"22,837 38.8%",
			"11.8% -0.4%",
		}
		kpis := ScanKpiLines(lines, SEOKpiFields)
		assert.Equal(t, 0, kpis.Len())
	})

	t.Run("first line wins count ties", func(t *testing.T) {
		lines := []string{
			"Sessions Active users New users",
			"1 2 3",
			"1% 2% 3%",
			"Sessions Active users New users",
			"7 8 9",
			"7% 8% 9%",
		}
		kpis := ScanKpiLines(lines, []string{"Sessions", "Active users", "New users"})
		sessions, ok := kpis.Get("Sessions")
		require.True(t, ok)
		assert.Equal(t, "1", sessions.Value)
	})

	t.Run("field missing from header is skipped", func(t *testing.T) {
		lines := []string{
			"Sessions New users Key events",
			"100 200 300",
			"1% 2% 3%",
		}
		kpis := ScanKpiLines(lines, []string{"Sessions", "Active users", "New users", "Key events"})
		require.Equal(t, 3, kpis.Len())

		_, ok := kpis.Get("Active users")
		assert.False(t, ok)

		// Alignment is positional over the fields actually present.
		newUsers, _ := kpis.Get("New users")
		assert.Equal(t, "200", newUsers.Value)
	})

	t.Run("fewer values than matched fields", func(t *testing.T) {
		lines := []string{
			"Sessions Active users New users",
			"100 200",
			"1% 2%",
		}
		kpis := ScanKpiLines(lines, []string{"Sessions", "Active users", "New users"})
		require.Equal(t, 2, kpis.Len())
		_, ok := kpis.Get("New users")
		assert.False(t, ok)
	})

	t.Run("header needs two following lines", func(t *testing.T) {
		lines := []string{
			"Sessions Active users New users",
			"100 200 300",
		}
		kpis := ScanKpiLines(lines, []string{"Sessions", "Active users", "New users"})
		assert.Equal(t, 0, kpis.Len())
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, 0, ScanKpiLines(nil, SEOKpiFields).Len())
	})
}

func TestExtractKpisFromTables(t *testing.T) {
	t.Run("name value rows", func(t *testing.T) {
		tables := [][][]string{
			{
				{"Sessions", "22,837"},
				{"Bounce rate", "38.8%"},
				{"Irrelevant row", "n/a"},
			},
		}
		kpis := ExtractKpisFromTables(tables, SEOKpiFields)
		require.Equal(t, 2, kpis.Len())

		sessions, _ := kpis.Get("Sessions")
		assert.Equal(t, "22,837", sessions.Value)
		assert.Empty(t, sessions.Change)
	})

	t.Run("short and empty rows ignored", func(t *testing.T) {
		tables := [][][]string{
			{
				{"Sessions"},
				{"", "100"},
				{"Active users", ""},
			},
		}
		kpis := ExtractKpisFromTables(tables, SEOKpiFields)
		assert.Equal(t, 0, kpis.Len())
	})

	t.Run("no tables", func(t *testing.T) {
		assert.Equal(t, 0, ExtractKpisFromTables(nil, SEOKpiFields).Len())
	})
}
