package roster

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const rosterCSV = `Client-Name,Contact-Name,Contact-Email,Phone,SEO-Introduction,Google-Ads-Introduction,Account-Manager
The George Centre,Maria,maria@georgecentre.example,555-0101,<p>SEO intro</p>,<p>Ads intro</p>,Dana
Acme Plumbing,Joe,joe@acme.example,555-0102,<p>Pipes intro</p>,,Sam
,ignored,ignored@example.com,,,,
Bayview Dental,,bayview@example.com,555-0103,,,Dana
`

func TestLoad(t *testing.T) {
	roster, err := Load(strings.NewReader(rosterCSV), testLogger())
	require.NoError(t, err)

	t.Run("skips rows with empty client name", func(t *testing.T) {
		assert.Equal(t, 3, roster.Len())
	})

	t.Run("typed fields populated", func(t *testing.T) {
		c := roster.Clients()[0]
		assert.Equal(t, "The George Centre", c.Name)
		assert.Equal(t, "Maria", c.ContactName)
		assert.Equal(t, "maria@georgecentre.example", c.ContactEmail)
		assert.Equal(t, "<p>SEO intro</p>", c.SEOIntro)
		assert.Equal(t, "<p>Ads intro</p>", c.GoogleAdsIntro)
	})

	t.Run("unknown columns land in extra bag", func(t *testing.T) {
		c := roster.Clients()[0]
		require.NotNil(t, c.Extra)
		assert.Equal(t, "Dana", c.Extra["Account-Manager"])
	})

	t.Run("rows with missing contacts still load", func(t *testing.T) {
		c := roster.Clients()[2]
		assert.Equal(t, "Bayview Dental", c.Name)
		assert.Empty(t, c.ContactName)
	})
}

func TestLoad_LazyQuotes(t *testing.T) {
	// Hand-edited rosters often carry bare quotes inside unquoted fields;
	// both parse passes must tolerate them the same way.
	csvData := "Client-Name,Contact-Name,Contact-Email,Phone,SEO-Introduction,Google-Ads-Introduction\n" +
		`Acme "The Original" Plumbing,Joe,joe@acme.example,,,` + "\n"

	roster, err := Load(strings.NewReader(csvData), testLogger())
	require.NoError(t, err)
	require.Equal(t, 1, roster.Len())
	assert.Equal(t, `Acme "The Original" Plumbing`, roster.Clients()[0].Name)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("inconsistent field count", func(t *testing.T) {
		csvData := "Client-Name,Contact-Name,Contact-Email,Phone,SEO-Introduction,Google-Ads-Introduction\n" +
			"Acme Plumbing,Joe,joe@acme.example,extra,extra,extra,extra\n"
		_, err := Load(strings.NewReader(csvData), testLogger())
		assert.Error(t, err)
	})

	t.Run("empty input yields empty roster", func(t *testing.T) {
		roster, err := Load(strings.NewReader(""), testLogger())
		if err == nil {
			assert.Equal(t, 0, roster.Len())
		}
	})
}

func TestRoster_Validate(t *testing.T) {
	csv := `Client-Name,Contact-Name,Contact-Email,Phone,SEO-Introduction,Google-Ads-Introduction
Acme Plumbing,Joe,joe@acme.example,,intro,intro
acme plumbing,Jo,jo@acme.example,,intro,intro
Bayview Dental,,,,,
`
	roster, err := Load(strings.NewReader(csv), testLogger())
	require.NoError(t, err)

	report := roster.Validate()
	assert.Equal(t, 3, report.TotalClients)
	assert.Equal(t, []string{"acme plumbing"}, report.DuplicateNames)
	assert.Equal(t, []string{"Bayview Dental"}, report.MissingEmails)
	assert.Equal(t, []string{"Bayview Dental"}, report.MissingContactNames)
	assert.Contains(t, report.MissingSEOIntros, "Bayview Dental")
	assert.Contains(t, report.MissingAdsIntros, "Bayview Dental")
	assert.True(t, report.HasCriticalIssues())
}

func TestRoster_ValidateClean(t *testing.T) {
	gofakeit.Seed(11)

	var sb strings.Builder
	sb.WriteString("Client-Name,Contact-Name,Contact-Email,Phone,SEO-Introduction,Google-Ads-Introduction\n")
	for i := 0; i < 25; i++ {
		company := strings.ReplaceAll(gofakeit.Company(), ",", " ")
		sb.WriteString(company + ",")
		sb.WriteString(gofakeit.FirstName() + ",")
		sb.WriteString(gofakeit.Email() + ",")
		sb.WriteString("555-0100,intro,intro\n")
	}

	roster, err := Load(strings.NewReader(sb.String()), testLogger())
	require.NoError(t, err)
	assert.Equal(t, 25, roster.Len())

	report := roster.Validate()
	assert.Empty(t, report.MissingEmails)
	assert.Empty(t, report.MissingContactNames)
}
