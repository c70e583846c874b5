package roster

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matcherFixture(t *testing.T, threshold int, names ...string) *Matcher {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("Client-Name,Contact-Name,Contact-Email,Phone,SEO-Introduction,Google-Ads-Introduction\n")
	for _, name := range names {
		sb.WriteString(name + ",Contact,contact@example.com,555-0100,intro,intro\n")
	}
	r, err := Load(strings.NewReader(sb.String()), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return NewMatcher(r, threshold, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMatcher_FindBest(t *testing.T) {
	t.Run("exact match any casing", func(t *testing.T) {
		m := matcherFixture(t, 0, "The George Centre", "Acme Plumbing")
		c := m.FindBest("THE GEORGE CENTRE")
		require.NotNil(t, c)
		assert.Equal(t, "The George Centre", c.Name)
	})

	t.Run("exact beats near-duplicate fuzzy candidate", func(t *testing.T) {
		// Both entries would clear the threshold via fuzzy scoring; the
		// literal name must win regardless of roster order.
		m := matcherFixture(t, 0, "The George Centre", "The George Center")
		c := m.FindBest("the george center")
		require.NotNil(t, c)
		assert.Equal(t, "The George Center", c.Name)
	})

	t.Run("fuzzy match tolerates misspelling and word order", func(t *testing.T) {
		m := matcherFixture(t, 70, "The George Centre", "Acme Plumbing", "Bayview Dental")
		c := m.FindBest("george center")
		require.NotNil(t, c)
		assert.Equal(t, "The George Centre", c.Name)
	})

	t.Run("store-number variation matches by containment", func(t *testing.T) {
		m := matcherFixture(t, 0, "Acme Plumbing")
		c := m.FindBest("Acme Plumbing 002 North")
		require.NotNil(t, c)
		assert.Equal(t, "Acme Plumbing", c.Name)
	})

	t.Run("no match below threshold", func(t *testing.T) {
		m := matcherFixture(t, 0, "The George Centre", "Acme Plumbing")
		assert.Nil(t, m.FindBest("Completely Unrelated Business"))
	})

	t.Run("empty input", func(t *testing.T) {
		m := matcherFixture(t, 0, "Acme Plumbing")
		assert.Nil(t, m.FindBest(""))
		assert.Nil(t, m.FindBest("   "))
	})
}

func TestMatcher_FindAll(t *testing.T) {
	m := matcherFixture(t, 85, "The George Centre", "George's Catering", "Acme Plumbing")

	t.Run("sorted by score descending", func(t *testing.T) {
		matches := m.FindAll("george centre", 40)
		require.NotEmpty(t, matches)
		assert.Equal(t, "The George Centre", matches[0].Client.Name)
		for i := 1; i < len(matches); i++ {
			assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
		}
	})

	t.Run("threshold monotonicity", func(t *testing.T) {
		loose := m.FindAll("george centre", 40)
		tight := m.FindAll("george centre", 80)

		assert.GreaterOrEqual(t, len(loose), len(tight))
		inLoose := make(map[string]bool, len(loose))
		for _, match := range loose {
			inLoose[match.Client.Name] = true
		}
		for _, match := range tight {
			assert.True(t, inLoose[match.Client.Name])
		}
	})

	t.Run("default threshold when min score unset", func(t *testing.T) {
		// At the default 85, a loose query should not return weak matches.
		for _, match := range m.FindAll("george", 0) {
			assert.GreaterOrEqual(t, match.Score, 85)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, m.FindAll("", 50))
	})
}

func TestSimilarityScore(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		assert.Equal(t, 100, similarityScore("Acme Plumbing", "acme plumbing"))
	})

	t.Run("token order insensitive", func(t *testing.T) {
		straight := similarityScore("Centre George", "George Centre")
		assert.Equal(t, 100, straight)
	})

	t.Run("misspelling stays high", func(t *testing.T) {
		assert.GreaterOrEqual(t, similarityScore("george center", "The George Centre"), 70)
	})

	t.Run("unrelated stays low", func(t *testing.T) {
		assert.Less(t, similarityScore("Bayview Dental", "Acme Plumbing"), 70)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0, similarityScore("", "Acme"))
	})
}
