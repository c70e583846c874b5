package roster

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultFuzzyThreshold is the minimum similarity score (0-100) an inexact
// candidate needs before it counts as a match.
const DefaultFuzzyThreshold = 85

// Match pairs a roster record with its similarity score.
type Match struct {
	Client *ClientRecord
	Score  int
}

// Matcher resolves extracted business names against the roster. An exact
// case-insensitive hit always wins outright; only then does fuzzy scoring
// run. "Not found" is a legitimate outcome, never an error.
type Matcher struct {
	roster    *Roster
	threshold int
	logger    *slog.Logger
}

// NewMatcher creates a matcher over an immutable roster snapshot. A
// non-positive threshold falls back to DefaultFuzzyThreshold.
func NewMatcher(roster *Roster, threshold int, logger *slog.Logger) *Matcher {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &Matcher{roster: roster, threshold: threshold, logger: logger}
}

// FindBest returns the roster record for a business name, or nil when
// nothing reaches the threshold. Empty input returns nil without complaint.
func (m *Matcher) FindBest(businessName string) *ClientRecord {
	businessName = strings.TrimSpace(businessName)
	if businessName == "" {
		return nil
	}

	// Exact pass first: a literal roster name beats any fuzzy score.
	for _, c := range m.roster.Clients() {
		if strings.EqualFold(strings.TrimSpace(c.Name), businessName) {
			m.logger.Info("exact client match",
				slog.String("query", businessName),
				slog.String("client", c.Name),
			)
			return c
		}
	}

	var best *ClientRecord
	bestScore := m.threshold - 1
	for _, c := range m.roster.Clients() {
		if score := similarityScore(businessName, c.Name); score > bestScore {
			bestScore = score
			best = c
		}
	}

	if best == nil {
		m.logger.Warn("no client match", slog.String("query", businessName))
		return nil
	}

	m.logger.Info("fuzzy client match",
		slog.String("query", businessName),
		slog.String("client", best.Name),
		slog.Int("score", bestScore),
	)
	return best
}

// FindAll returns every roster record scoring at least minScore against the
// name, highest first. A non-positive minScore uses the configured
// threshold. Useful for flagging ambiguous names to the reviewer.
func (m *Matcher) FindAll(businessName string, minScore int) []Match {
	businessName = strings.TrimSpace(businessName)
	if businessName == "" {
		return nil
	}
	if minScore <= 0 {
		minScore = m.threshold
	}

	var matches []Match
	for _, c := range m.roster.Clients() {
		if score := similarityScore(businessName, c.Name); score >= minScore {
			matches = append(matches, Match{Client: c, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	m.logger.Debug("client matches",
		slog.String("query", businessName),
		slog.Int("count", len(matches)),
	)
	return matches
}

// similarityScore rates two names 0-100. The backbone is a token-sort ratio:
// both names are tokenized, sorted, rejoined, and compared by indel distance,
// which makes the score insensitive to word order and the definite article's
// position while staying tolerant of small spelling differences. Containment
// and subsequence checks contribute bounded alternatives for the
// store-number-suffix style of variation.
func similarityScore(a, b string) int {
	ua := strings.ToUpper(strings.TrimSpace(a))
	ub := strings.ToUpper(strings.TrimSpace(b))
	if ua == "" || ub == "" {
		return 0
	}
	if ua == ub {
		return 100
	}

	score := tokenSortRatio(ua, ub)

	// One name contained in the other, scored by length ratio.
	if strings.Contains(ua, ub) {
		if s := 75 + (25 * len(ub) / len(ua)); s > score {
			score = s
		}
	} else if strings.Contains(ub, ua) {
		if s := 75 + (25 * len(ua) / len(ub)); s > score {
			score = s
		}
	}

	// Subsequence rank as a weak signal, capped well under the default
	// threshold so it can widen low-threshold searches but never fabricate a
	// confident match on its own.
	if rank := fuzzy.RankMatchNormalizedFold(ub, ua); rank >= 0 && len(ua) > 0 {
		if s := 60 - (rank * 40 / len(ua)); s > score {
			score = s
		}
	}

	return score
}

// tokenSortRatio is the token-order-insensitive similarity: sort the words,
// rejoin, and score by indel distance over the combined length.
func tokenSortRatio(a, b string) int {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	sort.Strings(ta)
	sort.Strings(tb)
	return indelRatio(strings.Join(ta, " "), strings.Join(tb, " "))
}

// indelRatio converts insert/delete edit distance into a 0-100 similarity:
// 100 * 2*LCS(a,b) / (len(a)+len(b)).
func indelRatio(a, b string) int {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	lcs := lcsLength([]rune(a), []rune(b))
	return 100 * 2 * lcs / (len([]rune(a)) + len([]rune(b)))
}

// lcsLength computes longest-common-subsequence length with two rolling rows.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}

	return prev[len(b)]
}
