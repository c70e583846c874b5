package extraction

import (
	"regexp"
	"sort"
	"strings"
)

// KpiValue is a single extracted metric: the rendered value plus the
// period-over-period change. Change is "" when the changes line had no token
// for this metric.
type KpiValue struct {
	Value  string `json:"value"`
	Change string `json:"change,omitempty"`
}

// KpiSet is an insertion-ordered metric-name -> KpiValue mapping. Keys are
// always drawn from the active schema's field list, in vendor column order.
type KpiSet struct {
	order []string
	items map[string]KpiValue
}

// NewKpiSet returns an empty set.
func NewKpiSet() *KpiSet {
	return &KpiSet{items: make(map[string]KpiValue)}
}

// Set records a metric value, preserving first-insertion order.
func (s *KpiSet) Set(field string, v KpiValue) {
	if _, ok := s.items[field]; !ok {
		s.order = append(s.order, field)
	}
	s.items[field] = v
}

// Get returns the value for a field and whether it is present.
func (s *KpiSet) Get(field string) (KpiValue, bool) {
	v, ok := s.items[field]
	return v, ok
}

// Fields returns the metric names in insertion order.
func (s *KpiSet) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of metrics present.
func (s *KpiSet) Len() int {
	return len(s.order)
}

// Missing returns the expected fields that have no entry, in expected order.
func (s *KpiSet) Missing(expected []string) []string {
	var missing []string
	for _, field := range expected {
		if _, ok := s.items[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// Value-token patterns for the three-line KPI block, in priority order inside
// the alternation: durations ("00:02:31"), currency ("$1,234.56"), then plain
// numbers and percentages ("22,837", "11.8%").
var (
	kpiValueToken  = regexp.MustCompile(`[0-9]{2}:[0-9]{2}:[0-9]{2}|\$[0-9,]+\.?[0-9]*|[0-9,]+\.?[0-9]*%?`)
	kpiChangeToken = regexp.MustCompile(`-?[0-9]+\.?[0-9]*%|N/A`)
)

// kpiScanThreshold is the minimum number of expected fields a header line
// must mention before the scanner trusts the three-line layout.
const kpiScanThreshold = 3

// ScanKpiLines locates the header/values/changes triplet in the page lines
// and parses it against the expected schema. Looker Studio renders the KPI
// block as three consecutive lines but the exact index varies per document,
// so the scanner picks the line mentioning the most expected fields (first
// seen wins ties) and requires at least kpiScanThreshold hits. Anything less
// returns an empty set; the caller records the missing metrics.
func ScanKpiLines(lines []string, expected []string) *KpiSet {
	bestIndex := -1
	bestCount := 0

	for i, line := range lines {
		if i+2 >= len(lines) {
			break
		}
		lower := strings.ToLower(line)
		count := 0
		for _, field := range expected {
			if strings.Contains(lower, strings.ToLower(field)) {
				count++
			}
		}
		// Strictly greater only: an equal count later in the page never
		// overwrites the first candidate.
		if count > bestCount {
			bestIndex = i
			bestCount = count
		}
	}

	if bestIndex < 0 || bestCount < kpiScanThreshold {
		return NewKpiSet()
	}

	return parseKpiTriplet(
		lines[bestIndex],
		strings.TrimSpace(lines[bestIndex+1]),
		strings.TrimSpace(lines[bestIndex+2]),
		expected,
	)
}

// parseKpiTriplet aligns the value and change tokens to metric names by
// column position. The vendor never labels values next to their metric in
// running text; only horizontal position ties a value to its header entry,
// so fields are sorted by their character offset in the header line and
// zipped with the token lists. A field absent from the header is skipped
// outright, and trailing fields beyond the token count get no entry.
func parseKpiTriplet(headerLine, valuesLine, changesLine string, expected []string) *KpiSet {
	kpis := NewKpiSet()

	values := kpiValueToken.FindAllString(valuesLine, -1)
	changes := kpiChangeToken.FindAllString(changesLine, -1)

	headerLower := strings.ToLower(headerLine)

	type fieldPos struct {
		pos   int
		field string
	}
	var positions []fieldPos
	for _, field := range expected {
		if pos := strings.Index(headerLower, strings.ToLower(field)); pos >= 0 {
			positions = append(positions, fieldPos{pos: pos, field: field})
		}
	}
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].pos < positions[j].pos
	})

	for idx, fp := range positions {
		if idx >= len(values) {
			break
		}
		v := KpiValue{Value: values[idx]}
		if idx < len(changes) {
			v.Change = changes[idx]
		}
		kpis.Set(fp.field, v)
	}

	return kpis
}

// ExtractKpisFromTables reads metric rows out of the page's native table
// structures: metric name in the first cell, value beside it. Table-derived
// values are unambiguous, so the caller prefers them per-field over the
// positional text fallback.
func ExtractKpisFromTables(tables [][][]string, expected []string) *KpiSet {
	kpis := NewKpiSet()

	for _, table := range tables {
		for _, row := range table {
			if len(row) < 2 {
				continue
			}
			name := strings.TrimSpace(row[0])
			value := strings.TrimSpace(row[1])
			if name == "" || value == "" {
				continue
			}
			for _, field := range expected {
				if strings.Contains(strings.ToLower(name), strings.ToLower(field)) {
					if _, ok := kpis.Get(field); !ok {
						kpis.Set(field, KpiValue{Value: value})
					}
					break
				}
			}
		}
	}

	return kpis
}
