package compare

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// NormalizeHeader lower-cases s and strips whitespace, underscores, dots and
// dashes, so "Start_Week", "start week" and "StartWeek" compare equal.
func NormalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '\n', '\r', '_', '.', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// matchHeader finds the header for name: an exact match first, then a
// case-insensitive one, then one equal after NormalizeHeader.
func matchHeader(name string, headers []string) (string, bool) {
	for _, h := range headers {
		if h == name {
			return h, true
		}
	}
	for _, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return h, true
		}
	}
	want := NormalizeHeader(name)
	if want == "" {
		return "", false
	}
	for _, h := range headers {
		if NormalizeHeader(h) == want {
			return h, true
		}
	}
	return "", false
}

// resolveField matches field, then each of its aliases.
func resolveField(c Config, field string, headers []string) (string, bool) {
	if h, ok := matchHeader(field, headers); ok {
		return h, true
	}
	for _, alias := range c.Aliases[field] {
		if h, ok := matchHeader(alias, headers); ok {
			return h, true
		}
	}
	return "", false
}

// Suggestion proposes reference headers resembling a field that had no match.
type Suggestion struct {
	Field      string   `json:"field"`
	Candidates []string `json:"candidates,omitempty"`
}

// suggest ranks headers that fuzzily resemble field in either direction.
// Already mapped headers are ignored.
func suggest(field string, headers []string, taken map[string]bool) Suggestion {
	type scored struct {
		header   string
		distance int
	}
	var hits []scored
	for _, h := range headers {
		if taken[h] || strings.TrimSpace(h) == "" {
			continue
		}
		d := fuzzy.RankMatchNormalizedFold(field, h)
		if rev := fuzzy.RankMatchNormalizedFold(h, field); rev >= 0 && (d < 0 || rev < d) {
			d = rev
		}
		if d >= 0 {
			hits = append(hits, scored{header: h, distance: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
	s := Suggestion{Field: field}
	for _, hit := range hits {
		s.Candidates = append(s.Candidates, hit.header)
	}
	return s
}
