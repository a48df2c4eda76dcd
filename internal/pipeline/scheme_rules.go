package pipeline

import (
	"math"
	"slices"
	"sort"
	"strings"

	"arcflow/pkg/domain"
)

// SchemeDictionary maps a scheme code to its unmerged, per-phase rules.
type SchemeDictionary struct {
	rules map[string][]domain.SchemeRule
	codes []string
}

// Rules returns a copy of the rules registered for code.
func (d SchemeDictionary) Rules(code string) ([]domain.SchemeRule, bool) {
	rules, ok := d.rules[strings.TrimSpace(code)]
	if !ok {
		return nil, false
	}
	return slices.Clone(rules), true
}

// Codes lists scheme codes in order of first appearance among the lines.
func (d SchemeDictionary) Codes() []string { return slices.Clone(d.codes) }

// Len returns the number of schemes with at least one line.
func (d SchemeDictionary) Len() int { return len(d.codes) }

// BuildSchemeDictionary turns schedule lines and their period breakdowns into
// week-interval rules. A line without periods spans the whole year with its
// duration (already in weeks). A line with periods yields one rule per period,
// running from the period's week to the week before the next period, the last
// one extending to week 53; durations are converted from days to weeks.
// Periods whose week lies outside the calendar are ignored.
//
// Schemes without lines get no entry.
func BuildSchemeDictionary(lines []domain.SchemeLine, periods []domain.SchemeLinePeriod) SchemeDictionary {
	grouped := make(map[domain.PeriodKey][]domain.SchemeLinePeriod)
	for _, p := range periods {
		key := domain.PeriodKey{
			SchemeCode: strings.TrimSpace(p.SchemeCode),
			LineNo:     p.LineNo,
			Phase:      domain.NormalizePhase(p.Phase),
		}
		grouped[key] = append(grouped[key], p)
	}

	byScheme := make(map[string][]domain.SchemeLine)
	var codes []string
	for _, line := range lines {
		code := strings.TrimSpace(line.SchemeCode)
		if code == "" {
			continue
		}
		if _, seen := byScheme[code]; !seen {
			codes = append(codes, code)
		}
		byScheme[code] = append(byScheme[code], line)
	}

	dict := SchemeDictionary{rules: make(map[string][]domain.SchemeRule, len(codes)), codes: codes}
	for _, code := range codes {
		schemeLines := byScheme[code]
		sort.SliceStable(schemeLines, func(i, j int) bool { return schemeLines[i].LineNo < schemeLines[j].LineNo })
		var rules []domain.SchemeRule
		for _, line := range schemeLines {
			phase := domain.NormalizePhase(line.Phase)
			key := domain.PeriodKey{SchemeCode: code, LineNo: line.LineNo, Phase: phase}
			rules = append(rules, lineRules(line, phase, grouped[key])...)
		}
		dict.rules[code] = rules
	}
	return dict
}

func lineRules(line domain.SchemeLine, phase domain.Phase, periods []domain.SchemeLinePeriod) []domain.SchemeRule {
	periods = slices.DeleteFunc(slices.Clone(periods), func(p domain.SchemeLinePeriod) bool { return !domain.ValidWeek(p.PeriodNo) })
	if len(periods) == 0 {
		return []domain.SchemeRule{{
			StartWeek: domain.FirstWeek,
			EndWeek:   domain.LastWeek,
			GrowWeeks: roundWeeks(line.Duration),
			Phase:     phase,
		}}
	}
	ordered := periods
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].PeriodNo < ordered[j].PeriodNo })
	rules := make([]domain.SchemeRule, 0, len(ordered))
	for i, p := range ordered {
		end := domain.LastWeek
		if i+1 < len(ordered) {
			end = ordered[i+1].PeriodNo - 1
		}
		rules = append(rules, domain.SchemeRule{
			StartWeek: p.PeriodNo,
			EndWeek:   end,
			GrowWeeks: roundWeeks(p.Days / 7),
			Phase:     phase,
		})
	}
	return rules
}

func roundWeeks(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
