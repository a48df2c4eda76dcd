package pipeline

import (
	"sort"

	"arcflow/pkg/domain"
)

// MergeIntervals collapses one scheme's per-phase rules into GROW segments.
//
// Every rule start and every rule end+1 becomes a breakpoint, and the week
// after the calendar (54) closes the final segment. Each segment between two
// consecutive breakpoints takes its baseline duration from the first GROW rule
// covering it, plus the durations of all covering rules whose phase is neither
// GROW nor INVENTORY. Segments without a covering GROW rule are dropped, as
// are the parts of any segment that fall outside weeks 1..53.
func MergeIntervals(rules []domain.SchemeRule) []domain.SchemeRule {
	merged, _ := mergeIntervals(rules)
	return merged
}

// UncoveredSegments returns the segments MergeIntervals drops because no GROW
// rule covers them.
func UncoveredSegments(rules []domain.SchemeRule) []domain.Window {
	_, gaps := mergeIntervals(rules)
	return gaps
}

func mergeIntervals(rules []domain.SchemeRule) ([]domain.SchemeRule, []domain.Window) {
	if len(rules) == 0 {
		return nil, nil
	}
	points := breakpoints(rules)
	var merged []domain.SchemeRule
	var gaps []domain.Window
	for i := 0; i+1 < len(points); i++ {
		segment := domain.Window{Start: points[i], End: points[i+1] - 1}.Intersect(domain.FullYear())
		if segment.Empty() {
			continue
		}
		baseline, ok := growBaseline(rules, segment)
		if !ok {
			gaps = append(gaps, segment)
			continue
		}
		additive := 0
		for _, rule := range rules {
			if rule.Phase.IsAdditive() && rule.Window().Covers(segment) {
				additive += rule.GrowWeeks
			}
		}
		merged = append(merged, domain.SchemeRule{
			StartWeek: segment.Start,
			EndWeek:   segment.End,
			GrowWeeks: baseline + additive,
			Phase:     domain.PhaseGrow,
		})
	}
	return merged, gaps
}

func breakpoints(rules []domain.SchemeRule) []int {
	set := map[int]struct{}{domain.WeekSentinel(): {}}
	for _, rule := range rules {
		set[rule.StartWeek] = struct{}{}
		set[rule.EndWeek+1] = struct{}{}
	}
	points := make([]int, 0, len(set))
	for p := range set {
		points = append(points, p)
	}
	sort.Ints(points)
	return points
}

func growBaseline(rules []domain.SchemeRule, segment domain.Window) (int, bool) {
	for _, rule := range rules {
		if rule.Phase.IsGrow() && rule.Window().Covers(segment) {
			return rule.GrowWeeks, true
		}
	}
	return 0, false
}
