package validation

import (
	"fmt"
	"strings"
)

// NewMixCoverageRule reports mix locations and production items that no
// preference mentions. Segments for them cannot match a recipe.
func NewMixCoverageRule() Rule { return mixCoverageRule{} }

type mixCoverageRule struct{}

func (mixCoverageRule) Name() string { return "mix_coverage" }

func (r mixCoverageRule) Evaluate(s *Snapshot) Result {
	var res Result
	if len(s.Mix) == 0 {
		return res
	}
	locations := newCodeSet()
	items := newCodeSet()
	for _, row := range s.Mix {
		if !s.HasLocation(row.Location) {
			locations.add(row.Location)
		}
		if !s.HasItem(row.ProductionItem) {
			items.add(row.ProductionItem)
		}
	}
	for _, location := range locations.order {
		res.Issues = append(res.Issues, Issue{
			Rule:               r.Name(),
			Severity:           SeverityWarning,
			Message:            fmt.Sprintf("mix location %q does not appear in preferences", location),
			Entity:             EntityMix,
			Key:                location,
			TransformImpacting: true,
		})
	}
	for _, item := range items.order {
		res.Issues = append(res.Issues, Issue{
			Rule:               r.Name(),
			Severity:           SeverityWarning,
			Message:            fmt.Sprintf("mix production item %q does not appear in preferences", strings.TrimSpace(item)),
			Entity:             EntityMix,
			Key:                item,
			TransformImpacting: true,
		})
	}
	return res
}
