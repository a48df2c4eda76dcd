package validation

import "fmt"

// NewPresenceRule reports missing input collections. Schemes, lines and
// preferences are required; periods and mix data are optional.
func NewPresenceRule() Rule { return presenceRule{} }

type presenceRule struct{}

func (presenceRule) Name() string { return "presence" }

func (r presenceRule) Evaluate(s *Snapshot) Result {
	checks := []struct {
		rows     int
		entity   Entity
		severity Severity
		impacts  bool
		label    string
	}{
		{len(s.Schemes), EntityScheme, SeverityError, true, "schemes"},
		{len(s.Lines), EntitySchemeLine, SeverityError, true, "scheme lines"},
		{len(s.Preferences), EntityPreference, SeverityError, true, "preferences"},
		{len(s.Periods), EntityPeriod, SeverityWarning, false, "scheme line periods"},
		{len(s.Mix), EntityMix, SeverityInfo, false, "mix data"},
	}
	var res Result
	for _, c := range checks {
		if c.rows > 0 {
			continue
		}
		res.Issues = append(res.Issues, Issue{
			Rule:               r.Name(),
			Severity:           c.severity,
			Message:            fmt.Sprintf("no %s supplied", c.label),
			Entity:             c.entity,
			TransformImpacting: c.impacts,
		})
	}
	return res
}
