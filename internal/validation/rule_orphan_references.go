package validation

import "fmt"

// NewOrphanReferenceRule cross-checks scheme codes between the scheme list and
// the lines, periods and preferences that refer to them, in both directions.
func NewOrphanReferenceRule() Rule { return orphanReferenceRule{} }

type orphanReferenceRule struct{}

func (orphanReferenceRule) Name() string { return "orphan_reference" }

func (r orphanReferenceRule) Evaluate(s *Snapshot) Result {
	var res Result
	if s.schemeCodes.len() > 0 {
		refs := []struct {
			set    *codeSet
			entity Entity
			label  string
		}{
			{s.lineCodes, EntitySchemeLine, "scheme lines"},
			{s.periodCodes, EntityPeriod, "scheme line periods"},
			{s.preferenceCodes, EntityPreference, "preferences"},
		}
		for _, ref := range refs {
			for _, code := range ref.set.order {
				if s.HasScheme(code) {
					continue
				}
				res.Issues = append(res.Issues, Issue{
					Rule:     r.Name(),
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("%s reference unknown scheme %q", ref.label, code),
					Entity:   ref.entity,
					Key:      code,
				})
			}
		}
	}

	for _, code := range s.periodCodes.order {
		if s.HasLines(code) {
			continue
		}
		res.Issues = append(res.Issues, Issue{
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("scheme line periods for %q have no scheme line to override", code),
			Entity:   EntityPeriod,
			Key:      code,
		})
	}

	if s.preferenceCodes.len() > 0 {
		for _, code := range s.schemeCodes.order {
			if s.preferenceCodes.has(code) {
				continue
			}
			res.Issues = append(res.Issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("scheme %q is not used by any preference", code),
				Entity:   EntityScheme,
				Key:      code,
			})
		}
	}
	return res
}
