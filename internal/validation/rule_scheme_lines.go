package validation

import "fmt"

// NewSchemeLinesRule reports schemes without schedule lines. Preferences that
// point at such a scheme are flagged as transform-impacting because the
// transform skips them.
func NewSchemeLinesRule() Rule { return schemeLinesRule{} }

type schemeLinesRule struct{}

func (schemeLinesRule) Name() string { return "scheme_lines" }

func (r schemeLinesRule) Evaluate(s *Snapshot) Result {
	var res Result
	if len(s.Lines) == 0 {
		// presence already reports the missing collection
		return res
	}
	for _, code := range s.schemeCodes.order {
		if s.HasLines(code) {
			continue
		}
		res.Issues = append(res.Issues, Issue{
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("scheme %q has no schedule lines", code),
			Entity:   EntityScheme,
			Key:      code,
		})
	}
	for _, code := range s.preferenceCodes.order {
		if s.HasLines(code) {
			continue
		}
		res.Issues = append(res.Issues, Issue{
			Rule:               r.Name(),
			Severity:           SeverityWarning,
			Message:            fmt.Sprintf("preferences use scheme %q which has no schedule lines; those rows produce no recipes", code),
			Entity:             EntityPreference,
			Key:                code,
			TransformImpacting: true,
		})
	}
	return res
}
