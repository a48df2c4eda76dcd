package validation

import (
	"fmt"
	"strings"

	"arcflow/pkg/domain"
)

// NewLineDurationRule reports schedule lines with a zero or negative duration.
func NewLineDurationRule() Rule { return lineDurationRule{} }

type lineDurationRule struct{}

func (lineDurationRule) Name() string { return "line_duration" }

func (r lineDurationRule) Evaluate(s *Snapshot) Result {
	var res Result
	for i, line := range s.Lines {
		if line.Duration > 0 {
			continue
		}
		code := strings.TrimSpace(line.SchemeCode)
		res.Issues = append(res.Issues, Issue{
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("scheme %q line %d (%s) has duration %g", code, line.LineNo, strings.TrimSpace(line.Phase), line.Duration),
			Entity:   EntitySchemeLine,
			Key:      code,
			Row:      i + 1,
		})
	}
	return res
}

// NewPeriodWeekRule reports period rows whose week number lies outside the
// production calendar. The transform ignores them.
func NewPeriodWeekRule() Rule { return periodWeekRule{} }

type periodWeekRule struct{}

func (periodWeekRule) Name() string { return "period_week" }

func (r periodWeekRule) Evaluate(s *Snapshot) Result {
	var res Result
	for i, period := range s.Periods {
		if domain.ValidWeek(period.PeriodNo) {
			continue
		}
		code := strings.TrimSpace(period.SchemeCode)
		res.Issues = append(res.Issues, Issue{
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Message: fmt.Sprintf("scheme %q line %d (%s) period week %d is outside %d..%d and is ignored",
				code, period.LineNo, strings.TrimSpace(period.Phase), period.PeriodNo, domain.FirstWeek, domain.LastWeek),
			Entity: EntityPeriod,
			Key:    code,
			Row:    i + 1,
		})
	}
	return res
}

// NewGenusRule reports schemes without a genus code. Their recipes carry no
// genus and resolve no catalog.
func NewGenusRule() Rule { return genusRule{} }

type genusRule struct{}

func (genusRule) Name() string { return "genus" }

func (r genusRule) Evaluate(s *Snapshot) Result {
	var res Result
	for i, scheme := range s.Schemes {
		if strings.TrimSpace(scheme.GenusCode) != "" {
			continue
		}
		code := strings.TrimSpace(scheme.Code)
		res.Issues = append(res.Issues, Issue{
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("scheme %q has no genus code", code),
			Entity:   EntityScheme,
			Key:      code,
			Row:      i + 1,
		})
	}
	return res
}

// NewDuplicateSchemeRule reports scheme codes listed more than once. The first
// row wins during the transform.
func NewDuplicateSchemeRule() Rule { return duplicateSchemeRule{} }

type duplicateSchemeRule struct{}

func (duplicateSchemeRule) Name() string { return "duplicate_scheme" }

func (r duplicateSchemeRule) Evaluate(s *Snapshot) Result {
	var res Result
	seen := make(map[string]int, len(s.Schemes))
	for i, scheme := range s.Schemes {
		code := strings.TrimSpace(scheme.Code)
		if code == "" {
			continue
		}
		first, dup := seen[code]
		if !dup {
			seen[code] = i + 1
			continue
		}
		res.Issues = append(res.Issues, Issue{
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("scheme %q duplicates row %d", code, first),
			Entity:   EntityScheme,
			Key:      code,
			Row:      i + 1,
		})
	}
	return res
}
