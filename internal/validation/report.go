package validation

// Score weights.
const (
	maxScore       = 100
	errorPenalty   = 25
	warningPenalty = 5
)

// Stats counts the rows and distinct scheme codes seen in the input.
type Stats struct {
	Schemes          int `json:"schemes"`
	SchemeLines      int `json:"scheme_lines"`
	Periods          int `json:"periods"`
	Preferences      int `json:"preferences"`
	MixRows          int `json:"mix_rows"`
	SchemeCodes      int `json:"scheme_codes"`
	SchemesWithLines int `json:"schemes_with_lines"`
	Locations        int `json:"locations"`
}

// Report is the outcome of a validation run.
type Report struct {
	Issues       []Issue `json:"issues"`
	Errors       int     `json:"errors"`
	Warnings     int     `json:"warnings"`
	Infos        int     `json:"infos"`
	QualityScore int     `json:"quality_score"`
	CanTransform bool    `json:"can_transform"`
	Stats        Stats   `json:"stats"`
}

func newReport(in Input, s *Snapshot, issues []Issue) Report {
	r := Report{Issues: issues, Stats: s.Stats()}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			r.Errors++
		case SeverityWarning:
			r.Warnings++
		default:
			r.Infos++
		}
	}
	r.CanTransform = len(in.Schemes) > 0 && len(in.Lines) > 0
	if !in.Empty() {
		r.QualityScore = QualityScore(r.Errors, r.Warnings)
	}
	return r
}

// QualityScore computes 100 - 25*errors - 5*warnings clamped to [0,100].
func QualityScore(errors, warnings int) int {
	score := maxScore - errorPenalty*errors - warningPenalty*warnings
	return min(max(score, 0), maxScore)
}

// BySeverity returns the issues with the given severity in report order.
func (r Report) BySeverity(sev Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// TransformImpacting returns the issues that will cause rows to be skipped
// by the transform.
func (r Report) TransformImpacting() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.TransformImpacting {
			out = append(out, issue)
		}
	}
	return out
}
