package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcflow/pkg/domain"
)

const scheme = "BN-10INMUM-NSLN-SP"

func cleanInput() Input {
	return Input{
		Schemes: []domain.Scheme{{Code: scheme, GenusCode: "MUM"}},
		Lines:   []domain.SchemeLine{{SchemeCode: scheme, LineNo: 10000, Phase: "GROW", Duration: 6, QtyPerArea: 4}},
		Periods: []domain.SchemeLinePeriod{{SchemeCode: scheme, LineNo: 10000, Phase: "GROW", Days: 42, PeriodNo: 1}},
		Preferences: []domain.Preference{
			{ProductionItemNo: "4000084", VariantCode: "B01", LocationCode: "KY01", SchemeCode: scheme},
		},
		Mix: []domain.MixRow{{Location: "ky01", ProductionItem: "4000084", VariantCode: "B01", WeeklyPcts: map[int]float64{1: 50}}},
	}
}

func issuesFor(r Report, rule string) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Rule == rule {
			out = append(out, issue)
		}
	}
	return out
}

func TestEvaluate_EmptyInput(t *testing.T) {
	report := NewDefaultEngine().Evaluate(Input{})

	assert.Equal(t, 3, report.Errors)
	assert.Equal(t, 0, report.QualityScore)
	assert.False(t, report.CanTransform)
	for _, issue := range report.BySeverity(SeverityError) {
		assert.Equal(t, "presence", issue.Rule)
		assert.True(t, issue.TransformImpacting)
	}
}

func TestEvaluate_OnlyPeriodsUsesFormula(t *testing.T) {
	in := Input{Periods: []domain.SchemeLinePeriod{{SchemeCode: scheme, LineNo: 1, Phase: "GROW", Days: 7, PeriodNo: 1}}}
	report := NewDefaultEngine().Evaluate(in)

	assert.Equal(t, 3, report.Errors)
	assert.False(t, report.CanTransform)
	assert.Equal(t, QualityScore(report.Errors, report.Warnings), report.QualityScore)
	assert.Greater(t, report.QualityScore, 0)
}

func TestEvaluate_CleanInput(t *testing.T) {
	report := NewDefaultEngine().Evaluate(cleanInput())

	assert.Empty(t, report.Issues)
	assert.Equal(t, 100, report.QualityScore)
	assert.True(t, report.CanTransform)
	assert.Equal(t, Stats{Schemes: 1, SchemeLines: 1, Periods: 1, Preferences: 1, MixRows: 1, SchemeCodes: 1, SchemesWithLines: 1, Locations: 1}, report.Stats)
}

func TestEvaluate_OptionalCollectionsMissing(t *testing.T) {
	in := cleanInput()
	in.Periods = nil
	in.Mix = nil

	report := NewDefaultEngine().Evaluate(in)
	assert.Equal(t, 0, report.Errors)
	assert.Equal(t, 1, report.Warnings)
	assert.Equal(t, 1, report.Infos)
	assert.Equal(t, 95, report.QualityScore)
}

func TestEvaluate_CanTransformIgnoresScore(t *testing.T) {
	in := cleanInput()
	in.Preferences = nil
	for i := 0; i < 30; i++ {
		in.Lines = append(in.Lines, domain.SchemeLine{SchemeCode: scheme, LineNo: i, Phase: "HANG"})
	}

	report := NewDefaultEngine().Evaluate(in)
	assert.Equal(t, 0, report.QualityScore)
	assert.True(t, report.CanTransform)
}

func TestEvaluate_OrphanReferences(t *testing.T) {
	in := cleanInput()
	in.Schemes = append(in.Schemes, domain.Scheme{Code: "UNUSED-X", GenusCode: "ASTER"})
	in.Lines = append(in.Lines, domain.SchemeLine{SchemeCode: "GHOST-LINE", LineNo: 1, Phase: "GROW", Duration: 2})
	in.Periods = append(in.Periods, domain.SchemeLinePeriod{SchemeCode: "GHOST-PERIOD", LineNo: 1, Phase: "GROW", Days: 7, PeriodNo: 1})
	in.Preferences = append(in.Preferences, domain.Preference{ProductionItemNo: "4000084", LocationCode: "KY01", SchemeCode: "GHOST-PREF"})

	issues := issuesFor(NewDefaultEngine().Evaluate(in), "orphan_reference")
	keys := make([]string, 0, len(issues))
	for _, issue := range issues {
		keys = append(keys, string(issue.Entity)+":"+issue.Key)
	}
	assert.Equal(t, []string{
		"scheme_line:GHOST-LINE",
		"scheme_line_period:GHOST-PERIOD",
		"preference:GHOST-PREF",
		"scheme_line_period:GHOST-PERIOD",
		"scheme:UNUSED-X",
	}, keys)
	assert.Equal(t, SeverityInfo, issues[4].Severity)
}

func TestEvaluate_SchemesWithoutLines(t *testing.T) {
	in := cleanInput()
	in.Schemes = append(in.Schemes, domain.Scheme{Code: "EMPTY-SCHEME", GenusCode: "MUM"})
	in.Preferences = append(in.Preferences, domain.Preference{ProductionItemNo: "4000084", LocationCode: "KY01", SchemeCode: "EMPTY-SCHEME"})

	report := NewDefaultEngine().Evaluate(in)
	issues := issuesFor(report, "scheme_lines")
	require.Len(t, issues, 2)
	assert.Equal(t, EntityScheme, issues[0].Entity)
	assert.False(t, issues[0].TransformImpacting)
	assert.Equal(t, EntityPreference, issues[1].Entity)
	assert.True(t, issues[1].TransformImpacting)
	assert.Contains(t, report.TransformImpacting(), issues[1])
}

func TestEvaluate_SchemeQuality(t *testing.T) {
	in := cleanInput()
	in.Schemes = append(in.Schemes,
		domain.Scheme{Code: scheme, GenusCode: "MUM"},
		domain.Scheme{Code: "NO-GENUS", GenusCode: "  "},
	)
	in.Lines = append(in.Lines,
		domain.SchemeLine{SchemeCode: scheme, LineNo: 20000, Phase: "HANG", Duration: 0},
		domain.SchemeLine{SchemeCode: "NO-GENUS", LineNo: 1, Phase: "GROW", Duration: 3},
	)
	in.Preferences = append(in.Preferences, domain.Preference{ProductionItemNo: "4000084", LocationCode: "KY01", SchemeCode: "NO-GENUS"})

	report := NewDefaultEngine().Evaluate(in)

	durations := issuesFor(report, "line_duration")
	require.Len(t, durations, 1)
	assert.Equal(t, 2, durations[0].Row)

	genus := issuesFor(report, "genus")
	require.Len(t, genus, 1)
	assert.Equal(t, "NO-GENUS", genus[0].Key)

	dups := issuesFor(report, "duplicate_scheme")
	require.Len(t, dups, 1)
	assert.Equal(t, 2, dups[0].Row)
	assert.Contains(t, dups[0].Message, "row 1")

	assert.Equal(t, 3, report.Warnings)
	assert.Equal(t, 85, report.QualityScore)
}

func TestEvaluate_PeriodWeekOutsideCalendar(t *testing.T) {
	in := cleanInput()
	in.Periods = append(in.Periods,
		domain.SchemeLinePeriod{SchemeCode: scheme, LineNo: 10000, Phase: "GROW", Days: 42, PeriodNo: 60},
		domain.SchemeLinePeriod{SchemeCode: scheme, LineNo: 10000, Phase: "GROW", Days: 42, PeriodNo: 53},
	)

	report := NewDefaultEngine().Evaluate(in)
	issues := issuesFor(report, "period_week")
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, EntityPeriod, issues[0].Entity)
	assert.Equal(t, 2, issues[0].Row)
	assert.Contains(t, issues[0].Message, "60")
	assert.True(t, report.CanTransform)
}

func TestEvaluate_MixCoverage(t *testing.T) {
	in := cleanInput()
	in.Mix = append(in.Mix,
		domain.MixRow{Location: "KY09", ProductionItem: "4000084"},
		domain.MixRow{Location: "KY09", ProductionItem: "5000000"},
		domain.MixRow{Location: "KY01", ProductionItem: "5000000"},
	)

	issues := issuesFor(NewDefaultEngine().Evaluate(in), "mix_coverage")
	require.Len(t, issues, 2)
	assert.Equal(t, "KY09", issues[0].Key)
	assert.Equal(t, "5000000", issues[1].Key)
}

func TestQualityScore(t *testing.T) {
	assert.Equal(t, 100, QualityScore(0, 0))
	assert.Equal(t, 70, QualityScore(1, 1))
	assert.Equal(t, 0, QualityScore(4, 0))
	assert.Equal(t, 0, QualityScore(5, 10))
	assert.Equal(t, 100, QualityScore(0, -3))
}

type staticRule struct{ issue Issue }

func (r staticRule) Name() string { return r.issue.Rule }

func (r staticRule) Evaluate(*Snapshot) Result { return Result{Issues: []Issue{r.issue}} }

func TestEngine_RegistrationOrder(t *testing.T) {
	engine := NewEngine()
	engine.Register(staticRule{Issue{Rule: "b", Severity: SeverityWarning}})
	engine.Register(staticRule{Issue{Rule: "a", Severity: SeverityInfo}})

	report := engine.Evaluate(cleanInput())
	assert.Equal(t, []string{"b", "a"}, engine.Rules())
	require.Len(t, report.Issues, 2)
	assert.Equal(t, "b", report.Issues[0].Rule)
	assert.Equal(t, 95, report.QualityScore)
}

func TestResultMerge(t *testing.T) {
	var r Result
	r.Merge(Result{})
	assert.Nil(t, r.Issues)
	r.Merge(Result{Issues: []Issue{{Rule: "x"}}})
	assert.Len(t, r.Issues, 1)
}
