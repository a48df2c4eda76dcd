package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcflow/pkg/domain"
)

func TestBuildSchemeDictionary_LineWithoutPeriodsSpansYear(t *testing.T) {
	dict := BuildSchemeDictionary([]domain.SchemeLine{
		{SchemeCode: "A-1", LineNo: 1, Phase: "grow", Duration: 5.6},
	}, nil)

	rules, ok := dict.Rules("A-1")
	require.True(t, ok)
	assert.Equal(t, []domain.SchemeRule{rule(1, 53, 6, domain.PhaseGrow)}, rules)
}

func TestBuildSchemeDictionary_PeriodsOrderedAndLastExtendsToYearEnd(t *testing.T) {
	lines := []domain.SchemeLine{{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Duration: 8}}
	periods := []domain.SchemeLinePeriod{
		{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Days: 70, PeriodNo: 30},
		{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Days: 52, PeriodNo: 1},
		{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Days: 59, PeriodNo: 12},
	}

	rules, ok := BuildSchemeDictionary(lines, periods).Rules("A-1")
	require.True(t, ok)
	assert.Equal(t, []domain.SchemeRule{
		rule(1, 11, 7, domain.PhaseGrow),
		rule(12, 29, 8, domain.PhaseGrow),
		rule(30, 53, 10, domain.PhaseGrow),
	}, rules)
}

func TestBuildSchemeDictionary_PeriodsOnlyApplyToMatchingLineAndPhase(t *testing.T) {
	lines := []domain.SchemeLine{
		{SchemeCode: "A-1", LineNo: 1, Phase: "PROPAGATE", Duration: 2},
		{SchemeCode: "A-1", LineNo: 2, Phase: "GROW", Duration: 6},
	}
	periods := []domain.SchemeLinePeriod{
		{SchemeCode: "A-1", LineNo: 2, Phase: "grow ", Days: 35, PeriodNo: 20},
		{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Days: 70, PeriodNo: 5},
	}

	rules, ok := BuildSchemeDictionary(lines, periods).Rules("A-1")
	require.True(t, ok)
	assert.Equal(t, []domain.SchemeRule{
		rule(1, 53, 2, "PROPAGATE"),
		rule(20, 53, 5, domain.PhaseGrow),
	}, rules)
}

func TestBuildSchemeDictionary_OnlySchemesWithLines(t *testing.T) {
	dict := BuildSchemeDictionary(
		[]domain.SchemeLine{
			{SchemeCode: "B-2", LineNo: 2, Phase: "GROW", Duration: 3},
			{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Duration: 3},
			{SchemeCode: " ", LineNo: 1, Phase: "GROW", Duration: 3},
		},
		[]domain.SchemeLinePeriod{{SchemeCode: "C-3", LineNo: 1, Phase: "GROW", Days: 7, PeriodNo: 1}},
	)

	assert.Equal(t, []string{"B-2", "A-1"}, dict.Codes())
	assert.Equal(t, 2, dict.Len())
	_, ok := dict.Rules("C-3")
	assert.False(t, ok, "periods alone must not create an entry")
}

func TestBuildSchemeDictionary_LinesOrderedByLineNo(t *testing.T) {
	dict := BuildSchemeDictionary([]domain.SchemeLine{
		{SchemeCode: "A-1", LineNo: 30, Phase: "INVENTORY", Duration: 1},
		{SchemeCode: "A-1", LineNo: 10, Phase: "PROPAGATE", Duration: 2},
		{SchemeCode: "A-1", LineNo: 20, Phase: "GROW", Duration: 6},
	}, nil)

	rules, _ := dict.Rules("A-1")
	require.Len(t, rules, 3)
	assert.Equal(t, domain.Phase("PROPAGATE"), rules[0].Phase)
	assert.Equal(t, domain.PhaseGrow, rules[1].Phase)
	assert.Equal(t, domain.PhaseInventory, rules[2].Phase)
}

func TestSchemeDictionary_RulesReturnsCopy(t *testing.T) {
	dict := BuildSchemeDictionary([]domain.SchemeLine{{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Duration: 4}}, nil)
	rules, _ := dict.Rules("A-1")
	rules[0].GrowWeeks = 99

	again, _ := dict.Rules("A-1")
	assert.Equal(t, 4, again[0].GrowWeeks)
}

func TestBuildSchemeDictionary_IgnoresPeriodsOutsideCalendar(t *testing.T) {
	lines := []domain.SchemeLine{{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Duration: 8}}
	periods := []domain.SchemeLinePeriod{
		{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Days: 42, PeriodNo: 1},
		{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Days: 42, PeriodNo: 60},
		{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Days: 42, PeriodNo: 0},
	}

	rules, ok := BuildSchemeDictionary(lines, periods).Rules("A-1")
	require.True(t, ok)
	assert.Equal(t, []domain.SchemeRule{rule(1, 53, 6, domain.PhaseGrow)}, rules)
}

func TestBuildSchemeDictionary_OnlyOutOfCalendarPeriodsFallBackToLine(t *testing.T) {
	lines := []domain.SchemeLine{{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Duration: 8}}
	periods := []domain.SchemeLinePeriod{{SchemeCode: "A-1", LineNo: 1, Phase: "GROW", Days: 42, PeriodNo: 99}}

	rules, ok := BuildSchemeDictionary(lines, periods).Rules("A-1")
	require.True(t, ok)
	assert.Equal(t, []domain.SchemeRule{rule(1, 53, 8, domain.PhaseGrow)}, rules)
}
