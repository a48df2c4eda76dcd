package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcflow/pkg/domain"
)

func TestEncodeRuns(t *testing.T) {
	tests := []struct {
		name   string
		weekly map[int]float64
		want   []MixSegment
	}{
		{
			name:   "two stable runs",
			weekly: map[int]float64{1: 50, 2: 50, 3: 50, 4: 75, 5: 75},
			want: []MixSegment{
				{Window: domain.Window{Start: 1, End: 3}, Pct: 50},
				{Window: domain.Window{Start: 4, End: 5}, Pct: 75},
			},
		},
		{
			name:   "zero weeks break runs and are not emitted",
			weekly: map[int]float64{1: 20, 2: 0, 3: 20, 4: 20},
			want: []MixSegment{
				{Window: domain.Window{Start: 1, End: 1}, Pct: 20},
				{Window: domain.Window{Start: 3, End: 4}, Pct: 20},
			},
		},
		{
			name:   "absent weeks are absorbed into a run",
			weekly: map[int]float64{10: 40, 11: 40, 14: 40},
			want:   []MixSegment{{Window: domain.Window{Start: 10, End: 14}, Pct: 40}},
		},
		{
			name:   "absent weeks before a change close at the last populated week",
			weekly: map[int]float64{10: 40, 12: 40, 20: 60},
			want: []MixSegment{
				{Window: domain.Window{Start: 10, End: 12}, Pct: 40},
				{Window: domain.Window{Start: 20, End: 20}, Pct: 60},
			},
		},
		{
			name:   "single trailing week",
			weekly: map[int]float64{53: 100},
			want:   []MixSegment{{Window: domain.Window{Start: 53, End: 53}, Pct: 100}},
		},
		{name: "all zero", weekly: map[int]float64{1: 0, 2: 0}},
		{name: "empty", weekly: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EncodeRuns(tc.weekly))
		})
	}
}

func TestPickBestRecipe(t *testing.T) {
	recipes := []domain.Recipe{
		{ID: 1, LocationCode: "KY01", Series: "100", StartWeek: 1, EndWeek: 53},
		{ID: 2, LocationCode: "KY01", Series: "100", StartWeek: 5, EndWeek: 20},
		{ID: 3, LocationCode: "KY01", Series: "100", StartWeek: 10, EndWeek: 25},
		{ID: 4, LocationCode: "KY02", Series: "100", StartWeek: 10, EndWeek: 10},
		{ID: 5, LocationCode: "KY01", Series: "200", StartWeek: 10, EndWeek: 10},
	}

	best, ok := PickBestRecipe(recipes, " KY01 ", "100", 12)
	require.True(t, ok)
	assert.Equal(t, 2, best.ID, "ties on span go to the earliest recipe")

	best, ok = PickBestRecipe(recipes, "KY01", "100", 30)
	require.True(t, ok)
	assert.Equal(t, 1, best.ID)

	_, ok = PickBestRecipe(recipes, "KY03", "100", 12)
	assert.False(t, ok)

	_, ok = PickBestRecipe(recipes, "ky01", "100", 12)
	assert.False(t, ok, "location must match exactly")
}

func TestBreakoutMixes_SparseRowYieldsOneSegment(t *testing.T) {
	recipes := []domain.Recipe{{ID: 1, LocationCode: "KY01", Genus: "MUM", Series: "100", StartWeek: 1, EndWeek: 53}}
	rows := []domain.MixRow{{Location: "KY01", ProductionItem: "100", VariantCode: "A", WeeklyPcts: map[int]float64{10: 40, 11: 40, 14: 40}}}

	mixes, warnings := BreakoutMixes(rows, recipes, nil, &IDAllocator{})
	require.Empty(t, warnings)
	require.Len(t, mixes, 1)
	assert.Equal(t, 10, mixes[0].StartWeek)
	assert.Equal(t, 14, mixes[0].EndWeek)
	assert.Equal(t, 40.0, mixes[0].MixPct)
}

func TestBreakoutMixes_RoundTrip(t *testing.T) {
	recipes := []domain.Recipe{{ID: 1, LocationCode: "KY01", Genus: "MUM", Series: "4000084", StartWeek: 1, EndWeek: 10}}
	catalogs := []domain.Catalog{{ID: 4, Genus: "MUM", Series: "4000084", Color: "B01"}}
	rows := []domain.MixRow{{
		Location: "KY01", CommonItem: "C-1", ProductionItem: "4000084", VariantCode: "B01",
		WeeklyPcts: map[int]float64{1: 50, 2: 50, 3: 50, 4: 75, 5: 75},
	}}

	mixes, warnings := BreakoutMixes(rows, recipes, catalogs, &IDAllocator{})
	require.Empty(t, warnings)
	assert.Equal(t, []domain.RecipeMix{
		{ID: 1, RecipeID: 1, CatalogID: 4, MixPct: 50, CommonItem: "C-1", Location: "KY01", Variant: "B01", StartWeek: 1, EndWeek: 3, Note: domain.MixNoteOK},
		{ID: 2, RecipeID: 1, CatalogID: 4, MixPct: 75, CommonItem: "C-1", Location: "KY01", Variant: "B01", StartWeek: 4, EndWeek: 5, Note: domain.MixNoteOK},
	}, mixes)
}

func TestBreakoutMixes_CatalogFallbackAndUnresolved(t *testing.T) {
	recipes := []domain.Recipe{
		{ID: 1, LocationCode: "KY01", Genus: "mum", Series: "100", StartWeek: 1, EndWeek: 53},
		{ID: 2, LocationCode: "KY01", Genus: "ASTER", Series: "200", StartWeek: 1, EndWeek: 53},
	}
	catalogs := []domain.Catalog{
		{ID: 8, Genus: "MUM", Series: "999", Color: "Z"},
		{ID: 9, Genus: "MUM", Series: "100", Color: "OTHER"},
	}
	rows := []domain.MixRow{
		{Location: "KY01", ProductionItem: "100", VariantCode: "B01", WeeklyPcts: map[int]float64{2: 30}},
		{Location: "KY01", ProductionItem: "200", VariantCode: "B01", WeeklyPcts: map[int]float64{2: 30}},
	}

	mixes, _ := BreakoutMixes(rows, recipes, catalogs, &IDAllocator{})
	require.Len(t, mixes, 2)
	assert.Equal(t, 8, mixes[0].CatalogID, "falls back to first catalog sharing the genus")
	assert.Equal(t, domain.MixNoteOK, mixes[0].Note)
	assert.Equal(t, 0, mixes[1].CatalogID)
	assert.Equal(t, domain.MixNoteNoCatalog, mixes[1].Note)
}

func TestBreakoutMixes_UnmatchedSegmentWarns(t *testing.T) {
	recipes := []domain.Recipe{{ID: 1, LocationCode: "KY01", Series: "100", StartWeek: 1, EndWeek: 10}}
	rows := []domain.MixRow{{Location: "KY01", ProductionItem: "100", VariantCode: "A", WeeklyPcts: map[int]float64{9: 60, 10: 60, 11: 40, 12: 40}}}

	mixes, warnings := BreakoutMixes(rows, recipes, nil, &IDAllocator{})
	require.Len(t, mixes, 1)
	assert.Equal(t, 10, mixes[0].EndWeek)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "week 11")
}
