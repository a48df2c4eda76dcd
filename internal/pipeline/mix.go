package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"arcflow/pkg/domain"
)

// MixSegment is a run of populated weeks sharing one mix percentage.
type MixSegment struct {
	Window domain.Window
	Pct    float64
}

// EncodeRuns run-length-encodes a sparse weekly percentage map.
//
// Populated weeks are visited in ascending order. A run closes only when the
// percentage changes or the sequence ends, so absent weeks between equal
// percentages are absorbed into the run. Only runs holding a positive
// percentage are returned; an explicit zero week breaks a run.
func EncodeRuns(weekly map[int]float64) []MixSegment {
	if len(weekly) == 0 {
		return nil
	}
	weeks := make([]int, 0, len(weekly))
	for w := range weekly {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	var segments []MixSegment
	var run MixSegment
	open := false
	closeRun := func() {
		if open && validPct(run.Pct) {
			segments = append(segments, run)
		}
		open = false
	}
	for _, week := range weeks {
		pct := weekly[week]
		if open && pct != run.Pct {
			closeRun()
		}
		if !open {
			run = MixSegment{Window: domain.Window{Start: week, End: week}, Pct: pct}
			open = true
			continue
		}
		run.Window.End = week
	}
	closeRun()
	return segments
}

func validPct(pct float64) bool {
	return pct > 0 && !math.IsInf(pct, 0)
}

// PickBestRecipe returns the recipe at location for productionItem whose window
// contains week and is the narrowest. Location and series must match exactly
// after trimming. Ties go to the earliest recipe.
func PickBestRecipe(recipes []domain.Recipe, location, productionItem string, week int) (domain.Recipe, bool) {
	location = strings.TrimSpace(location)
	productionItem = strings.TrimSpace(productionItem)
	var best domain.Recipe
	found := false
	for _, recipe := range recipes {
		if strings.TrimSpace(recipe.LocationCode) != location || strings.TrimSpace(recipe.Series) != productionItem {
			continue
		}
		if !recipe.Window().Contains(week) {
			continue
		}
		if !found || recipe.Window().Span() < best.Window().Span() {
			best = recipe
			found = true
		}
	}
	return best, found
}

// BreakoutMixes compresses each mix row into stable-percentage segments and
// attaches each segment to the best-fit recipe for its first week. Segments
// without a matching recipe are dropped with a warning.
//
// Percentages are taken as already normalized to a 0-100 scale.
func BreakoutMixes(rows []domain.MixRow, recipes []domain.Recipe, catalogs []domain.Catalog, ids *IDAllocator) ([]domain.RecipeMix, []string) {
	index := newCatalogIndex(catalogs)
	var mixes []domain.RecipeMix
	var warnings []string
	for i, row := range rows {
		for _, segment := range EncodeRuns(row.WeeklyPcts) {
			recipe, ok := PickBestRecipe(recipes, row.Location, row.ProductionItem, segment.Window.Start)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("mix row %d (location %s, item %s, variant %s): no recipe covers week %d, segment %s at %.2f%% dropped",
					i+1, row.Location, row.ProductionItem, row.VariantCode, segment.Window.Start, segment.Window, segment.Pct))
				continue
			}
			note := domain.MixNoteOK
			catalogID, resolved := index.resolve(recipe.Genus, row.ProductionItem, row.VariantCode)
			if !resolved {
				catalogID = 0
				note = domain.MixNoteNoCatalog
			}
			mixes = append(mixes, domain.RecipeMix{
				ID:         ids.Next(),
				RecipeID:   recipe.ID,
				CatalogID:  catalogID,
				MixPct:     segment.Pct,
				CommonItem: strings.TrimSpace(row.CommonItem),
				Location:   strings.TrimSpace(row.Location),
				Variant:    strings.TrimSpace(row.VariantCode),
				StartWeek:  segment.Window.Start,
				EndWeek:    segment.Window.End,
				Note:       note,
			})
		}
	}
	return mixes, warnings
}
