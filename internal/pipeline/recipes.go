package pipeline

import (
	"fmt"
	"strings"

	"arcflow/pkg/domain"
)

// GenerateRecipes joins preferences to their scheme's merged rules and emits
// one recipe per merged segment. A segment whose location, scheme and window
// were already emitted during this call is skipped. Preferences pointing at a
// scheme without rules are skipped with a warning.
//
// The scheme code is also written to Notes so that the same scheme may repeat
// across locations with different metadata.
func GenerateRecipes(prefs []domain.Preference, dict SchemeDictionary, schemes []domain.Scheme, catalogs []domain.Catalog, ids *IDAllocator) ([]domain.Recipe, []string) {
	genusByScheme := schemeGenus(schemes)
	index := newCatalogIndex(catalogs)
	mergedByScheme := make(map[string][]domain.SchemeRule)
	emitted := make(map[domain.RecipeKey]struct{})

	var recipes []domain.Recipe
	var warnings []string
	for i, pref := range prefs {
		code := strings.TrimSpace(pref.SchemeCode)
		location := strings.TrimSpace(pref.LocationCode)
		merged, ok := mergedByScheme[code]
		if !ok {
			rules, found := dict.Rules(code)
			if !found {
				warnings = append(warnings, fmt.Sprintf("preference row %d (item %s, variant %s, location %s): scheme %q has no schedule lines, row skipped",
					i+1, pref.ProductionItemNo, pref.VariantCode, location, code))
				continue
			}
			merged = MergeIntervals(rules)
			mergedByScheme[code] = merged
		}

		genus := genusByScheme[code]
		catalogID, hasCatalog := index.genus(genus)
		for _, segment := range merged {
			key := domain.RecipeKey{LocationCode: location, SchemeCode: code, StartWeek: segment.StartWeek, EndWeek: segment.EndWeek}
			if _, dup := emitted[key]; dup {
				continue
			}
			emitted[key] = struct{}{}
			recipe := domain.Recipe{
				ID:           ids.Next(),
				LocationCode: location,
				Category:     domain.Category(code),
				SchemeCode:   code,
				Genus:        genus,
				Series:       strings.TrimSpace(pref.ProductionItemNo),
				Color:        strings.TrimSpace(pref.VariantCode),
				StartWeek:    segment.StartWeek,
				EndWeek:      segment.EndWeek,
				GrowWeeks:    segment.GrowWeeks,
				Notes:        code,
			}
			if hasCatalog {
				id := catalogID
				recipe.CatalogID = &id
			}
			recipes = append(recipes, recipe)
		}
	}
	return recipes, warnings
}
