package pipeline

import "arcflow/pkg/domain"

// DeriveEvents re-expands each recipe against its scheme's unmerged rules.
// Every rule overlapping the recipe window yields one event over the overlap.
// Events of non-GROW phases carry the duration of the first GROW rule covering
// the overlap as their trigger lead time.
func DeriveEvents(recipes []domain.Recipe, dict SchemeDictionary, ids *IDAllocator) []domain.SpaceEvent {
	var events []domain.SpaceEvent
	for _, recipe := range recipes {
		rules, ok := dict.Rules(recipe.SchemeCode)
		if !ok {
			continue
		}
		var growRules []domain.SchemeRule
		for _, rule := range rules {
			if rule.Phase.IsGrow() {
				growRules = append(growRules, rule)
			}
		}
		window := recipe.Window()
		for _, rule := range rules {
			ruleWindow := rule.Window()
			if ruleWindow.Empty() || !window.Overlaps(ruleWindow) {
				continue
			}
			overlap := window.Intersect(ruleWindow)
			trigger := 0
			if !rule.Phase.IsGrow() {
				if grow, found := firstCovering(growRules, overlap); found {
					trigger = grow.GrowWeeks
				}
			}
			events = append(events, domain.SpaceEvent{
				ID:            ids.Next(),
				RecipeID:      recipe.ID,
				Phase:         rule.Phase,
				StartWeek:     overlap.Start,
				EndWeek:       overlap.End,
				TriggerWeeks:  trigger,
				DurationWeeks: rule.GrowWeeks,
				LocationCode:  recipe.LocationCode,
				SchemeCode:    recipe.SchemeCode,
				Category:      recipe.Category,
				Genus:         recipe.Genus,
				Series:        recipe.Series,
				Color:         recipe.Color,
			})
		}
	}
	return events
}

func firstCovering(rules []domain.SchemeRule, window domain.Window) (domain.SchemeRule, bool) {
	for _, rule := range rules {
		if rule.Window().Covers(window) {
			return rule, true
		}
	}
	return domain.SchemeRule{}, false
}
