package domain

import "strings"

// PeriodKey groups scheme line periods belonging to the same line and phase.
type PeriodKey struct {
	SchemeCode string
	LineNo     int
	Phase      Phase
}

// RecipeKey identifies a recipe within a run.
type RecipeKey struct {
	LocationCode string
	SchemeCode   string
	StartWeek    int
	EndWeek      int
}

// CatalogKey identifies a catalog by genus, series and color. Fields are stored
// trimmed and upper-cased so lookups are case-insensitive.
type CatalogKey struct {
	Genus  string
	Series string
	Color  string
}

// NewCatalogKey builds a normalized catalog key.
func NewCatalogKey(genus, series, color string) CatalogKey {
	return CatalogKey{Genus: foldKey(genus), Series: foldKey(series), Color: foldKey(color)}
}

// GenusKey normalizes a genus code for case-insensitive lookups.
func GenusKey(genus string) string { return foldKey(genus) }

func foldKey(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
