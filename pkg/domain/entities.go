// Package domain defines the raw Arc Flow rows consumed by the transformer and
// the PRODUCE records it derives from them.
package domain

import "strings"

// Phase names a stage of a production schedule (GROW, HANG, INVENTORY, ...).
type Phase string

// Phases with special meaning to the merge and event stages. Any other phase is
// treated as additive lead time.
const (
	// PhaseGrow is the grow phase proper; it supplies the baseline duration.
	PhaseGrow Phase = "GROW"
	// PhaseInventory holds finished stock and never adds grow time.
	PhaseInventory Phase = "INVENTORY"
)

// NormalizePhase trims and upper-cases a raw phase label.
func NormalizePhase(raw string) Phase {
	return Phase(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsGrow reports whether the phase is the grow phase.
func (p Phase) IsGrow() bool { return p == PhaseGrow }

// IsAdditive reports whether the phase contributes extra weeks on top of the
// grow baseline when windows are merged.
func (p Phase) IsAdditive() bool { return p != PhaseGrow && p != PhaseInventory }

// Scheme is a production-schedule template exported by Arc Flow.
type Scheme struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	GenusCode   string `json:"genus_code"`
}

// Category returns the second dash-delimited token of the scheme code, or an
// empty string when the code has fewer than two tokens.
func Category(schemeCode string) string {
	parts := strings.Split(schemeCode, "-")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// SchemeLine is one phase of a scheme. Duration is expressed in weeks.
type SchemeLine struct {
	SchemeCode string  `json:"scheme_code"`
	LineNo     int     `json:"line_no"`
	Phase      string  `json:"phase"`
	Duration   float64 `json:"duration"`
	QtyPerArea float64 `json:"qty_per_area"`
	Output     float64 `json:"output"`
}

// SchemeLinePeriod overrides a line's duration from PeriodNo (a week number)
// until the next period of the same line starts. Days is the duration in days.
type SchemeLinePeriod struct {
	SchemeCode string  `json:"scheme_code"`
	LineNo     int     `json:"line_no"`
	Phase      string  `json:"phase"`
	Days       float64 `json:"days"`
	PeriodNo   int     `json:"period_no"`
}

// Preference binds a production item and variant at a location to a scheme.
type Preference struct {
	ProductionItemNo string `json:"production_item_no"`
	VariantCode      string `json:"variant_code"`
	LocationCode     string `json:"location_code"`
	SchemeCode       string `json:"scheme_code"`
	CommonItemNo     string `json:"common_item_no,omitempty"`
	Description      string `json:"description,omitempty"`
}

// MixRow carries the weekly share of a production item variant at a location.
// WeeklyPcts maps week number to a percentage on a 0-100 scale; zero or absent
// weeks mean no mix.
type MixRow struct {
	Location       string          `json:"location"`
	CommonItem     string          `json:"common_item"`
	ProductionItem string          `json:"production_item"`
	VariantCode    string          `json:"variant_code"`
	WeeklyPcts     map[int]float64 `json:"weekly_pcts"`
}

// SchemeRule is a week interval of one scheme phase with its duration in weeks.
type SchemeRule struct {
	StartWeek int   `json:"start_week"`
	EndWeek   int   `json:"end_week"`
	GrowWeeks int   `json:"grow_weeks"`
	Phase     Phase `json:"phase"`
}

// Window returns the rule's inclusive week window.
func (r SchemeRule) Window() Window { return Window{Start: r.StartWeek, End: r.EndWeek} }

// Catalog is a PRODUCE catalog identity.
type Catalog struct {
	ID     int    `json:"id"`
	Genus  string `json:"genus"`
	Series string `json:"series"`
	Color  string `json:"color"`
}

// Key returns the catalog's composite identity.
func (c Catalog) Key() CatalogKey { return NewCatalogKey(c.Genus, c.Series, c.Color) }

// Recipe is one location + scheme + week-window production instruction.
// CatalogID is nil when no catalog shares the recipe's genus.
type Recipe struct {
	ID           int    `json:"id"`
	LocationCode string `json:"location_code"`
	Category     string `json:"category"`
	SchemeCode   string `json:"scheme_code"`
	Genus        string `json:"genus"`
	Series       string `json:"series"`
	Color        string `json:"color"`
	StartWeek    int    `json:"start_week"`
	EndWeek      int    `json:"end_week"`
	GrowWeeks    int    `json:"grow_weeks"`
	Notes        string `json:"notes"`
	CatalogID    *int   `json:"catalog_id,omitempty"`
}

// Window returns the recipe's inclusive week window.
func (r Recipe) Window() Window { return Window{Start: r.StartWeek, End: r.EndWeek} }

// Key returns the recipe's dedup key.
func (r Recipe) Key() RecipeKey {
	return RecipeKey{LocationCode: r.LocationCode, SchemeCode: r.SchemeCode, StartWeek: r.StartWeek, EndWeek: r.EndWeek}
}

// SpaceEvent is one calendar slice of a recipe attributed to a scheme phase.
type SpaceEvent struct {
	ID            int    `json:"id"`
	RecipeID      int    `json:"recipe_id"`
	Phase         Phase  `json:"phase"`
	StartWeek     int    `json:"start_week"`
	EndWeek       int    `json:"end_week"`
	TriggerWeeks  int    `json:"trigger_weeks"`
	DurationWeeks int    `json:"duration_weeks"`
	LocationCode  string `json:"location_code"`
	SchemeCode    string `json:"scheme_code"`
	Category      string `json:"category"`
	Genus         string `json:"genus"`
	Series        string `json:"series"`
	Color         string `json:"color"`
}

// SpaceSpec gives the square footprint of one plant for a recipe phase.
type SpaceSpec struct {
	ID          int     `json:"id"`
	RecipeID    int     `json:"recipe_id"`
	SpaceWidth  float64 `json:"space_width"`
	SpaceLength float64 `json:"space_length"`
	QtyPerArea  float64 `json:"qty_per_area"`
	Phase       Phase   `json:"phase"`
}

// Mix notes written on RecipeMix records.
const (
	MixNoteOK        = "OK"
	MixNoteNoCatalog = "No Catalog"
)

// RecipeMix is a contiguous stable-percentage segment of a variant mix.
// CatalogID is 0 when unresolved, in which case Note is MixNoteNoCatalog.
type RecipeMix struct {
	ID         int     `json:"id"`
	RecipeID   int     `json:"recipe_id"`
	CatalogID  int     `json:"catalog_id"`
	MixPct     float64 `json:"mix_pct"`
	CommonItem string  `json:"common_item"`
	Location   string  `json:"location"`
	Variant    string  `json:"variant"`
	StartWeek  int     `json:"start_week"`
	EndWeek    int     `json:"end_week"`
	Note       string  `json:"note"`
}
