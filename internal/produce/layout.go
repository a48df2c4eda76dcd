// Package produce describes the PRODUCE import layouts and renders generated
// record sets as tables of strings in those layouts.
package produce

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a record set name is not recognised.
var ErrUnknownKind = errors.New("unknown record set")

// Kind names a PRODUCE record set.
type Kind string

// Record sets in import order.
const (
	Catalogs Kind = "catalogs"
	Recipes  Kind = "recipes"
	Events   Kind = "events"
	Specs    Kind = "specs"
	Mixes    Kind = "mixes"
)

// Kinds lists every record set in import order.
func Kinds() []Kind { return []Kind{Catalogs, Recipes, Events, Specs, Mixes} }

// ParseKind resolves a record set name case-insensitively. Singular forms
// ("recipe") are accepted.
func ParseKind(raw string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, k := range Kinds() {
		if name == string(k) || name+"s" == string(k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
}

// Column headers of the import layouts.
const (
	ColID            = "ID"
	ColRecipeID      = "RecipeID"
	ColCatalogID     = "CatalogID"
	ColGenus         = "Genus"
	ColSeries        = "Series"
	ColColor         = "Color"
	ColLocationCode  = "LocationCode"
	ColCategory      = "Category"
	ColSchemeCode    = "SchemeCode"
	ColStartWeek     = "StartWeek"
	ColEndWeek       = "EndWeek"
	ColGrowWeeks     = "GrowWeeks"
	ColNotes         = "Notes"
	ColPhase         = "Phase"
	ColTriggerWeeks  = "TriggerWeeks"
	ColDurationWeeks = "DurationWeeks"
	ColSpaceWidth    = "SpaceWidth"
	ColSpaceLength   = "SpaceLength"
	ColQtyPerArea    = "QtyPerArea"
	ColMixPct        = "MixPct"
	ColCommonItem    = "CommonItem"
	ColLocation      = "Location"
	ColVariant       = "Variant"
	ColNote          = "Note"
)

var layouts = map[Kind][]string{
	Catalogs: {ColID, ColGenus, ColSeries, ColColor},
	Recipes: {ColID, ColLocationCode, ColCategory, ColSchemeCode, ColGenus, ColSeries, ColColor,
		ColStartWeek, ColEndWeek, ColGrowWeeks, ColNotes, ColCatalogID},
	Events: {ColID, ColRecipeID, ColPhase, ColStartWeek, ColEndWeek, ColTriggerWeeks, ColDurationWeeks,
		ColLocationCode, ColSchemeCode, ColCategory, ColGenus, ColSeries, ColColor},
	Specs: {ColID, ColRecipeID, ColPhase, ColSpaceWidth, ColSpaceLength, ColQtyPerArea},
	Mixes: {ColID, ColRecipeID, ColCatalogID, ColLocation, ColCommonItem, ColVariant,
		ColStartWeek, ColEndWeek, ColMixPct, ColNote},
}

// Headers returns a copy of the column headers for kind.
func Headers(kind Kind) []string {
	return append([]string(nil), layouts[kind]...)
}
