// Package compare diffs generated PRODUCE record sets against a reference
// dataset. Reference headers are matched to the configured fields
// case-insensitively and without separators; rows are matched on composite
// keys built from the key fields.
package compare

import (
	"errors"
	"fmt"

	"arcflow/internal/produce"
)

// ErrUnknownCompareType is returned when no configuration exists for a type.
var ErrUnknownCompareType = errors.New("unknown compare type")

// OutputType names the record set being compared.
type OutputType = produce.Kind

// Config declares how rows of one output type are keyed and compared.
// Aliases lists alternative reference header spellings per field.
type Config struct {
	Type          OutputType
	KeyFields     []string
	CompareFields []string
	Aliases       map[string][]string
}

// Fields returns key fields followed by compare fields.
func (c Config) Fields() []string {
	out := make([]string, 0, len(c.KeyFields)+len(c.CompareFields))
	out = append(out, c.KeyFields...)
	return append(out, c.CompareFields...)
}

var locationAliases = []string{"Location", "Loc"}

// DefaultConfigs returns the built-in configurations in detection order.
func DefaultConfigs() []Config {
	return []Config{
		{
			Type:      produce.Catalogs,
			KeyFields: []string{produce.ColGenus, produce.ColSeries, produce.ColColor},
			Aliases: map[string][]string{
				produce.ColSeries: {"ProductionItemNo", "Item"},
				produce.ColColor:  {"VariantCode", "Variant", "Colour"},
			},
		},
		{
			Type:      produce.Recipes,
			KeyFields: []string{produce.ColLocationCode, produce.ColSchemeCode, produce.ColStartWeek, produce.ColEndWeek},
			CompareFields: []string{produce.ColCategory, produce.ColGenus, produce.ColSeries, produce.ColColor,
				produce.ColGrowWeeks, produce.ColNotes},
			Aliases: map[string][]string{
				produce.ColLocationCode: locationAliases,
				produce.ColSchemeCode:   {"Scheme"},
				produce.ColStartWeek:    {"Start"},
				produce.ColEndWeek:      {"End"},
			},
		},
		{
			Type: produce.Events,
			KeyFields: []string{produce.ColLocationCode, produce.ColSchemeCode, produce.ColPhase,
				produce.ColStartWeek, produce.ColEndWeek},
			CompareFields: []string{produce.ColTriggerWeeks, produce.ColDurationWeeks, produce.ColCategory,
				produce.ColGenus, produce.ColSeries, produce.ColColor},
			Aliases: map[string][]string{
				produce.ColLocationCode:  locationAliases,
				produce.ColSchemeCode:    {"Scheme"},
				produce.ColTriggerWeeks:  {"Trigger"},
				produce.ColDurationWeeks: {"Duration"},
			},
		},
		{
			Type:          produce.Specs,
			KeyFields:     []string{produce.ColRecipeID, produce.ColPhase},
			CompareFields: []string{produce.ColSpaceWidth, produce.ColSpaceLength, produce.ColQtyPerArea},
			Aliases: map[string][]string{
				produce.ColSpaceWidth:  {"Width"},
				produce.ColSpaceLength: {"Length"},
			},
		},
		{
			Type: produce.Mixes,
			KeyFields: []string{produce.ColLocation, produce.ColCommonItem, produce.ColVariant,
				produce.ColStartWeek, produce.ColEndWeek},
			CompareFields: []string{produce.ColMixPct, produce.ColNote},
			Aliases: map[string][]string{
				produce.ColLocation: {"LocationCode"},
				produce.ColVariant:  {"VariantCode"},
				produce.ColMixPct:   {"Pct", "Percent"},
			},
		},
	}
}

// Engine holds the comparison configurations.
type Engine struct {
	configs []Config
}

// NewEngine builds an engine from configs. Later configs with the same type
// replace earlier ones.
func NewEngine(configs ...Config) *Engine {
	e := &Engine{}
	for _, c := range configs {
		e.Register(c)
	}
	return e
}

// NewDefaultEngine builds an engine with DefaultConfigs.
func NewDefaultEngine() *Engine { return NewEngine(DefaultConfigs()...) }

// Register adds or replaces the configuration for c.Type.
func (e *Engine) Register(c Config) {
	for i := range e.configs {
		if e.configs[i].Type == c.Type {
			e.configs[i] = c
			return
		}
	}
	e.configs = append(e.configs, c)
}

// Config returns the configuration for typ.
func (e *Engine) Config(typ OutputType) (Config, error) {
	for _, c := range e.configs {
		if c.Type == typ {
			return c, nil
		}
	}
	return Config{}, fmt.Errorf("%w: %q", ErrUnknownCompareType, typ)
}
