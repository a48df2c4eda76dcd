package produce

import (
	"strconv"

	"github.com/shopspring/decimal"

	"arcflow/internal/pipeline"
	"arcflow/pkg/domain"
)

// Table is one record set rendered as strings in its import layout.
type Table struct {
	Kind    Kind
	Headers []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Records returns the rows keyed by header.
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// Tables renders every record set of out in import order.
func Tables(out pipeline.Output) []Table {
	return []Table{
		CatalogTable(out.Catalogs),
		RecipeTable(out.Recipes),
		EventTable(out.Events),
		SpecTable(out.Specs),
		MixTable(out.Mixes),
	}
}

// TableFor renders a single record set of out.
func TableFor(out pipeline.Output, kind Kind) (Table, error) {
	switch kind {
	case Catalogs:
		return CatalogTable(out.Catalogs), nil
	case Recipes:
		return RecipeTable(out.Recipes), nil
	case Events:
		return EventTable(out.Events), nil
	case Specs:
		return SpecTable(out.Specs), nil
	case Mixes:
		return MixTable(out.Mixes), nil
	}
	_, err := ParseKind(string(kind))
	return Table{}, err
}

func newTable(kind Kind, capacity int) Table {
	return Table{Kind: kind, Headers: Headers(kind), Rows: make([][]string, 0, capacity)}
}

// CatalogTable renders catalogs.
func CatalogTable(catalogs []domain.Catalog) Table {
	t := newTable(Catalogs, len(catalogs))
	for _, c := range catalogs {
		t.Rows = append(t.Rows, []string{itoa(c.ID), c.Genus, c.Series, c.Color})
	}
	return t
}

// RecipeTable renders recipes. An unresolved catalog leaves CatalogID blank.
func RecipeTable(recipes []domain.Recipe) Table {
	t := newTable(Recipes, len(recipes))
	for _, r := range recipes {
		catalog := ""
		if r.CatalogID != nil {
			catalog = itoa(*r.CatalogID)
		}
		t.Rows = append(t.Rows, []string{
			itoa(r.ID), r.LocationCode, r.Category, r.SchemeCode, r.Genus, r.Series, r.Color,
			itoa(r.StartWeek), itoa(r.EndWeek), itoa(r.GrowWeeks), r.Notes, catalog,
		})
	}
	return t
}

// EventTable renders space events.
func EventTable(events []domain.SpaceEvent) Table {
	t := newTable(Events, len(events))
	for _, e := range events {
		t.Rows = append(t.Rows, []string{
			itoa(e.ID), itoa(e.RecipeID), string(e.Phase), itoa(e.StartWeek), itoa(e.EndWeek),
			itoa(e.TriggerWeeks), itoa(e.DurationWeeks), e.LocationCode, e.SchemeCode, e.Category,
			e.Genus, e.Series, e.Color,
		})
	}
	return t
}

// SpecTable renders space specs.
func SpecTable(specs []domain.SpaceSpec) Table {
	t := newTable(Specs, len(specs))
	for _, s := range specs {
		t.Rows = append(t.Rows, []string{
			itoa(s.ID), itoa(s.RecipeID), string(s.Phase), ftoa(s.SpaceWidth), ftoa(s.SpaceLength), ftoa(s.QtyPerArea),
		})
	}
	return t
}

// MixTable renders recipe mixes.
func MixTable(mixes []domain.RecipeMix) Table {
	t := newTable(Mixes, len(mixes))
	for _, m := range mixes {
		t.Rows = append(t.Rows, []string{
			itoa(m.ID), itoa(m.RecipeID), itoa(m.CatalogID), m.Location, m.CommonItem, m.Variant,
			itoa(m.StartWeek), itoa(m.EndWeek), ftoa(m.MixPct), m.Note,
		})
	}
	return t
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return decimal.NewFromFloat(v).String() }
