package pipeline

import (
	"strings"

	"arcflow/pkg/domain"
)

// DeriveCatalogs builds one catalog per distinct genus/series/color identity.
// Genus comes from the preference's scheme, series from its production item
// and color from its variant. Genus codes no preference refers to still get a
// genus-only catalog so each genus has at least one identity.
func DeriveCatalogs(schemes []domain.Scheme, prefs []domain.Preference, ids *IDAllocator) []domain.Catalog {
	genusByScheme := schemeGenus(schemes)
	seen := make(map[domain.CatalogKey]struct{})
	covered := make(map[string]struct{})
	var catalogs []domain.Catalog

	add := func(genus, series, color string) {
		key := domain.NewCatalogKey(genus, series, color)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		covered[key.Genus] = struct{}{}
		catalogs = append(catalogs, domain.Catalog{ID: ids.Next(), Genus: genus, Series: series, Color: color})
	}

	for _, pref := range prefs {
		genus := genusByScheme[strings.TrimSpace(pref.SchemeCode)]
		if genus == "" {
			continue
		}
		add(genus, strings.TrimSpace(pref.ProductionItemNo), strings.TrimSpace(pref.VariantCode))
	}
	for _, scheme := range schemes {
		genus := strings.TrimSpace(scheme.GenusCode)
		if genus == "" {
			continue
		}
		if _, ok := covered[domain.GenusKey(genus)]; ok {
			continue
		}
		add(genus, "", "")
	}
	return catalogs
}

// schemeGenus maps scheme code to genus code; the first row for a code wins.
func schemeGenus(schemes []domain.Scheme) map[string]string {
	out := make(map[string]string, len(schemes))
	for _, s := range schemes {
		code := strings.TrimSpace(s.Code)
		if _, ok := out[code]; ok {
			continue
		}
		out[code] = strings.TrimSpace(s.GenusCode)
	}
	return out
}

// catalogIndex resolves catalog ids by exact identity or by genus alone.
// In both maps the first catalog registered for a key wins.
type catalogIndex struct {
	exact   map[domain.CatalogKey]int
	byGenus map[string]int
}

func newCatalogIndex(catalogs []domain.Catalog) catalogIndex {
	ix := catalogIndex{
		exact:   make(map[domain.CatalogKey]int, len(catalogs)),
		byGenus: make(map[string]int),
	}
	for _, c := range catalogs {
		key := c.Key()
		if _, ok := ix.exact[key]; !ok {
			ix.exact[key] = c.ID
		}
		if key.Genus == "" {
			continue
		}
		if _, ok := ix.byGenus[key.Genus]; !ok {
			ix.byGenus[key.Genus] = c.ID
		}
	}
	return ix
}

func (ix catalogIndex) genus(genus string) (int, bool) {
	key := domain.GenusKey(genus)
	if key == "" {
		return 0, false
	}
	id, ok := ix.byGenus[key]
	return id, ok
}

func (ix catalogIndex) resolve(genus, series, color string) (int, bool) {
	if domain.GenusKey(genus) == "" {
		return 0, false
	}
	if id, ok := ix.exact[domain.NewCatalogKey(genus, series, color)]; ok {
		return id, true
	}
	return ix.genus(genus)
}
