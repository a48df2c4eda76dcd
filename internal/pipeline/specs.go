package pipeline

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"arcflow/pkg/domain"
)

// DeriveSpecs emits a square space spec for every line of a recipe's scheme
// with a positive quantity per area.
func DeriveSpecs(recipes []domain.Recipe, lines []domain.SchemeLine, ids *IDAllocator) []domain.SpaceSpec {
	byScheme := make(map[string][]domain.SchemeLine)
	for _, line := range lines {
		code := strings.TrimSpace(line.SchemeCode)
		byScheme[code] = append(byScheme[code], line)
	}
	for code := range byScheme {
		schemeLines := byScheme[code]
		sort.SliceStable(schemeLines, func(i, j int) bool { return schemeLines[i].LineNo < schemeLines[j].LineNo })
	}

	var specs []domain.SpaceSpec
	for _, recipe := range recipes {
		for _, line := range byScheme[recipe.SchemeCode] {
			if !(line.QtyPerArea > 0) {
				continue
			}
			side := SpaceSide(line.QtyPerArea)
			specs = append(specs, domain.SpaceSpec{
				ID:          ids.Next(),
				RecipeID:    recipe.ID,
				SpaceWidth:  side,
				SpaceLength: side,
				QtyPerArea:  line.QtyPerArea,
				Phase:       domain.NormalizePhase(line.Phase),
			})
		}
	}
	return specs
}

// SpaceSide returns the side of a square holding qtyPerArea plants per unit
// area, rounded half away from zero to two decimals.
func SpaceSide(qtyPerArea float64) float64 {
	if !(qtyPerArea > 0) || math.IsInf(qtyPerArea, 0) {
		return 0
	}
	side, _ := decimal.NewFromFloat(math.Sqrt(qtyPerArea)).Round(2).Float64()
	return side
}
