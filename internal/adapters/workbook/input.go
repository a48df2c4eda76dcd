package workbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"arcflow/internal/compare"
	"arcflow/internal/pipeline"
	"arcflow/pkg/domain"
)

const maxWeek = 53

var normalize = compare.NormalizeHeader

// weekHeader matches normalized week column titles: "w7", "wk07", "week7", "7".
var weekHeader = regexp.MustCompile(`^(?:w|wk|week)?0*(\d{1,2})$`)

// ReadInput loads an Arc Flow export from an XLSX workbook or a directory of
// CSV files named after the sheets. The SchemeLinePeriods and Mix sheets are
// optional.
func ReadInput(path string) (pipeline.Input, error) {
	src, err := openSource(path)
	if err != nil {
		return pipeline.Input{}, err
	}
	defer func() { _ = src.Close() }()
	return readInput(src)
}

func readInput(src source) (pipeline.Input, error) {
	var in pipeline.Input
	load := func(name string, required bool, parse func(grid) error) error {
		rows, ok, err := src.rows(name)
		if err != nil {
			return err
		}
		if !ok {
			if required {
				return fmt.Errorf("%w: %s", ErrSheetMissing, name)
			}
			return nil
		}
		return parse(newGrid(name, rows))
	}
	steps := []struct {
		name     string
		required bool
		parse    func(grid) error
	}{
		{SheetSchemes, true, func(g grid) (err error) { in.Schemes, err = parseSchemes(g); return }},
		{SheetSchemeLines, true, func(g grid) (err error) { in.Lines, err = parseLines(g); return }},
		{SheetPeriods, false, func(g grid) (err error) { in.Periods, err = parsePeriods(g); return }},
		{SheetPreferences, true, func(g grid) (err error) { in.Preferences, err = parsePreferences(g); return }},
		{SheetMix, false, func(g grid) (err error) { in.Mix, err = parseMix(g); return }},
	}
	for _, s := range steps {
		if err := load(s.name, s.required, s.parse); err != nil {
			return pipeline.Input{}, err
		}
	}
	return in, nil
}

func parseSchemes(g grid) ([]domain.Scheme, error) {
	code, err := g.require("Code", "SchemeCode", "No")
	if err != nil {
		return nil, err
	}
	desc, _ := g.column("Description")
	genus, _ := g.column("GenusCode", "Genus")
	out := make([]domain.Scheme, 0, len(g.body))
	for _, row := range g.body {
		if blank(row) {
			continue
		}
		out = append(out, domain.Scheme{Code: cell(row, code), Description: cell(row, desc), GenusCode: cell(row, genus)})
	}
	return out, nil
}

func parseLines(g grid) ([]domain.SchemeLine, error) {
	cols, err := requireAll(g, [][]string{
		{"SchemeCode", "Scheme", "SchemeNo"},
		{"LineNo", "Line"},
		{"Phase"},
		{"Duration", "DurationWeeks", "Weeks"},
	})
	if err != nil {
		return nil, err
	}
	qty, _ := g.column("QtyPerArea", "QuantityPerArea")
	output, _ := g.column("Output")
	out := make([]domain.SchemeLine, 0, len(g.body))
	for i, row := range g.body {
		if blank(row) {
			continue
		}
		r := g.firstRow + i
		line := domain.SchemeLine{SchemeCode: cell(row, cols[0]), Phase: cell(row, cols[2])}
		if line.LineNo, err = intCell(g.sheet, r, row, cols[1]); err != nil {
			return nil, err
		}
		if line.Duration, err = floatCell(g.sheet, r, row, cols[3]); err != nil {
			return nil, err
		}
		if line.QtyPerArea, err = floatCell(g.sheet, r, row, qty); err != nil {
			return nil, err
		}
		if line.Output, err = floatCell(g.sheet, r, row, output); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

func parsePeriods(g grid) ([]domain.SchemeLinePeriod, error) {
	cols, err := requireAll(g, [][]string{
		{"SchemeCode", "Scheme", "SchemeNo"},
		{"LineNo", "Line"},
		{"Phase"},
		{"Days", "DurationDays"},
		{"PeriodNo", "Period", "Week"},
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.SchemeLinePeriod, 0, len(g.body))
	for i, row := range g.body {
		if blank(row) {
			continue
		}
		r := g.firstRow + i
		p := domain.SchemeLinePeriod{SchemeCode: cell(row, cols[0]), Phase: cell(row, cols[2])}
		if p.LineNo, err = intCell(g.sheet, r, row, cols[1]); err != nil {
			return nil, err
		}
		if p.Days, err = floatCell(g.sheet, r, row, cols[3]); err != nil {
			return nil, err
		}
		if p.PeriodNo, err = intCell(g.sheet, r, row, cols[4]); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parsePreferences(g grid) ([]domain.Preference, error) {
	cols, err := requireAll(g, [][]string{
		{"ProductionItemNo", "ProductionItem", "ItemNo"},
		{"VariantCode", "Variant"},
		{"LocationCode", "Location"},
		{"SchemeCode", "Scheme"},
	})
	if err != nil {
		return nil, err
	}
	common, _ := g.column("CommonItemNo", "CommonItem")
	desc, _ := g.column("Description")
	out := make([]domain.Preference, 0, len(g.body))
	for _, row := range g.body {
		if blank(row) {
			continue
		}
		out = append(out, domain.Preference{
			ProductionItemNo: cell(row, cols[0]),
			VariantCode:      cell(row, cols[1]),
			LocationCode:     cell(row, cols[2]),
			SchemeCode:       cell(row, cols[3]),
			CommonItemNo:     cell(row, common),
			Description:      cell(row, desc),
		})
	}
	return out, nil
}

// parseMix reads weekly percentages. When every non-zero value on the sheet is
// at most 1 (and none carries a % sign) the sheet holds fractions and all
// values are scaled to 0-100.
func parseMix(g grid) ([]domain.MixRow, error) {
	cols, err := requireAll(g, [][]string{
		{"Location", "LocationCode"},
		{"ProductionItem", "ProductionItemNo"},
		{"VariantCode", "Variant"},
	})
	if err != nil {
		return nil, err
	}
	common, _ := g.column("CommonItem", "CommonItemNo")
	weeks := weekColumns(g.headers)

	type rawRow struct {
		row  domain.MixRow
		pcts map[int]decimal.Decimal
	}
	raws := make([]rawRow, 0, len(g.body))
	fractional := true
	for i, row := range g.body {
		if blank(row) {
			continue
		}
		rr := rawRow{
			row: domain.MixRow{
				Location:       cell(row, cols[0]),
				CommonItem:     cell(row, common),
				ProductionItem: cell(row, cols[1]),
				VariantCode:    cell(row, cols[2]),
			},
			pcts: make(map[int]decimal.Decimal),
		}
		for col, week := range weeks {
			raw := cell(row, col)
			if raw == "" {
				continue
			}
			v, explicit, err := parsePct(raw)
			if err != nil {
				return nil, fmt.Errorf("%s row %d week %d: %w", g.sheet, g.firstRow+i, week, err)
			}
			if explicit {
				fractional = false
			}
			if v.GreaterThan(decimal.NewFromInt(1)) {
				fractional = false
			}
			rr.pcts[week] = v
		}
		raws = append(raws, rr)
	}

	hundred := decimal.NewFromInt(100)
	out := make([]domain.MixRow, 0, len(raws))
	for _, rr := range raws {
		rr.row.WeeklyPcts = make(map[int]float64, len(rr.pcts))
		for week, v := range rr.pcts {
			if fractional {
				v = v.Mul(hundred)
			}
			rr.row.WeeklyPcts[week] = v.InexactFloat64()
		}
		out = append(out, rr.row)
	}
	return out, nil
}

// weekColumns maps column index to week number for headers naming weeks 1-53.
func weekColumns(headers []string) map[int]int {
	out := make(map[int]int)
	seen := make(map[int]bool)
	for i, h := range headers {
		m := weekHeader.FindStringSubmatch(normalize(h))
		if m == nil {
			continue
		}
		week, _ := strconv.Atoi(m[1])
		if week < 1 || week > maxWeek || seen[week] {
			continue
		}
		seen[week] = true
		out[i] = week
	}
	return out
}

func parsePct(raw string) (decimal.Decimal, bool, error) {
	explicit := strings.HasSuffix(raw, "%")
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("invalid percentage %q", raw)
	}
	return v, explicit, nil
}

func requireAll(g grid, fields [][]string) ([]int, error) {
	out := make([]int, len(fields))
	for i, names := range fields {
		col, err := g.require(names[0], names[1:]...)
		if err != nil {
			return nil, err
		}
		out[i] = col
	}
	return out, nil
}

func intCell(sheet string, rowNo int, row []string, col int) (int, error) {
	raw := cell(row, col)
	if raw == "" {
		return 0, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || !v.IsInteger() {
		return 0, fmt.Errorf("%s row %d: %q is not a whole number", sheet, rowNo, raw)
	}
	return int(v.IntPart()), nil
}

func floatCell(sheet string, rowNo int, row []string, col int) (float64, error) {
	raw := cell(row, col)
	if raw == "" {
		return 0, nil
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("%s row %d: %q is not a number", sheet, rowNo, raw)
	}
	return v.InexactFloat64(), nil
}
