package workbook

import (
	"fmt"
	"strings"

	"arcflow/internal/compare"
)

// ReadDataset loads a reference dataset from a CSV file or a workbook sheet.
// An empty sheet name selects the first sheet. Duplicate and blank headers
// are dropped; the first occurrence wins.
func ReadDataset(path, sheet string) (compare.Dataset, error) {
	src, err := openSource(path)
	if err != nil {
		return compare.Dataset{}, err
	}
	defer func() { _ = src.Close() }()

	if sheet == "" {
		names := src.sheets()
		if len(names) == 0 {
			return compare.Dataset{}, fmt.Errorf("%w: %s has no sheets", ErrSheetMissing, path)
		}
		sheet = names[0]
	}
	rows, ok, err := src.rows(sheet)
	if err != nil {
		return compare.Dataset{}, err
	}
	if !ok {
		return compare.Dataset{}, fmt.Errorf("%w: %s", ErrSheetMissing, sheet)
	}
	return datasetFromRows(rows), nil
}

func datasetFromRows(rows [][]string) compare.Dataset {
	var ds compare.Dataset
	if len(rows) == 0 {
		return ds
	}
	seen := make(map[string]bool)
	cols := make([]int, 0, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		ds.Headers = append(ds.Headers, h)
		cols = append(cols, i)
	}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make(map[string]string, len(cols))
		for j, col := range cols {
			rec[ds.Headers[j]] = cell(row, col)
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds
}
