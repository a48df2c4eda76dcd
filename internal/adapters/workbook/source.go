// Package workbook reads Arc Flow exports and reference datasets from XLSX
// workbooks or directories of CSV files.
package workbook

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names of an Arc Flow export.
const (
	SheetSchemes     = "Schemes"
	SheetSchemeLines = "SchemeLines"
	SheetPeriods     = "SchemeLinePeriods"
	SheetPreferences = "Preferences"
	SheetMix         = "Mix"
)

var (
	// ErrSheetMissing is returned when a required sheet (or CSV file) is absent.
	ErrSheetMissing = errors.New("sheet missing")
	// ErrColumnMissing is returned when a sheet lacks a required column.
	ErrColumnMissing = errors.New("column missing")
	// ErrUnsupportedFile is returned for paths that are neither a workbook,
	// a CSV file nor a directory.
	ErrUnsupportedFile = errors.New("unsupported input file")
)

// source yields the raw cell grid of a named sheet. Sheet lookup ignores case
// and separators.
type source interface {
	sheets() []string
	rows(name string) ([][]string, bool, error)
	Close() error
}

func openSource(path string) (source, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return openCSVDir(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
		}
		return &xlsxSource{file: f}, nil
	case ".csv":
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return &csvDir{files: map[string]string{sheetKey(name): path}, order: []string{name}}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
}

func sheetKey(name string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(name)))
}

type xlsxSource struct {
	file *excelize.File
}

func (s *xlsxSource) sheets() []string { return s.file.GetSheetList() }

func (s *xlsxSource) rows(name string) ([][]string, bool, error) {
	for _, sheet := range s.file.GetSheetList() {
		if sheetKey(sheet) != sheetKey(name) {
			continue
		}
		rows, err := s.file.GetRows(sheet)
		if err != nil {
			return nil, true, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		return rows, true, nil
	}
	return nil, false, nil
}

func (s *xlsxSource) Close() error { return s.file.Close() }

type csvDir struct {
	files map[string]string
	order []string
}

func openCSVDir(dir string) (*csvDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	d := &csvDir{files: make(map[string]string)}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		d.files[sheetKey(name)] = filepath.Join(dir, e.Name())
		d.order = append(d.order, name)
	}
	return d, nil
}

func (d *csvDir) sheets() []string { return append([]string(nil), d.order...) }

func (d *csvDir) rows(name string) ([][]string, bool, error) {
	path, ok := d.files[sheetKey(name)]
	if !ok {
		return nil, false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, true, err
	}
	defer func() { _ = f.Close() }()
	rows, err := readCSV(f)
	if err != nil {
		return nil, true, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, true, nil
}

func (d *csvDir) Close() error { return nil }

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// grid is a sheet with its header row resolved.
type grid struct {
	sheet   string
	headers []string
	index   map[string]int
	body    [][]string
	// first data row number as shown in a spreadsheet (1-based, header is 1)
	firstRow int
}

func newGrid(sheet string, rows [][]string) grid {
	g := grid{sheet: sheet, index: make(map[string]int), firstRow: 2}
	if len(rows) == 0 {
		return g
	}
	g.headers = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		g.headers[i] = h
		key := normalize(h)
		if _, dup := g.index[key]; !dup && key != "" {
			g.index[key] = i
		}
	}
	g.body = rows[1:]
	return g
}

// column returns the index of the first alias present in the header row.
func (g grid) column(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if i, ok := g.index[normalize(a)]; ok {
			return i, true
		}
	}
	return -1, false
}

func (g grid) require(field string, aliases ...string) (int, error) {
	i, ok := g.column(append([]string{field}, aliases...)...)
	if !ok {
		return -1, fmt.Errorf("%w: %s.%s", ErrColumnMissing, g.sheet, field)
	}
	return i, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
