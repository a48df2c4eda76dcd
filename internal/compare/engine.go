package compare

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// minDetectScore is the number of matching fields a type needs to be detected.
const minDetectScore = 2

// DetectCompareType scores every configuration by how many of its fields
// match headers and returns the best one. Ties go to the earlier
// configuration. ok is false when no configuration reaches minDetectScore.
func (e *Engine) DetectCompareType(headers []string) (OutputType, bool) {
	var best OutputType
	bestScore := 0
	for _, c := range e.configs {
		score := 0
		for _, field := range c.Fields() {
			if _, ok := resolveField(c, field, headers); ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = c.Type, score
		}
	}
	if bestScore < minDetectScore {
		return "", false
	}
	return best, true
}

// NormalizeHeaders maps each configured field of typ to its best matching
// header in ds and re-keys the rows under the field names. Fields without a
// header are listed in Missing with fuzzy suggestions.
func (e *Engine) NormalizeHeaders(ds Dataset, typ OutputType) (NormalizedDataset, error) {
	c, err := e.Config(typ)
	if err != nil {
		return NormalizedDataset{}, err
	}
	return normalize(c, ds), nil
}

func normalize(c Config, ds Dataset) NormalizedDataset {
	n := NormalizedDataset{Type: c.Type, Mapping: make(map[string]string), Rows: make([]NormalizedRow, 0, len(ds.Rows))}
	taken := make(map[string]bool)
	for _, field := range c.Fields() {
		if h, ok := resolveField(c, field, ds.Headers); ok {
			n.Mapping[field] = h
			taken[h] = true
			continue
		}
		n.Missing = append(n.Missing, field)
	}
	for _, field := range n.Missing {
		n.Suggestions = append(n.Suggestions, suggest(field, ds.Headers, taken))
	}
	for _, row := range ds.Rows {
		values := make(map[string]string, len(n.Mapping))
		for field, header := range n.Mapping {
			values[field] = row[header]
		}
		n.Rows = append(n.Rows, NormalizedRow{Values: values, Original: row})
	}
	return n
}

// Status classifies a compared row.
type Status string

// Row statuses in result order.
const (
	StatusChanged Status = "changed"
	StatusAdded   Status = "added"
	StatusRemoved Status = "removed"
	StatusMatched Status = "matched"
)

var statusRank = map[Status]int{StatusChanged: 0, StatusAdded: 1, StatusRemoved: 2, StatusMatched: 3}

// FieldDiff is one differing compare field.
type FieldDiff struct {
	Field     string `json:"field"`
	Output    string `json:"output"`
	Reference string `json:"reference"`
}

// RowResult is the comparison outcome for one composite key. Output or
// Reference is nil when the key exists on one side only.
type RowResult struct {
	Status    Status            `json:"status"`
	Key       string            `json:"key"`
	Output    map[string]string `json:"output,omitempty"`
	Reference map[string]string `json:"reference,omitempty"`
	Diffs     []FieldDiff       `json:"diffs,omitempty"`
}

// Counts tallies result rows by status.
type Counts struct {
	Matched int `json:"matched"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
}

// Result is the outcome of CompareData. TotalSource and TotalCompare count
// the rows supplied on the output and reference side.
type Result struct {
	Type          OutputType   `json:"type"`
	Rows          []RowResult  `json:"rows"`
	Counts        Counts       `json:"counts"`
	TotalSource   int          `json:"total_source"`
	TotalCompare  int          `json:"total_compare"`
	DuplicateKeys int          `json:"duplicate_keys"`
	SkippedFields []string     `json:"skipped_fields,omitempty"`
	Unmatched     []Suggestion `json:"unmatched,omitempty"`
}

// CompareData diffs generated output against a reference dataset of type typ.
// Rows are keyed on the configured key fields (trimmed, lower-cased, joined
// with "|"); rows with an entirely empty key are ignored and the first row of
// a duplicated key wins. Compare fields missing from either side are skipped.
func (e *Engine) CompareData(output, reference Dataset, typ OutputType) (Result, error) {
	c, err := e.Config(typ)
	if err != nil {
		return Result{}, err
	}
	out := normalize(c, output)
	ref := normalize(c, reference)

	res := Result{Type: typ, TotalSource: len(output.Rows), TotalCompare: len(reference.Rows), Unmatched: ref.Suggestions}
	var fields []string
	for _, field := range c.CompareFields {
		if out.Has(field) && ref.Has(field) {
			fields = append(fields, field)
			continue
		}
		res.SkippedFields = append(res.SkippedFields, field)
	}

	outIndex := buildIndex(c.KeyFields, out.Rows)
	refIndex := buildIndex(c.KeyFields, ref.Rows)
	res.DuplicateKeys = outIndex.duplicates + refIndex.duplicates

	for _, key := range outIndex.order {
		row := outIndex.rows[key]
		other, ok := refIndex.rows[key]
		if !ok {
			res.Rows = append(res.Rows, RowResult{Status: StatusAdded, Key: key, Output: row.Values})
			continue
		}
		diffs := diffFields(fields, row.Values, other.Values)
		status := StatusMatched
		if len(diffs) > 0 {
			status = StatusChanged
		}
		res.Rows = append(res.Rows, RowResult{Status: status, Key: key, Output: row.Values, Reference: other.Values, Diffs: diffs})
	}
	for _, key := range refIndex.order {
		if _, ok := outIndex.rows[key]; ok {
			continue
		}
		res.Rows = append(res.Rows, RowResult{Status: StatusRemoved, Key: key, Reference: refIndex.rows[key].Values})
	}

	sort.SliceStable(res.Rows, func(i, j int) bool {
		return statusRank[res.Rows[i].Status] < statusRank[res.Rows[j].Status]
	})
	for _, row := range res.Rows {
		switch row.Status {
		case StatusChanged:
			res.Counts.Changed++
		case StatusAdded:
			res.Counts.Added++
		case StatusRemoved:
			res.Counts.Removed++
		case StatusMatched:
			res.Counts.Matched++
		}
	}
	return res, nil
}

type rowIndex struct {
	order      []string
	rows       map[string]NormalizedRow
	duplicates int
}

func buildIndex(keyFields []string, rows []NormalizedRow) rowIndex {
	ix := rowIndex{rows: make(map[string]NormalizedRow, len(rows))}
	for _, row := range rows {
		key, ok := compositeKey(keyFields, row.Values)
		if !ok {
			continue
		}
		if _, dup := ix.rows[key]; dup {
			ix.duplicates++
			continue
		}
		ix.rows[key] = row
		ix.order = append(ix.order, key)
	}
	return ix
}

// compositeKey joins the normalized key values. ok is false when every part
// is empty.
func compositeKey(keyFields []string, values map[string]string) (string, bool) {
	parts := make([]string, len(keyFields))
	empty := true
	for i, field := range keyFields {
		parts[i] = strings.ToLower(strings.TrimSpace(values[field]))
		if parts[i] != "" {
			empty = false
		}
	}
	return strings.Join(parts, "|"), !empty
}

func diffFields(fields []string, out, ref map[string]string) []FieldDiff {
	var diffs []FieldDiff
	for _, field := range fields {
		if ValuesEqual(out[field], ref[field]) {
			continue
		}
		diffs = append(diffs, FieldDiff{Field: field, Output: out[field], Reference: ref[field]})
	}
	return diffs
}

// ValuesEqual compares numerically when both sides parse as numbers, and
// case-insensitively after trimming otherwise.
func ValuesEqual(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA == nil && errB == nil {
		return da.Equal(db)
	}
	return strings.EqualFold(a, b)
}
