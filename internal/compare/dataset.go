package compare

import "arcflow/internal/produce"

// Dataset is a header row plus rows keyed by those headers.
type Dataset struct {
	Headers []string            `json:"headers"`
	Rows    []map[string]string `json:"rows"`
}

// FromTable converts a rendered record set into a Dataset.
func FromTable(t produce.Table) Dataset {
	return Dataset{Headers: append([]string(nil), t.Headers...), Rows: t.Records()}
}

// NormalizedRow holds a row re-keyed under configured field names alongside
// the original values.
type NormalizedRow struct {
	Values   map[string]string `json:"values"`
	Original map[string]string `json:"original"`
}

// NormalizedDataset is a Dataset remapped onto a Config.
type NormalizedDataset struct {
	Type OutputType `json:"type"`
	// Mapping maps configured field to the header it was matched to.
	Mapping     map[string]string `json:"mapping"`
	Missing     []string          `json:"missing,omitempty"`
	Suggestions []Suggestion      `json:"suggestions,omitempty"`
	Rows        []NormalizedRow   `json:"rows"`
}

// Has reports whether field was matched to a header.
func (n NormalizedDataset) Has(field string) bool {
	_, ok := n.Mapping[field]
	return ok
}
