package validation

import "strings"

// codeSet is an insertion-ordered set of trimmed, non-empty codes.
type codeSet struct {
	order []string
	index map[string]struct{}
}

func newCodeSet() *codeSet { return &codeSet{index: make(map[string]struct{})} }

func (c *codeSet) add(code string) {
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}
	if _, ok := c.index[code]; ok {
		return
	}
	c.index[code] = struct{}{}
	c.order = append(c.order, code)
}

func (c *codeSet) has(code string) bool {
	_, ok := c.index[strings.TrimSpace(code)]
	return ok
}

func (c *codeSet) len() int { return len(c.order) }

// Snapshot indexes an Input for the rules. Scheme codes are compared trimmed
// and case-sensitively; locations and items case-insensitively.
type Snapshot struct {
	Input

	schemeCodes     *codeSet
	lineCodes       *codeSet
	periodCodes     *codeSet
	preferenceCodes *codeSet
	locations       *codeSet
	items           *codeSet
}

// NewSnapshot indexes in.
func NewSnapshot(in Input) *Snapshot {
	s := &Snapshot{
		Input:           in,
		schemeCodes:     newCodeSet(),
		lineCodes:       newCodeSet(),
		periodCodes:     newCodeSet(),
		preferenceCodes: newCodeSet(),
		locations:       newCodeSet(),
		items:           newCodeSet(),
	}
	for _, scheme := range in.Schemes {
		s.schemeCodes.add(scheme.Code)
	}
	for _, line := range in.Lines {
		s.lineCodes.add(line.SchemeCode)
	}
	for _, period := range in.Periods {
		s.periodCodes.add(period.SchemeCode)
	}
	for _, pref := range in.Preferences {
		s.preferenceCodes.add(pref.SchemeCode)
		s.locations.add(strings.ToUpper(pref.LocationCode))
		s.items.add(strings.ToUpper(pref.ProductionItemNo))
	}
	return s
}

// HasScheme reports whether a Scheme row exists for code.
func (s *Snapshot) HasScheme(code string) bool { return s.schemeCodes.has(code) }

// HasLines reports whether at least one scheme line exists for code.
func (s *Snapshot) HasLines(code string) bool { return s.lineCodes.has(code) }

// HasLocation reports whether any preference uses location.
func (s *Snapshot) HasLocation(location string) bool {
	return s.locations.has(strings.ToUpper(location))
}

// HasItem reports whether any preference uses the production item.
func (s *Snapshot) HasItem(item string) bool { return s.items.has(strings.ToUpper(item)) }

// Stats summarizes row counts and distinct codes.
func (s *Snapshot) Stats() Stats {
	withLines := 0
	for _, code := range s.schemeCodes.order {
		if s.lineCodes.has(code) {
			withLines++
		}
	}
	return Stats{
		Schemes:          len(s.Schemes),
		SchemeLines:      len(s.Lines),
		Periods:          len(s.Periods),
		Preferences:      len(s.Preferences),
		MixRows:          len(s.Mix),
		SchemeCodes:      s.schemeCodes.len(),
		SchemesWithLines: withLines,
		Locations:        s.locations.len(),
	}
}
