// Package validation scores the quality of raw Arc Flow input before it is
// transformed. Issues are advisory: they never block the transform, which only
// requires schemes and scheme lines to be present.
package validation

import "arcflow/pkg/domain"

// Input holds the raw collections under inspection. Its fields mirror
// pipeline.Input so either can be converted into the other.
type Input struct {
	Schemes     []domain.Scheme           `json:"schemes"`
	Lines       []domain.SchemeLine       `json:"scheme_lines"`
	Periods     []domain.SchemeLinePeriod `json:"scheme_line_periods"`
	Preferences []domain.Preference       `json:"preferences"`
	Mix         []domain.MixRow           `json:"mix,omitempty"`
}

// Empty reports whether the input carries no rows at all.
func (in Input) Empty() bool {
	return len(in.Schemes) == 0 && len(in.Lines) == 0 && len(in.Periods) == 0 &&
		len(in.Preferences) == 0 && len(in.Mix) == 0
}

// Rule inspects a snapshot of the input and reports issues.
type Rule interface {
	Name() string
	Evaluate(s *Snapshot) Result
}

// Result aggregates issues from one or more rules.
type Result struct {
	Issues []Issue
}

// Merge appends issues from another result.
func (r *Result) Merge(other Result) {
	if len(other.Issues) == 0 {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
}

// Engine runs registered rules in registration order.
type Engine struct {
	rules []Rule
}

// NewEngine constructs an engine without rules.
func NewEngine() *Engine {
	return &Engine{}
}

// NewDefaultEngine builds an engine with the built-in rule set.
func NewDefaultEngine() *Engine {
	engine := NewEngine()
	engine.Register(NewPresenceRule())
	engine.Register(NewOrphanReferenceRule())
	engine.Register(NewSchemeLinesRule())
	engine.Register(NewLineDurationRule())
	engine.Register(NewPeriodWeekRule())
	engine.Register(NewGenusRule())
	engine.Register(NewDuplicateSchemeRule())
	engine.Register(NewMixCoverageRule())
	return engine
}

// Register appends a rule to the engine.
func (e *Engine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the names of the registered rules.
func (e *Engine) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		names = append(names, r.Name())
	}
	return names
}

// Evaluate executes all registered rules against in and builds the report.
func (e *Engine) Evaluate(in Input) Report {
	snapshot := NewSnapshot(in)
	var combined Result
	for _, rule := range e.rules {
		combined.Merge(rule.Evaluate(snapshot))
	}
	return newReport(in, snapshot, combined.Issues)
}
