package pipeline

import (
	"errors"

	"arcflow/pkg/domain"
)

// Structural failures that abort a run before any record is generated.
var (
	ErrMissingSchemes     = errors.New("no schemes supplied")
	ErrMissingSchemeLines = errors.New("no scheme lines supplied")
)

// Input holds the parsed Arc Flow collections for one run.
type Input struct {
	Schemes     []domain.Scheme           `json:"schemes"`
	Lines       []domain.SchemeLine       `json:"scheme_lines"`
	Periods     []domain.SchemeLinePeriod `json:"scheme_line_periods"`
	Preferences []domain.Preference       `json:"preferences"`
	Mix         []domain.MixRow           `json:"mix,omitempty"`
}

// Output holds every record set generated by a run plus its diagnostics.
// Errors is non-empty only when required input was missing, in which case
// every record set is empty.
type Output struct {
	Catalogs []domain.Catalog    `json:"catalogs"`
	Recipes  []domain.Recipe     `json:"recipes"`
	Events   []domain.SpaceEvent `json:"events"`
	Specs    []domain.SpaceSpec  `json:"specs"`
	Mixes    []domain.RecipeMix  `json:"mixes"`
	Warnings []string            `json:"warnings"`
	Errors   []string            `json:"errors"`

	failures []error
}

// Failed reports whether the run was aborted.
func (o Output) Failed() bool { return len(o.Errors) > 0 }

// Err joins the structural failures of an aborted run; nil otherwise.
func (o Output) Err() error { return errors.Join(o.failures...) }

// Summary counts the records and diagnostics of a run.
type Summary struct {
	Catalogs int `json:"catalogs"`
	Recipes  int `json:"recipes"`
	Events   int `json:"events"`
	Specs    int `json:"specs"`
	Mixes    int `json:"mixes"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// Summary returns record and diagnostic counts.
func (o Output) Summary() Summary {
	return Summary{
		Catalogs: len(o.Catalogs),
		Recipes:  len(o.Recipes),
		Events:   len(o.Events),
		Specs:    len(o.Specs),
		Mixes:    len(o.Mixes),
		Warnings: len(o.Warnings),
		Errors:   len(o.Errors),
	}
}

// Transform runs the full derivation: scheme rules, catalogs, recipes,
// events, specs and mix breakouts. Identifiers restart at 1 on every call.
func Transform(in Input) Output {
	var out Output
	if len(in.Schemes) == 0 {
		out.fail(ErrMissingSchemes)
	}
	if len(in.Lines) == 0 {
		out.fail(ErrMissingSchemeLines)
	}
	if out.Failed() {
		return out
	}

	ids := NewAllocators()
	dict := BuildSchemeDictionary(in.Lines, in.Periods)
	out.Catalogs = DeriveCatalogs(in.Schemes, in.Preferences, &ids.Catalogs)

	recipes, warnings := GenerateRecipes(in.Preferences, dict, in.Schemes, out.Catalogs, &ids.Recipes)
	out.Recipes = recipes
	out.Warnings = append(out.Warnings, warnings...)

	out.Events = DeriveEvents(out.Recipes, dict, &ids.Events)
	out.Specs = DeriveSpecs(out.Recipes, in.Lines, &ids.Specs)

	mixes, warnings := BreakoutMixes(in.Mix, out.Recipes, out.Catalogs, &ids.Mixes)
	out.Mixes = mixes
	out.Warnings = append(out.Warnings, warnings...)
	return out
}

func (o *Output) fail(err error) {
	o.failures = append(o.failures, err)
	o.Errors = append(o.Errors, err.Error())
}
