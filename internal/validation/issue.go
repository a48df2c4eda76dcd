package validation

// Severity grades an issue. Only errors and warnings lower the quality score.
type Severity string

// Issue severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Entity names the input collection an issue refers to.
type Entity string

// Input collections.
const (
	EntityScheme     Entity = "scheme"
	EntitySchemeLine Entity = "scheme_line"
	EntityPeriod     Entity = "scheme_line_period"
	EntityPreference Entity = "preference"
	EntityMix        Entity = "mix"
)

// Issue is a single finding. Key identifies the offending value (usually a
// scheme code); Row is the 1-based input row when the issue is row-specific.
type Issue struct {
	Rule               string   `json:"rule"`
	Severity           Severity `json:"severity"`
	Message            string   `json:"message"`
	Entity             Entity   `json:"entity"`
	Key                string   `json:"key,omitempty"`
	Row                int      `json:"row,omitempty"`
	TransformImpacting bool     `json:"transform_impacting,omitempty"`
}
