package types

import "fmt"

// Violation types reported by the structure validator.
const (
	ViolationEmpty           = "empty_content"
	ViolationMissingName     = "missing_name"
	ViolationMissingSections = "missing_sections"
	ViolationScript          = "script_tag"
	ViolationForbiddenPhrase = "forbidden_phrase"
	ViolationPageOverflow    = "page_overflow"
	ViolationMissingField    = "missing_field"
)

// Violation represents a single validation failure
type Violation struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Details    string `json:"details"`
	LineNumber *int   `json:"line_number,omitempty"`
}

// String renders the violation the way it is reported back to the rewriter.
func (v Violation) String() string {
	if v.LineNumber != nil {
		return fmt.Sprintf("%s (line %d)", v.Details, *v.LineNumber)
	}
	return v.Details
}

// Violations represents a collection of validation failures
type Violations struct {
	Violations []Violation `json:"violations"`
}

// Messages returns the rendered details of every violation, in order.
func (v *Violations) Messages() []string {
	if v == nil {
		return nil
	}
	out := make([]string, 0, len(v.Violations))
	for _, item := range v.Violations {
		out = append(out, item.String())
	}
	return out
}

// Empty reports whether no violations were recorded.
func (v *Violations) Empty() bool {
	return v == nil || len(v.Violations) == 0
}
