// Package validation checks rewritten resumes for structural problems and forbidden phrasing.
package validation

import (
	"fmt"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// Error reports a candidate that could not be checked at all. A candidate that
// was checked and has problems yields Violations instead.
type Error struct {
	Kind    types.ContentKind
	Message string
}

func (e *Error) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("validation error (%s content): %s", e.Kind, e.Message)
	}
	return "validation error: " + e.Message
}
