package llm

import "fmt"

// ParseError reports model output that could not be turned into the expected type.
type ParseError struct {
	Target string
	Raw    string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Target, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Target)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
