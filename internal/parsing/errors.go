// Package parsing turns raw job posting and resume text into structured values using an LLM.
package parsing

import "fmt"

// APICallError wraps a failed model call. Task names what was being parsed.
type APICallError struct {
	Task  string
	Cause error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("%s: model call failed: %v", e.Task, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ValidationError reports a parsed job posting missing a required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid job posting %s: %s", e.Field, e.Message)
}
