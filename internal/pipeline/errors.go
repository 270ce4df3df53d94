package pipeline

import "fmt"

// Error reports an invalid pipeline invocation.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pipeline error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pipeline error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
