package evaluation

import "fmt"

// RegistryError represents an invalid evaluator registration
type RegistryError struct {
	Name    string
	Message string
}

func (e *RegistryError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("registry error: %s: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("registry error: %s", e.Message)
}

// PanicError wraps a value recovered from a panicking evaluator
type PanicError struct {
	Evaluator string
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("evaluator %s panicked: %v", e.Evaluator, e.Value)
}
