package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLoadConfig wraps every failure to read or decode configuration sources.
var ErrLoadConfig = errors.New("load config failed")

// FieldError describes one field that failed validation.
type FieldError struct {
	Field string
	Rule  string
	Value any
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s (%v) violates %s", f.Field, f.Value, f.Rule)
}

// ValidationError lists every invalid configuration field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "config error: " + strings.Join(parts, "; ")
}

// Has reports whether the named field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
