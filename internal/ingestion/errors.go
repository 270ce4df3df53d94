// Package ingestion loads resumes from disk and resolves job posting input
// given as a file, a URL or raw text.
package ingestion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned when a resume or job input has no text.
var ErrEmptyInput = errors.New("input is empty")

// Error represents a failure to load an input.
type Error struct {
	Source  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ingestion error for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("ingestion error for %s: %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UnsupportedFormatError is returned for resume files with an unknown extension.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported resume format %q (supported: %s)", e.Extension, strings.Join(SupportedExtensions(), ", "))
}
