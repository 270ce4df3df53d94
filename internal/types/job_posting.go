// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// JobPosting represents a structured job posting extracted from raw text.
// It is immutable once parsed and shared across all iterations.
type JobPosting struct {
	Title        string   `json:"title" validate:"required"`
	Company      string   `json:"company" validate:"required"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Keywords     []string `json:"keywords"`
	RawText      string   `json:"raw_text,omitempty"`
}

// Summary returns the description, falling back to the raw posting text.
func (j *JobPosting) Summary() string {
	if j.Description != "" {
		return j.Description
	}
	return j.RawText
}
