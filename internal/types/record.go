// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// GeneratedRecord describes one generated resume document on disk.
type GeneratedRecord struct {
	Path           string    `json:"path"`
	SourceChecksum string    `json:"source_checksum"`
	Company        string    `json:"company"`
	JobTitle       string    `json:"job_title"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
