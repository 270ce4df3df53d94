// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// SourceDocument is the original resume the optimizer works from. It is created once
// per run and shared read-only with every collaborator.
type SourceDocument struct {
	Content   string `json:"content"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Checksum  string `json:"checksum"`
}

// NewSourceDocument builds a SourceDocument and fingerprints its content.
func NewSourceDocument(content, firstName, lastName string) *SourceDocument {
	return &SourceDocument{
		Content:   content,
		FirstName: firstName,
		LastName:  lastName,
		Checksum:  Checksum(content),
	}
}

// Checksum returns the SHA256 hex digest of content.
func Checksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// FullName joins the applicant's first and last name, skipping empty parts.
func (s *SourceDocument) FullName() string {
	switch {
	case s.FirstName != "" && s.LastName != "":
		return s.FirstName + " " + s.LastName
	case s.FirstName != "":
		return s.FirstName
	default:
		return s.LastName
	}
}
