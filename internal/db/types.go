package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusPassed    = "passed"
	RunStatusExhausted = "exhausted"
	RunStatusFailed    = "failed"
)

// Run is one optimization run.
type Run struct {
	ID             uuid.UUID  `json:"id"`
	Company        string     `json:"company"`
	RoleTitle      string     `json:"role_title"`
	JobURL         string     `json:"job_url,omitempty"`
	SourceChecksum string     `json:"source_checksum"`
	Mode           string     `json:"mode"`
	NoShame        bool       `json:"no_shame"`
	MaxIterations  int        `json:"max_iterations"`
	Status         string     `json:"status"`
	Iterations     int        `json:"iterations"`
	Passed         bool       `json:"passed"`
	Error          *string    `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// RunInput holds the fields set when a run starts.
type RunInput struct {
	Company        string
	RoleTitle      string
	JobURL         string
	SourceChecksum string
	Mode           string
	NoShame        bool
	MaxIterations  int
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	Company string
	Status  string
	Limit   int
}

// Iteration is the stored verdict of one loop iteration.
type Iteration struct {
	RunID     uuid.UUID       `json:"run_id"`
	Index     int             `json:"index"`
	Passed    bool            `json:"passed"`
	Verdict   json.RawMessage `json:"verdict"`
	Content   string          `json:"content,omitempty"`
	PageCount int             `json:"page_count"`
	CreatedAt time.Time       `json:"created_at"`
}

// GeneratedResume is a stored record of a written resume document.
type GeneratedResume struct {
	ID             uuid.UUID  `json:"id"`
	RunID          *uuid.UUID `json:"run_id,omitempty"`
	Path           string     `json:"path"`
	SourceChecksum string     `json:"source_checksum"`
	Company        string     `json:"company"`
	JobTitle       string     `json:"job_title"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
