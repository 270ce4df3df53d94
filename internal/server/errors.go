// Package server provides the HTTP API for the resume optimizer.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-optimizer/internal/fetch"
	"github.com/jonathan/resume-optimizer/internal/ingestion"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var blocked *fetch.BlockedError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, ingestion.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.As(err, &blocked):
		// The posting site refused us; the client should send job_text instead.
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
