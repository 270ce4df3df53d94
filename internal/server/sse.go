package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSE event names sent by POST /optimize/stream.
const (
	EventJob       = "job"
	EventIteration = "iteration"
	EventComplete  = "complete"
	EventError     = "error"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) error {
	return s.WriteEvent(EventError, map[string]string{"error": message})
}

// CompletePayload is the data of the final complete event.
type CompletePayload struct {
	RunID      string `json:"run_id,omitempty"`
	Passed     bool   `json:"passed"`
	Iterations int    `json:"iterations"`
	Scores     string `json:"scores"`
	// PDFBase64 is empty when the last render failed.
	PDFBase64 string `json:"pdf_base64"`
}

// WriteComplete sends a completion event
func (s *SSEWriter) WriteComplete(p CompletePayload) error {
	return s.WriteEvent(EventComplete, p)
}
