package ingestion

import (
	"time"

	"github.com/jonathan/resume-optimizer/internal/fetch"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Source kinds for job input.
const (
	SourceFile = "file"
	SourceURL  = "url"
	SourceText = "text"
)

// JobInput is resolved job posting text plus where it came from.
type JobInput struct {
	Text      string         `json:"text"`
	Kind      string         `json:"kind"`
	Location  string         `json:"location,omitempty"`
	Platform  fetch.Platform `json:"platform,omitempty"`
	Hash      string         `json:"hash"`
	Timestamp string         `json:"timestamp"`
}

// URL returns the posting URL for URL input and "" otherwise.
func (j *JobInput) URL() string {
	if j.Kind == SourceURL {
		return j.Location
	}
	return ""
}

func newJobInput(text, kind, location string, now time.Time) *JobInput {
	in := &JobInput{
		Text:      text,
		Kind:      kind,
		Location:  location,
		Hash:      types.Checksum(text),
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	if kind == SourceURL {
		in.Platform = fetch.DetectPlatform(location)
	}
	return in
}
