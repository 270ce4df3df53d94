package ingestion

import (
	"context"
	"os"
	"strings"
	"time"
)

// JobFetcher turns a job posting URL into text. fetch.CachedFetcher implements it.
type JobFetcher interface {
	JobText(ctx context.Context, url string) (string, error)
}

// IsURL reports whether input looks like an http(s) URL.
func IsURL(input string) bool {
	s := strings.ToLower(strings.TrimSpace(input))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ResolveJobText interprets input as, in order, an existing file path, an
// http(s) URL or the posting text itself. Fetch errors such as
// *fetch.BlockedError are returned unwrapped so callers can offer manual input.
func ResolveJobText(ctx context.Context, input string, fetcher JobFetcher) (*JobInput, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, &Error{Source: "job input", Message: "no job posting given", Cause: ErrEmptyInput}
	}
	now := time.Now()

	if !IsURL(input) && !strings.Contains(input, "\n") {
		if info, err := os.Stat(input); err == nil && !info.IsDir() {
			data, err := os.ReadFile(input)
			if err != nil {
				return nil, &Error{Source: input, Message: "failed to read job file", Cause: err}
			}
			text := CleanText(string(data))
			if text == "" {
				return nil, &Error{Source: input, Message: "job file is empty", Cause: ErrEmptyInput}
			}
			return newJobInput(text, SourceFile, input, now), nil
		}
	}

	if IsURL(input) {
		if fetcher == nil {
			return nil, &Error{Source: input, Message: "URL input needs a fetcher"}
		}
		text, err := fetcher.JobText(ctx, input)
		if err != nil {
			return nil, err
		}
		return newJobInput(CleanText(text), SourceURL, input, now), nil
	}

	return newJobInput(CleanText(input), SourceText, "", now), nil
}

// ManualJobInput wraps pasted posting text.
func ManualJobInput(text, url string) (*JobInput, error) {
	text = CleanText(text)
	if text == "" {
		return nil, &Error{Source: "manual input", Message: "no job description provided", Cause: ErrEmptyInput}
	}
	in := newJobInput(text, SourceText, "", time.Now())
	if url != "" {
		in.Location = url
	}
	return in, nil
}
