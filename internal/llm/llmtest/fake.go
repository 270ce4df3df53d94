// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/resume-optimizer/internal/llm"
)

// ErrNoResponse is returned when a Fake runs out of scripted responses.
var ErrNoResponse = errors.New("llmtest: no scripted response")

// Fake is an llm.Client that replays scripted responses and records requests.
type Fake struct {
	// GenerateFunc, when set, handles every generation call.
	GenerateFunc func(ctx context.Context, req llm.Request) (string, error)
	// EmbedFunc, when set, handles every embedding call.
	EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)
	// Responses are returned in order when GenerateFunc is nil.
	Responses []string

	mu       sync.Mutex
	requests []llm.Request
	next     int
}

var _ llm.Client = (*Fake)(nil)

// Generate implements llm.Client.
func (f *Fake) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn := f.GenerateFunc
	var (
		resp string
		err  error
	)
	if fn == nil {
		if f.next < len(f.Responses) {
			resp = f.Responses[f.next]
			f.next++
		} else {
			err = ErrNoResponse
		}
	}
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return "", err
	}
	if req.JSON {
		return llm.CleanJSONBlock(resp), nil
	}
	return resp, nil
}

// GenerateContent implements llm.Client.
func (f *Fake) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.Generate(ctx, llm.Request{Tier: tier, Prompt: prompt})
}

// GenerateJSON implements llm.Client.
func (f *Fake) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.Generate(ctx, llm.Request{Tier: tier, Prompt: prompt, JSON: true})
}

// Embed implements llm.Client.
func (f *Fake) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.EmbedFunc == nil {
		return nil, ErrNoResponse
	}
	return f.EmbedFunc(ctx, texts)
}

// GetModel implements llm.Client.
func (f *Fake) GetModel(tier llm.ModelTier) string {
	return "fake-" + string(tier)
}

// Close implements llm.Client.
func (f *Fake) Close() error { return nil }

// Requests returns a copy of the recorded requests.
func (f *Fake) Requests() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.Request(nil), f.requests...)
}

// CallCount returns the number of generation calls made.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
