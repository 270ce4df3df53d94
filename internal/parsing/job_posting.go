package parsing

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/types"
	"github.com/jonathan/resume-optimizer/internal/validation"
)

// ParseJobPosting extracts a structured JobPosting from posting text.
// RawText on the result is the input exactly as given.
func ParseJobPosting(ctx context.Context, client llm.Client, text string, log *zap.Logger) (*types.JobPosting, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Field: "text", Message: "job posting text is empty"}
	}

	validation.LogInjectionWarning(log, validation.CheckInjection(text), "job posting")

	prompt := llm.BuildExtractionPrompt(llm.JobPostingSchema(), validation.QuoteExternalContent("job posting", text))

	start := time.Now()
	raw, err := client.Generate(ctx, llm.Request{
		Tier:   llm.TierLite,
		System: prompts.MustGet(prompts.ParseJobPosting),
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, &APICallError{Task: "job posting", Cause: err}
	}
	log.Debug("job posting parsed", zap.Duration("elapsed", time.Since(start)))

	job, err := llm.Decode[types.JobPosting](raw, schemas.JobPosting)
	if err != nil {
		return nil, err
	}
	if err := postProcess(&job); err != nil {
		return nil, err
	}
	job.RawText = text
	return &job, nil
}
