package parsing

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/schemas"
)

// DefaultNameChars is how much of the resume is sent to the name extractor.
const DefaultNameChars = 2000

type extractedName struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// ExtractName returns the applicant's first and last name from the top of a
// resume. Either part may be empty when the model cannot find it.
func ExtractName(ctx context.Context, client llm.Client, content string, maxChars int, log *zap.Logger) (string, string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if maxChars <= 0 {
		maxChars = DefaultNameChars
	}
	snippet := head(content, maxChars)
	if strings.TrimSpace(snippet) == "" {
		return "", "", nil
	}

	raw, err := client.Generate(ctx, llm.Request{
		Tier:   llm.TierLite,
		System: prompts.MustGet(prompts.ExtractName),
		Prompt: llm.BuildExtractionPrompt(llm.CandidateNameSchema(), snippet),
		JSON:   true,
	})
	if err != nil {
		return "", "", &APICallError{Task: "name extraction", Cause: err}
	}

	name, err := llm.Decode[extractedName](raw, schemas.Name)
	if err != nil {
		return "", "", err
	}
	first, last := deref(name.FirstName), deref(name.LastName)
	log.Debug("name extracted", zap.String("first_name", first), zap.String("last_name", last))
	return first, last, nil
}

// head returns at most n runes of s.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
