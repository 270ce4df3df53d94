package evaluators

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/llm/llmtest"
)

func TestAIGeneratedChecker(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantPass   bool
		wantScore  float64
		wantIssues []string
	}{
		{
			name:      "human",
			response:  `{"is_ai_generated": false, "ai_probability": 0.1, "indicators": []}`,
			wantPass:  true,
			wantScore: 0.9,
		},
		{
			name:       "minor tells still pass",
			response:   `{"is_ai_generated": false, "ai_probability": 0.4, "indicators": ["generic summary"]}`,
			wantPass:   true,
			wantScore:  0.6,
			wantIssues: []string{"AI giveaway: generic summary"},
		},
		{
			name:       "machine written",
			response:   "```json\n{\"is_ai_generated\": true, \"ai_probability\": 0.8, \"indicators\": [\"buzzword soup\", \"repeated filler\"]}\n```",
			wantScore:  0.2,
			wantIssues: []string{"AI giveaway: buzzword soup", "AI giveaway: repeated filler"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate, job, source := sampleInputs()
			fake := &llmtest.Fake{Responses: []string{tt.response}}
			opts := DefaultOptions()
			opts.Now = fixedNow

			res, err := NewAIGeneratedChecker(fake, opts).Evaluate(context.Background(), candidate, job, source)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPass, res.Passed)
			assert.InDelta(t, tt.wantScore, res.Score, 1e-9)
			assert.Equal(t, tt.wantIssues, res.Issues)
			if len(tt.wantIssues) > 0 {
				assert.Equal(t, []string{aiTellSuggestion}, res.Suggestions)
			}
			assert.Equal(t, llm.TierStandard, fake.Requests()[0].Tier)
			assert.Contains(t, fake.Requests()[0].Prompt, candidate.Text)
		})
	}
}

func TestAIGeneratedChecker_ClientError(t *testing.T) {
	candidate, job, source := sampleInputs()
	fake := &llmtest.Fake{GenerateFunc: func(context.Context, llm.Request) (string, error) {
		return "", errors.New("unavailable")
	}}
	_, err := NewAIGeneratedChecker(fake, DefaultOptions()).Evaluate(context.Background(), candidate, job, source)
	assert.ErrorContains(t, err, "unavailable")
}
