package evaluators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/types"
)

func TestDataValidator(t *testing.T) {
	_, job, source := sampleInputs()
	v := NewDataValidator(DefaultOptions())

	tests := []struct {
		name        string
		candidate   *types.Candidate
		wantPass    bool
		wantIssue   string
		wantSuggest string
	}{
		{
			name:      "clean one-page document",
			candidate: (&types.Candidate{Content: types.Markup{HTML: sampleHTML}}).WithRender("Ada Lovelace", nil, 1, nil),
			wantPass:  true,
		},
		{
			name:        "two pages",
			candidate:   (&types.Candidate{Content: types.Markup{HTML: sampleHTML}}).WithRender("Ada Lovelace", nil, 2, nil),
			wantIssue:   "Resume is 2 pages (max 1)",
			wantSuggest: "Trim the least relevant content until the resume fits",
		},
		{
			name:      "script tag",
			candidate: &types.Candidate{Content: types.Markup{HTML: sampleHTML + "<script>alert(1)</script>"}},
			wantIssue: "Contains <script> tag",
		},
		{
			name:      "em dash in text",
			candidate: (&types.Candidate{Content: types.Markup{HTML: sampleHTML}}).WithRender("Ada — engineer", nil, 1, nil),
			wantIssue: "Contains forbidden phrase: em dash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.Evaluate(context.Background(), tt.candidate, job, source)
			require.NoError(t, err)
			assert.Equal(t, NameDataValidator, res.Name)
			assert.Equal(t, tt.wantPass, res.Passed)
			if tt.wantPass {
				assert.Equal(t, 1.0, res.Score)
				assert.Empty(t, res.Issues)
				return
			}
			assert.Equal(t, 0.0, res.Score)
			require.NotEmpty(t, res.Issues)
			assert.Contains(t, res.Issues[0], tt.wantIssue)
			if tt.wantSuggest != "" {
				assert.Contains(t, res.Suggestions, tt.wantSuggest)
			}
		})
	}
}

func TestDataValidator_NoContentErrors(t *testing.T) {
	_, job, source := sampleInputs()
	_, err := NewDataValidator(DefaultOptions()).Evaluate(context.Background(), &types.Candidate{}, job, source)
	assert.Error(t, err)
}
