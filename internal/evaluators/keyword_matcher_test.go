package evaluators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/types"
)

func TestKeywordMatcher(t *testing.T) {
	candidate, job, source := sampleInputs()
	m := NewKeywordMatcher(DefaultOptions())

	res, err := m.Evaluate(context.Background(), candidate, job, source)
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Greater(t, res.Score, 0.25)
	assert.Empty(t, res.Suggestions)

	unrelated := (&types.Candidate{Content: types.Markup{HTML: "<h1>Ada</h1>"}}).
		WithRender("Ada Lovelace\nPainted watercolors of lighthouses", nil, 1, nil)
	res, err = m.Evaluate(context.Background(), unrelated, job, source)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Less(t, res.Score, 0.25)
	require.NotEmpty(t, res.Issues)
	assert.Contains(t, res.Issues[0], "Missing keywords: ")
	assert.Contains(t, res.Issues[0], "kubernetes")
	assert.NotEmpty(t, res.Suggestions)
}

func TestKeywordMatcher_EmptyPostingPasses(t *testing.T) {
	candidate, _, source := sampleInputs()
	res, err := NewKeywordMatcher(DefaultOptions()).Evaluate(context.Background(), candidate, &types.JobPosting{Title: "X", Company: "Y"}, source)
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, 1.0, res.Score)
}
