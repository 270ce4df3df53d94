package parsing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/llm/llmtest"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantFirst string
		wantLast  string
	}{
		{"both parts", `{"first_name": "Ada", "last_name": "King Lovelace"}`, "Ada", "King Lovelace"},
		{"nulls", `{"first_name": null, "last_name": null}`, "", ""},
		{"trimmed", `{"first_name": " Ada ", "last_name": null}`, "Ada", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &llmtest.Fake{Responses: []string{tt.response}}
			first, last, err := ExtractName(context.Background(), fake, "Ada King Lovelace\nLondon", 0, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestExtractName_SendsOnlyTheHead(t *testing.T) {
	fake := &llmtest.Fake{Responses: []string{`{"first_name": "Ada", "last_name": "Lovelace"}`}}
	content := "Ada Lovelace\n" + strings.Repeat("x", 500) + "TAIL_MARKER"

	_, _, err := ExtractName(context.Background(), fake, content, 100, nil)
	require.NoError(t, err)

	req := fake.Requests()[0]
	assert.Equal(t, llm.TierLite, req.Tier)
	assert.Contains(t, req.Prompt, "Ada Lovelace")
	assert.NotContains(t, req.Prompt, "TAIL_MARKER")
}

func TestExtractName_EmptyContentSkipsCall(t *testing.T) {
	fake := &llmtest.Fake{}
	first, last, err := ExtractName(context.Background(), fake, "   ", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, first)
	assert.Empty(t, last)
	assert.Equal(t, 0, fake.CallCount())
}

func TestHead(t *testing.T) {
	assert.Equal(t, "abc", head("abc", 5))
	assert.Equal(t, "ab", head("abc", 2))
	assert.Equal(t, "é", head("éa", 1))
}
