package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/types"
)

func violationTypes(v *types.Violations) []string {
	var out []string
	for _, item := range v.Violations {
		out = append(out, item.Type)
	}
	return out
}

func TestValidateCandidate(t *testing.T) {
	t.Run("nil content", func(t *testing.T) {
		_, err := ValidateCandidate(&types.Candidate{}, Options{})
		var vErr *Error
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("clean markup", func(t *testing.T) {
		c := &types.Candidate{Content: types.Markup{HTML: goodHTML}}
		v, err := ValidateCandidate(c, Options{MaxPages: 1})
		require.NoError(t, err)
		assert.True(t, v.Empty())
	})

	t.Run("unrendered markup checks visible text", func(t *testing.T) {
		c := &types.Candidate{Content: types.Markup{HTML: goodHTML + "<p>I delve deep</p>"}}
		v, err := ValidateCandidate(c, Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{types.ViolationForbiddenPhrase}, violationTypes(v))
	})

	t.Run("rendered text and page overflow", func(t *testing.T) {
		c := (&types.Candidate{Content: types.Markup{HTML: goodHTML}}).
			WithRender("Ada\nShipped — fast", []byte("%PDF"), 2, nil)
		v, err := ValidateCandidate(c, Options{MaxPages: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{types.ViolationForbiddenPhrase, types.ViolationPageOverflow}, violationTypes(v))
		assert.Contains(t, v.Messages()[1], "Resume is 2 pages (max 1)")
	})

	t.Run("custom phrases replace defaults", func(t *testing.T) {
		c := &types.Candidate{Content: types.Markup{HTML: goodHTML + "<p>synergy — always</p>"}}
		v, err := ValidateCandidate(c, Options{ForbiddenPhrases: []string{"synergy"}})
		require.NoError(t, err)
		require.Len(t, v.Violations, 1)
		assert.Contains(t, v.Violations[0].Details, "synergy")
	})

	t.Run("structured", func(t *testing.T) {
		c := &types.Candidate{Content: types.Structured{Data: types.ResumeData{Name: "Ada"}}}
		v, err := ValidateCandidate(c, Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{types.ViolationMissingSections}, violationTypes(v))
	})
}
