package validation

import (
	"fmt"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// Options configures ValidateCandidate.
type Options struct {
	// MaxPages is the page limit for rendered candidates. Zero disables the check.
	MaxPages int
	// ForbiddenPhrases defaults to DefaultForbiddenPhrases when nil.
	ForbiddenPhrases []string
}

// ValidateCandidate runs the structure, phrase and page checks for one candidate.
func ValidateCandidate(c *types.Candidate, opts Options) (*types.Violations, error) {
	if c == nil || c.Content == nil {
		return nil, &Error{Message: "candidate has no content"}
	}

	phrases := opts.ForbiddenPhrases
	if phrases == nil {
		phrases = DefaultForbiddenPhrases
	}

	var all []types.Violation
	var text string

	switch content := c.Content.(type) {
	case types.Markup:
		all = append(all, CheckStructure(content.HTML).Violations...)
		text = plainText(content.HTML)
	case types.Structured:
		all = append(all, CheckData(content.Data).Violations...)
		text = content.Raw()
	default:
		return nil, &Error{Kind: c.Content.Kind(), Message: "unsupported content kind"}
	}

	if c.Rendered() {
		text = c.Text
	}
	all = append(all, CheckForbiddenPhrases(text, phrases)...)

	if opts.MaxPages > 0 && c.PageCount > opts.MaxPages {
		all = append(all, types.Violation{
			Type:     types.ViolationPageOverflow,
			Severity: "error",
			Details:  fmt.Sprintf("Resume is %d pages (max %d)", c.PageCount, opts.MaxPages),
		})
	}

	return &types.Violations{Violations: all}, nil
}
