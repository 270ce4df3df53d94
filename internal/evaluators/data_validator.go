package evaluators

import (
	"context"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/types"
	"github.com/jonathan/resume-optimizer/internal/validation"
)

var violationSuggestions = map[string]string{
	types.ViolationEmpty:           "Return the full resume content",
	types.ViolationMissingName:     "Put the applicant's name in a single <h1>",
	types.ViolationMissingSections: "Use an <h2 class=\"section-title\"> for every section",
	types.ViolationScript:          "Remove all <script> tags",
	types.ViolationForbiddenPhrase: "Replace em dashes with commas or hyphens and avoid the word \"delve\"",
	types.ViolationPageOverflow:    "Trim the least relevant content until the resume fits",
	types.ViolationMissingField:    "Fill in every required field",
}

// DataValidator checks document structure, forbidden phrasing and page count.
type DataValidator struct {
	meta
	maxPages int
}

// NewDataValidator creates the structure check.
func NewDataValidator(opts Options) *DataValidator {
	return &DataValidator{
		meta:     meta{name: NameDataValidator, priority: 0, threshold: 1.0},
		maxPages: opts.MaxPages,
	}
}

// Evaluate implements evaluation.Evaluator.
func (d *DataValidator) Evaluate(_ context.Context, candidate *types.Candidate, _ *types.JobPosting, _ *types.SourceDocument) (evaluation.Result, error) {
	violations, err := validation.ValidateCandidate(candidate, validation.Options{MaxPages: d.maxPages})
	if err != nil {
		return evaluation.Result{}, err
	}
	if violations.Empty() {
		return d.result(true, 1.0), nil
	}

	res := d.result(false, 0)
	res.Issues = violations.Messages()
	seen := make(map[string]bool)
	for _, v := range violations.Violations {
		if s, ok := violationSuggestions[v.Type]; ok && !seen[s] {
			seen[s] = true
			res.Suggestions = append(res.Suggestions, s)
		}
	}
	return res, nil
}
