// Package evaluation defines the evaluator contract, the evaluator registry and the
// aggregator that turns evaluator outcomes into a single validation verdict.
package evaluation

import (
	"context"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// FinalCheckPriority is the lowest priority treated as a final check. In sequential
// mode final checks are skipped once any earlier evaluator in the pass has failed.
const FinalCheckPriority = 100

// Evaluator inspects a rendered candidate against the job posting and the source
// resume. Implementations must be safe for concurrent use and must not share
// mutable state with other evaluators.
type Evaluator interface {
	// Name is the stable identifier used in reports.
	Name() string
	// Priority orders evaluators in sequential mode, lowest first.
	Priority() int
	// Threshold is the evaluator's declared pass threshold.
	Threshold() float64
	// Evaluate scores the candidate. A returned error is converted into a failing
	// Result by the aggregator.
	Evaluate(ctx context.Context, candidate *types.Candidate, job *types.JobPosting, source *types.SourceDocument) (Result, error)
}

// Result is the normalized output of one evaluator.
type Result struct {
	Name        string   `json:"name"`
	Passed      bool     `json:"passed"`
	Score       float64  `json:"score"`
	Threshold   float64  `json:"threshold"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Outcome is the result of invoking one evaluator: either a Result or an error.
type Outcome struct {
	Evaluator Evaluator
	Result    Result
	Err       error
}

// Resolve converts the outcome into a Result. Errors become a failing result that
// carries the evaluator's threshold and the error text.
func (o Outcome) Resolve() Result {
	if o.Err == nil {
		return o.Result
	}
	return ErrorResult(o.Evaluator, o.Err)
}

// ErrorResult builds the synthetic failing result for an evaluator that errored.
func ErrorResult(e Evaluator, err error) Result {
	return Result{
		Name:        e.Name(),
		Passed:      false,
		Score:       0,
		Threshold:   e.Threshold(),
		Issues:      []string{"Filter error: " + err.Error()},
		Suggestions: []string{"Check filter implementation"},
	}
}
