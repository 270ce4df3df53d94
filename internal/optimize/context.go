package optimize

import "github.com/jonathan/resume-optimizer/internal/evaluation"

// IterationContext is what the rewriter sees on each iteration. LastAttempt and
// Validation are nil on the first iteration.
type IterationContext struct {
	Iteration   int
	Original    string
	LastAttempt *string
	Validation  *evaluation.Verdict
}

// Refinement reports whether a previous attempt exists.
func (c IterationContext) Refinement() bool {
	return c.LastAttempt != nil
}

// FormatFeedback renders the previous verdict's per-evaluator issues and
// suggestions, or "" on the first iteration.
func (c IterationContext) FormatFeedback() string {
	if c.Validation == nil {
		return ""
	}
	return c.Validation.Format()
}
