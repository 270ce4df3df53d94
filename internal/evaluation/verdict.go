package evaluation

import (
	"fmt"
	"strings"
)

// Verdict is the ordered set of results produced by one validation pass.
type Verdict struct {
	Results []Result `json:"results"`
}

// NewVerdict copies results into a Verdict.
func NewVerdict(results ...Result) Verdict {
	return Verdict{Results: append([]Result(nil), results...)}
}

// Passed reports whether every produced result passed. Skipped evaluators have no
// result and do not count either way.
func (v Verdict) Passed() bool {
	for _, r := range v.Results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Failed returns the failing results in order.
func (v Verdict) Failed() []Result {
	var failed []Result
	for _, r := range v.Results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Get returns the result with the given evaluator name.
func (v Verdict) Get(name string) (Result, bool) {
	for _, r := range v.Results {
		if r.Name == name {
			return r, true
		}
	}
	return Result{}, false
}

// Scores renders "Name:score/threshold" pairs, e.g. for a one-line progress report.
func (v Verdict) Scores() string {
	parts := make([]string, 0, len(v.Results))
	for _, r := range v.Results {
		parts = append(parts, fmt.Sprintf("%s:%.2f/%.2f", r.Name, r.Score, r.Threshold))
	}
	return strings.Join(parts, ", ")
}

// Format renders the results as feedback text for the rewriter.
func (v Verdict) Format() string {
	var sb strings.Builder
	for _, r := range v.Results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		sb.WriteString(fmt.Sprintf("[%s] %s (score: %.2f, threshold: %.2f)\n", status, r.Name, r.Score, r.Threshold))
		for _, issue := range r.Issues {
			sb.WriteString(fmt.Sprintf("  - Issue: %s\n", issue))
		}
		for _, suggestion := range r.Suggestions {
			sb.WriteString(fmt.Sprintf("  - Suggestion: %s\n", suggestion))
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
