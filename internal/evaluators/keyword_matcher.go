package evaluators

import (
	"context"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/keywords"
	"github.com/jonathan/resume-optimizer/internal/types"
)

const reportedKeywords = 10

// KeywordMatcher scores TF-IDF weighted keyword coverage of the rendered text.
type KeywordMatcher struct {
	meta
}

// NewKeywordMatcher creates the keyword coverage check.
func NewKeywordMatcher(opts Options) *KeywordMatcher {
	return &KeywordMatcher{meta: meta{name: NameKeywordMatcher, priority: 10, threshold: opts.KeywordThreshold}}
}

// Evaluate implements evaluation.Evaluator.
func (k *KeywordMatcher) Evaluate(_ context.Context, candidate *types.Candidate, job *types.JobPosting, _ *types.SourceDocument) (evaluation.Result, error) {
	check := keywords.Check(candidate.EvaluationText(), job)
	res := k.result(check.Score >= k.threshold, check.Score)

	missing := check.MissingTerms(reportedKeywords)
	if len(missing) > 0 {
		res.Issues = append(res.Issues, "Missing keywords: "+strings.Join(missing, ", "))
	}
	if !res.Passed {
		res.Suggestions = append(res.Suggestions,
			"Work the missing keywords into existing bullets where the original resume supports them")
	}
	return res, nil
}
