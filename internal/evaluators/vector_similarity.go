package evaluators

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// ErrEmbeddingShape is returned when the embedding call does not return one
// non-empty vector per input.
var ErrEmbeddingShape = errors.New("unexpected embedding response shape")

// VectorSimilarityMatcher scores the cosine similarity between the resume text
// and the job posting embeddings.
type VectorSimilarityMatcher struct {
	meta
	client llm.Client
}

// NewVectorSimilarityMatcher creates the semantic similarity check.
func NewVectorSimilarityMatcher(client llm.Client, opts Options) *VectorSimilarityMatcher {
	return &VectorSimilarityMatcher{
		meta:   meta{name: NameVectorSimilarity, priority: 20, threshold: opts.VectorThreshold},
		client: client,
	}
}

// Evaluate implements evaluation.Evaluator.
func (v *VectorSimilarityMatcher) Evaluate(ctx context.Context, candidate *types.Candidate, job *types.JobPosting, _ *types.SourceDocument) (evaluation.Result, error) {
	vectors, err := v.client.Embed(ctx, []string{candidate.EvaluationText(), jobText(job)})
	if err != nil {
		return evaluation.Result{}, fmt.Errorf("failed to embed texts: %w", err)
	}
	if len(vectors) != 2 || len(vectors[0]) == 0 || len(vectors[1]) == 0 {
		return evaluation.Result{}, ErrEmbeddingShape
	}

	score := CosineSimilarity(vectors[0], vectors[1])
	res := v.result(score >= v.threshold, score)
	if !res.Passed {
		res.Issues = []string{fmt.Sprintf("Low semantic similarity to the job posting (%.2f)", score)}
		res.Suggestions = []string{"Describe existing experience in the vocabulary of the job description"}
	}
	return res, nil
}

// jobText is the job side of the similarity comparison.
func jobText(job *types.JobPosting) string {
	parts := []string{job.Title, job.Summary()}
	if len(job.Requirements) > 0 {
		parts = append(parts, strings.Join(job.Requirements, "\n"))
	}
	if len(job.Keywords) > 0 {
		parts = append(parts, strings.Join(job.Keywords, ", "))
	}
	return strings.Join(parts, "\n\n")
}

// CosineSimilarity returns the cosine of the angle between a and b, clamped to
// [0, 1]. Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(0, math.Min(1, sim))
}
