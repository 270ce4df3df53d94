// Package evaluators implements the checks a rendered candidate must pass and
// composes them into the default registry.
package evaluators

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/rendering"
)

// Evaluator names.
const (
	NameDataValidator    = "DataValidator"
	NameKeywordMatcher   = "KeywordMatcher"
	NameVectorSimilarity = "VectorSimilarityMatcher"
	NameLLMChecker       = "LLMChecker"
	NameAIGenerated      = "AIGeneratedChecker"
	NameHallucination    = "HallucinationChecker"
)

// PageImager rasterizes the first page of a PDF.
type PageImager func(ctx context.Context, pdf []byte) ([]byte, int, error)

// Options holds thresholds and collaborators shared by the evaluators.
type Options struct {
	MaxPages             int
	KeywordThreshold     float64
	VectorThreshold      float64
	ATSThreshold         float64
	AIThreshold          float64
	HallucinationStrict  float64
	HallucinationLenient float64
	NoShame              bool
	Now                  func() time.Time
	PageImage            PageImager
	Logger               *zap.Logger
}

// DefaultOptions returns the default thresholds.
func DefaultOptions() Options {
	return Options{
		MaxPages:             1,
		KeywordThreshold:     0.25,
		VectorThreshold:      0.4,
		ATSThreshold:         0.6,
		AIThreshold:          0.5,
		HallucinationStrict:  0.9,
		HallucinationLenient: 0.6,
	}
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.PageImage == nil {
		o.PageImage = rendering.FirstPageImage
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Default builds the registry every optimization run uses, in declaration order.
func Default(client llm.Client, opts Options) (*evaluation.Registry, error) {
	opts = opts.withDefaults()
	return evaluation.NewRegistry(
		NewDataValidator(opts),
		NewKeywordMatcher(opts),
		NewVectorSimilarityMatcher(client, opts),
		NewLLMChecker(client, opts),
		NewAIGeneratedChecker(client, opts),
		NewHallucinationChecker(client, opts),
	)
}

// meta carries the fixed identity of an evaluator.
type meta struct {
	name      string
	priority  int
	threshold float64
}

func (m meta) Name() string       { return m.name }
func (m meta) Priority() int      { return m.priority }
func (m meta) Threshold() float64 { return m.threshold }

func (m meta) result(passed bool, score float64) evaluation.Result {
	return evaluation.Result{Name: m.name, Passed: passed, Score: score, Threshold: m.threshold}
}
