// Package optimize runs the rewrite, render and evaluate loop until a candidate
// passes every evaluator or the iteration budget runs out.
package optimize

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/logger"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// DefaultMaxIterations is the default iteration budget.
const DefaultMaxIterations = 5

// RenderEvaluatorName names the synthetic result produced when rendering fails.
const RenderEvaluatorName = "PDFRender"

// Rewriter produces the next candidate.
type Rewriter interface {
	Rewrite(ctx context.Context, source *types.SourceDocument, job *types.JobPosting, ictx IterationContext) (*types.Candidate, error)
}

// Renderer renders a candidate and attaches the extracted text, PDF and page count.
type Renderer interface {
	RenderAndExtract(ctx context.Context, candidate *types.Candidate) (*types.Candidate, error)
}

// Observer is called once per iteration after the verdict is known. A returned
// error stops the loop.
type Observer func(ctx context.Context, iteration int, candidate *types.Candidate, verdict evaluation.Verdict) error

// State is the terminal state of a loop run.
type State string

const (
	// StatePassed means the last candidate passed every evaluator.
	StatePassed State = "passed"
	// StateExhausted means the iteration budget ran out without a pass.
	StateExhausted State = "exhausted"
)

// Result is the outcome of a loop run.
type Result struct {
	Candidate  *types.Candidate
	Verdict    evaluation.Verdict
	Job        *types.JobPosting
	Iterations int
	State      State
}

// Passed reports whether the final verdict passed.
func (r *Result) Passed() bool {
	return r != nil && r.State == StatePassed
}

// Options configures a Loop.
type Options struct {
	MaxIterations int
	Mode          evaluation.Mode
	Observer      Observer
	Logger        *zap.Logger
	Aggregator    *evaluation.Aggregator
}

// DefaultOptions returns options with the default iteration budget in parallel mode.
func DefaultOptions() Options {
	return Options{MaxIterations: DefaultMaxIterations, Mode: evaluation.ModeParallel}
}

// Loop drives the optimization.
type Loop struct {
	rewriter   Rewriter
	renderer   Renderer
	registry   *evaluation.Registry
	aggregator *evaluation.Aggregator
	opts       Options
	log        *zap.Logger
}

// NewLoop validates options and builds a Loop.
func NewLoop(rewriter Rewriter, renderer Renderer, registry *evaluation.Registry, opts Options) (*Loop, error) {
	if opts.MaxIterations < 1 {
		return nil, &ConfigError{Field: "max_iterations", Message: fmt.Sprintf("must be at least 1, got %d", opts.MaxIterations)}
	}
	if rewriter == nil || renderer == nil || registry == nil {
		return nil, &ConfigError{Field: "collaborators", Message: "rewriter, renderer and registry are required"}
	}
	if opts.Mode == "" {
		opts.Mode = evaluation.ModeParallel
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	agg := opts.Aggregator
	if agg == nil {
		agg = evaluation.NewAggregator(evaluation.WithLogger(log))
	}
	return &Loop{
		rewriter:   rewriter,
		renderer:   renderer,
		registry:   registry,
		aggregator: agg,
		opts:       opts,
		log:        log,
	}, nil
}

// Run iterates until a candidate passes or MaxIterations rewrites have been made.
// A failing final verdict is returned with a nil error.
func (l *Loop) Run(ctx context.Context, source *types.SourceDocument, job *types.JobPosting) (*Result, error) {
	var (
		candidate *types.Candidate
		verdict   evaluation.Verdict
		last      *string
		previous  *evaluation.Verdict
	)

	for i := 0; i < l.opts.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := l.log.With(zap.Int(logger.FieldIteration, i))

		ictx := IterationContext{
			Iteration:   i,
			Original:    source.Content,
			LastAttempt: last,
			Validation:  previous,
		}

		start := time.Now()
		next, err := l.rewriter.Rewrite(ctx, source, job, ictx)
		if err != nil {
			return nil, fmt.Errorf("failed to rewrite resume at iteration %d: %w", i, err)
		}
		if next == nil {
			return nil, fmt.Errorf("failed to rewrite resume at iteration %d: rewriter returned no candidate", i)
		}
		next.Iteration = i
		next.SourceChecksum = source.Checksum
		candidate = next
		log.Debug("rewrite complete", zap.Duration("elapsed", time.Since(start)), zap.Int("changes", len(next.Changes)))

		start = time.Now()
		rendered, err := l.renderer.RenderAndExtract(ctx, candidate)
		if err != nil {
			log.Warn("render failed", zap.Error(err))
			verdict = RenderFailure()
		} else {
			candidate = rendered
			log.Debug("render complete", zap.Duration("elapsed", time.Since(start)), zap.Int("pages", rendered.PageCount))
			verdict = l.aggregator.Run(ctx, l.registry, candidate, job, source, l.opts.Mode)
		}

		if l.opts.Observer != nil {
			if err := l.opts.Observer(ctx, i, candidate, verdict); err != nil {
				return nil, fmt.Errorf("observer failed at iteration %d: %w", i, err)
			}
		}

		log.Info("iteration complete", zap.Bool("passed", verdict.Passed()), zap.String("scores", verdict.Scores()))

		if verdict.Passed() {
			return &Result{Candidate: candidate, Verdict: verdict, Job: job, Iterations: i + 1, State: StatePassed}, nil
		}

		raw := candidate.Raw()
		last = &raw
		v := verdict
		previous = &v
	}

	return &Result{
		Candidate:  candidate,
		Verdict:    verdict,
		Job:        job,
		Iterations: l.opts.MaxIterations,
		State:      StateExhausted,
	}, nil
}

// RenderFailure is the verdict recorded when a candidate cannot be rendered.
func RenderFailure() evaluation.Verdict {
	return evaluation.NewVerdict(evaluation.Result{
		Name:        RenderEvaluatorName,
		Passed:      false,
		Score:       0,
		Threshold:   1.0,
		Issues:      []string{"Failed to render resume to PDF"},
		Suggestions: []string{"Check resume data structure"},
	})
}
