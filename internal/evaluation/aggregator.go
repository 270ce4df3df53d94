package evaluation

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// Mode selects how the aggregator schedules evaluators.
type Mode string

const (
	// ModeParallel runs every evaluator concurrently.
	ModeParallel Mode = "parallel"
	// ModeSequential runs evaluators by ascending priority and stops on the first
	// non-final failure.
	ModeSequential Mode = "sequential"
)

// Recorder receives per-evaluator timings. metrics.Manager implements it.
type Recorder interface {
	ObserveEvaluator(name string, passed bool, errored bool, elapsed time.Duration)
}

// Aggregator runs a registry of evaluators against one candidate.
type Aggregator struct {
	logger   *zap.Logger
	recorder Recorder
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the aggregator's logger.
func WithLogger(logger *zap.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRecorder sets a timing recorder.
func WithRecorder(recorder Recorder) AggregatorOption {
	return func(a *Aggregator) {
		a.recorder = recorder
	}
}

// NewAggregator creates an Aggregator.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run evaluates the candidate with every evaluator in the registry and returns the
// verdict. Evaluator errors never escape: they become failing results.
func (a *Aggregator) Run(ctx context.Context, registry *Registry, candidate *types.Candidate, job *types.JobPosting, source *types.SourceDocument, mode Mode) Verdict {
	if mode == ModeSequential {
		return a.runSequential(ctx, registry, candidate, job, source)
	}
	return a.runParallel(ctx, registry, candidate, job, source)
}

func (a *Aggregator) runParallel(ctx context.Context, registry *Registry, candidate *types.Candidate, job *types.JobPosting, source *types.SourceDocument) Verdict {
	evaluators := registry.All()
	outcomes := make([]Outcome, len(evaluators))

	start := time.Now()
	// A plain group: one evaluator failing must not cancel the others.
	var g errgroup.Group
	for i, e := range evaluators {
		g.Go(func() error {
			outcomes[i] = a.invoke(ctx, e, candidate, job, source)
			return nil
		})
	}
	_ = g.Wait()
	a.logger.Debug("all evaluators finished",
		zap.String("mode", string(ModeParallel)),
		zap.Duration("elapsed", time.Since(start)))

	results := make([]Result, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, o.Resolve())
	}
	return Verdict{Results: results}
}

func (a *Aggregator) runSequential(ctx context.Context, registry *Registry, candidate *types.Candidate, job *types.JobPosting, source *types.SourceDocument) Verdict {
	var results []Result
	failed := false

	for _, e := range registry.ByPriority() {
		if e.Priority() >= FinalCheckPriority && failed {
			a.logger.Debug("skipping final check after earlier failure", zap.String("evaluator", e.Name()))
			continue
		}

		result := a.invoke(ctx, e, candidate, job, source).Resolve()
		results = append(results, result)

		if !result.Passed {
			failed = true
			if e.Priority() < FinalCheckPriority {
				break
			}
		}
	}

	return Verdict{Results: results}
}

// invoke calls one evaluator, converting a panic into an error outcome.
func (a *Aggregator) invoke(ctx context.Context, e Evaluator, candidate *types.Candidate, job *types.JobPosting, source *types.SourceDocument) (outcome Outcome) {
	outcome.Evaluator = e
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = &PanicError{Evaluator: e.Name(), Value: r}
		}
		elapsed := time.Since(start)
		passed := outcome.Err == nil && outcome.Result.Passed
		if outcome.Err != nil {
			a.logger.Error("evaluator failed",
				zap.String("evaluator", e.Name()),
				zap.Error(outcome.Err))
		} else {
			a.logger.Debug("evaluator finished",
				zap.String("evaluator", e.Name()),
				zap.Bool("passed", passed),
				zap.Float64("score", outcome.Result.Score),
				zap.Duration("elapsed", elapsed))
		}
		if a.recorder != nil {
			a.recorder.ObserveEvaluator(e.Name(), passed, outcome.Err != nil, elapsed)
		}
	}()

	outcome.Result, outcome.Err = e.Evaluate(ctx, candidate, job, source)
	if outcome.Err == nil && outcome.Result.Name == "" {
		outcome.Result.Name = e.Name()
	}
	return outcome
}
