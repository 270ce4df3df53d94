package evaluation

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// fakeEvaluator is a configurable Evaluator for aggregator tests.
type fakeEvaluator struct {
	name      string
	priority  int
	threshold float64
	passed    bool
	score     float64
	err       error
	panicWith any
	delay     time.Duration
	calls     atomic.Int32
}

func (f *fakeEvaluator) Name() string       { return f.name }
func (f *fakeEvaluator) Priority() int      { return f.priority }
func (f *fakeEvaluator) Threshold() float64 { return f.threshold }

func (f *fakeEvaluator) Evaluate(ctx context.Context, _ *types.Candidate, _ *types.JobPosting, _ *types.SourceDocument) (Result, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{
		Name:      f.name,
		Passed:    f.passed,
		Score:     f.score,
		Threshold: f.threshold,
	}, nil
}

func pass(name string, priority int) *fakeEvaluator {
	return &fakeEvaluator{name: name, priority: priority, threshold: 0.5, passed: true, score: 0.9}
}

func fail(name string, priority int) *fakeEvaluator {
	return &fakeEvaluator{name: name, priority: priority, threshold: 0.5, passed: false, score: 0.1}
}

func testInputs() (*types.Candidate, *types.JobPosting, *types.SourceDocument) {
	return &types.Candidate{Content: types.Markup{HTML: "<h1>Jane</h1>"}, Text: "Jane"},
		&types.JobPosting{Title: "Engineer", Company: "Acme"},
		types.NewSourceDocument("Jane resume", "Jane", "Doe")
}
