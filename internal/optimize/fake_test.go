package optimize

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/types"
)

type rewriteCall struct {
	ictx IterationContext
}

type fakeRewriter struct {
	mu    sync.Mutex
	calls []rewriteCall
	err   error
	errAt int
}

func (f *fakeRewriter) Rewrite(_ context.Context, _ *types.SourceDocument, _ *types.JobPosting, ictx IterationContext) (*types.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rewriteCall{ictx: ictx})
	if f.err != nil && ictx.Iteration == f.errAt {
		return nil, f.err
	}
	return &types.Candidate{
		Content: types.Markup{HTML: fmt.Sprintf("<h1>Ada</h1><h2>v%d</h2>", ictx.Iteration)},
		Changes: []string{fmt.Sprintf("change %d", ictx.Iteration)},
	}, nil
}

func (f *fakeRewriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRenderer struct {
	mu     sync.Mutex
	calls  int
	failAt map[int]bool
}

var errRender = errors.New("chrome crashed")

func (f *fakeRenderer) RenderAndExtract(_ context.Context, c *types.Candidate) (*types.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAt[c.Iteration] {
		return nil, errRender
	}
	return c.WithRender(fmt.Sprintf("text %d", c.Iteration), []byte("%PDF-1.4"), 1, nil), nil
}

// scriptedEvaluator passes from iteration passFrom onwards. A negative passFrom never passes.
type scriptedEvaluator struct {
	name     string
	priority int
	passFrom int

	mu    sync.Mutex
	calls int
}

func (e *scriptedEvaluator) Name() string       { return e.name }
func (e *scriptedEvaluator) Priority() int      { return e.priority }
func (e *scriptedEvaluator) Threshold() float64 { return 0.5 }

func (e *scriptedEvaluator) Evaluate(_ context.Context, c *types.Candidate, _ *types.JobPosting, _ *types.SourceDocument) (evaluation.Result, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	passed := e.passFrom >= 0 && c.Iteration >= e.passFrom
	score := 0.1
	var issues []string
	if passed {
		score = 0.9
	} else {
		issues = []string{"missing keywords: kubernetes"}
	}
	return evaluation.Result{Name: e.name, Passed: passed, Score: score, Threshold: 0.5, Issues: issues}, nil
}

func (e *scriptedEvaluator) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
