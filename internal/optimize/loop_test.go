package optimize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/types"
)

func testInputs() (*types.SourceDocument, *types.JobPosting) {
	return types.NewSourceDocument("Ada Lovelace\nProgrammer", "Ada", "Lovelace"),
		&types.JobPosting{Title: "Engineer", Company: "Acme", Keywords: []string{"kubernetes"}}
}

func newTestLoop(t *testing.T, rw Rewriter, rd Renderer, max int, evals ...evaluation.Evaluator) *Loop {
	t.Helper()
	loop, err := NewLoop(rw, rd, evaluation.MustNewRegistry(evals...), Options{MaxIterations: max})
	require.NoError(t, err)
	return loop
}

func TestNewLoop_RejectsBadConfig(t *testing.T) {
	registry := evaluation.MustNewRegistry()

	_, err := NewLoop(&fakeRewriter{}, &fakeRenderer{}, registry, Options{MaxIterations: 0})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "max_iterations", cfgErr.Field)

	_, err = NewLoop(nil, &fakeRenderer{}, registry, Options{MaxIterations: 1})
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoop_FirstIterationPass(t *testing.T) {
	rw, rd := &fakeRewriter{}, &fakeRenderer{}
	loop := newTestLoop(t, rw, rd, 5, &scriptedEvaluator{name: "Keywords", passFrom: 0})
	source, job := testInputs()

	res, err := loop.Run(context.Background(), source, job)
	require.NoError(t, err)

	assert.Equal(t, StatePassed, res.State)
	assert.True(t, res.Passed())
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 1, rw.count())
	assert.Equal(t, 1, rd.calls)
	assert.Equal(t, source.Checksum, res.Candidate.SourceChecksum)
	assert.True(t, res.Candidate.Rendered())
	assert.Same(t, job, res.Job)

	assert.Nil(t, rw.calls[0].ictx.LastAttempt)
	assert.Nil(t, rw.calls[0].ictx.Validation)
	assert.Equal(t, source.Content, rw.calls[0].ictx.Original)
}

func TestLoop_PassesOnSecondIteration(t *testing.T) {
	rw, rd := &fakeRewriter{}, &fakeRenderer{}
	loop := newTestLoop(t, rw, rd, 3,
		&scriptedEvaluator{name: "DataValidator", passFrom: 0},
		&scriptedEvaluator{name: "KeywordMatcher", priority: 10, passFrom: 1},
	)
	source, job := testInputs()

	res, err := loop.Run(context.Background(), source, job)
	require.NoError(t, err)

	assert.Equal(t, StatePassed, res.State)
	assert.Equal(t, 2, rw.count())
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, 1, res.Candidate.Iteration)

	second := rw.calls[1].ictx
	require.NotNil(t, second.LastAttempt)
	assert.Equal(t, "<h1>Ada</h1><h2>v0</h2>", *second.LastAttempt)
	require.NotNil(t, second.Validation)
	assert.False(t, second.Validation.Passed())
	assert.Contains(t, second.FormatFeedback(), "[FAIL] KeywordMatcher")
	assert.Contains(t, second.FormatFeedback(), "missing keywords: kubernetes")
}

func TestLoop_ExhaustsBudget(t *testing.T) {
	rw, rd := &fakeRewriter{}, &fakeRenderer{}
	loop := newTestLoop(t, rw, rd, 2, &scriptedEvaluator{name: "KeywordMatcher", passFrom: -1})
	source, job := testInputs()

	res, err := loop.Run(context.Background(), source, job)
	require.NoError(t, err)

	assert.Equal(t, StateExhausted, res.State)
	assert.False(t, res.Verdict.Passed())
	assert.Equal(t, 2, rw.count())
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, 1, res.Candidate.Iteration)
}

func TestLoop_RenderFailureSkipsEvaluators(t *testing.T) {
	rw := &fakeRewriter{}
	rd := &fakeRenderer{failAt: map[int]bool{0: true}}
	eval := &scriptedEvaluator{name: "KeywordMatcher", passFrom: 0}
	loop := newTestLoop(t, rw, rd, 3, eval)
	source, job := testInputs()

	var verdicts []evaluation.Verdict
	loop.opts.Observer = func(_ context.Context, _ int, _ *types.Candidate, v evaluation.Verdict) error {
		verdicts = append(verdicts, v)
		return nil
	}

	res, err := loop.Run(context.Background(), source, job)
	require.NoError(t, err)

	require.Len(t, verdicts, 2)
	require.Len(t, verdicts[0].Results, 1)
	failure := verdicts[0].Results[0]
	assert.Equal(t, RenderEvaluatorName, failure.Name)
	assert.False(t, failure.Passed)
	assert.Equal(t, 0.0, failure.Score)
	assert.Equal(t, 1.0, failure.Threshold)
	assert.Equal(t, []string{"Failed to render resume to PDF"}, failure.Issues)
	assert.Equal(t, []string{"Check resume data structure"}, failure.Suggestions)

	assert.Equal(t, 1, eval.callCount(), "evaluators run only for the rendered candidate")
	assert.Equal(t, StatePassed, res.State)
	assert.Equal(t, 2, rw.count())
}

func TestLoop_RewriteErrorIsFatal(t *testing.T) {
	boom := errors.New("model unavailable")
	rw := &fakeRewriter{err: boom, errAt: 1}
	loop := newTestLoop(t, rw, &fakeRenderer{}, 3, &scriptedEvaluator{name: "KeywordMatcher", passFrom: -1})
	source, job := testInputs()

	res, err := loop.Run(context.Background(), source, job)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to rewrite resume at iteration 1")
}

func TestLoop_ObserverErrorStops(t *testing.T) {
	rw := &fakeRewriter{}
	loop := newTestLoop(t, rw, &fakeRenderer{}, 3, &scriptedEvaluator{name: "KeywordMatcher", passFrom: -1})
	stop := errors.New("client went away")
	loop.opts.Observer = func(context.Context, int, *types.Candidate, evaluation.Verdict) error { return stop }
	source, job := testInputs()

	_, err := loop.Run(context.Background(), source, job)
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, rw.count())
}

func TestLoop_ObserverSeesEveryIterationInOrder(t *testing.T) {
	loop := newTestLoop(t, &fakeRewriter{}, &fakeRenderer{}, 3, &scriptedEvaluator{name: "KeywordMatcher", passFrom: 2})
	var seen []int
	loop.opts.Observer = func(_ context.Context, i int, c *types.Candidate, _ evaluation.Verdict) error {
		assert.Equal(t, i, c.Iteration)
		seen = append(seen, i)
		return nil
	}
	source, job := testInputs()

	res, err := loop.Run(context.Background(), source, job)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.Equal(t, StatePassed, res.State)
}

func TestLoop_CancelledContext(t *testing.T) {
	rw := &fakeRewriter{}
	loop := newTestLoop(t, rw, &fakeRenderer{}, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source, job := testInputs()

	_, err := loop.Run(ctx, source, job)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, rw.count())
}

func TestLoop_SequentialModeStopsAtFirstFailure(t *testing.T) {
	keyword := &scriptedEvaluator{name: "KeywordMatcher", priority: 10, passFrom: -1}
	final := &scriptedEvaluator{name: "HallucinationChecker", priority: evaluation.FinalCheckPriority, passFrom: 0}
	loop, err := NewLoop(&fakeRewriter{}, &fakeRenderer{}, evaluation.MustNewRegistry(final, keyword),
		Options{MaxIterations: 1, Mode: evaluation.ModeSequential})
	require.NoError(t, err)
	source, job := testInputs()

	res, err := loop.Run(context.Background(), source, job)
	require.NoError(t, err)
	assert.Equal(t, 0, final.callCount())
	require.Len(t, res.Verdict.Results, 1)
	assert.Equal(t, "KeywordMatcher", res.Verdict.Results[0].Name)
}

func TestIterationContext_FormatFeedback(t *testing.T) {
	assert.Empty(t, IterationContext{}.FormatFeedback())
	assert.False(t, IterationContext{}.Refinement())

	raw := "<h1>x</h1>"
	v := evaluation.NewVerdict(evaluation.Result{Name: "AIGeneratedChecker", Score: 0.3, Threshold: 0.5, Issues: []string{"AI giveaway: uniform bullets"}})
	ictx := IterationContext{Iteration: 1, LastAttempt: &raw, Validation: &v}
	assert.True(t, ictx.Refinement())
	assert.Equal(t, v.Format(), ictx.FormatFeedback())
}
