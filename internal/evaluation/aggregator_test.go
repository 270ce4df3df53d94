package evaluation

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/resume-optimizer/internal/types"
)

func TestAggregator_ParallelConvertsErrors(t *testing.T) {
	broken := &fakeEvaluator{name: "Broken", priority: 5, threshold: 0.7, err: errors.New("model unavailable")}
	r := MustNewRegistry(pass("A", 0), broken, pass("C", 10))
	candidate, job, source := testInputs()

	v := NewAggregator().Run(context.Background(), r, candidate, job, source, ModeParallel)

	require.Len(t, v.Results, 3, "one result per registered evaluator")
	assert.False(t, v.Passed())

	got := v.Results[1]
	assert.Equal(t, "Broken", got.Name)
	assert.False(t, got.Passed)
	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, 0.7, got.Threshold)
	require.NotEmpty(t, got.Issues)
	assert.Equal(t, "Filter error: model unavailable", got.Issues[0])
	assert.Equal(t, []string{"Check filter implementation"}, got.Suggestions)
}

func TestAggregator_ParallelRecoversPanics(t *testing.T) {
	exploding := &fakeEvaluator{name: "Exploding", threshold: 0.5, panicWith: "nil map"}
	r := MustNewRegistry(exploding, pass("B", 0))
	candidate, job, source := testInputs()

	v := NewAggregator().Run(context.Background(), r, candidate, job, source, ModeParallel)

	require.Len(t, v.Results, 2)
	assert.False(t, v.Results[0].Passed)
	assert.Contains(t, v.Results[0].Issues[0], "panicked: nil map")
	assert.True(t, v.Results[1].Passed)
}

func TestAggregator_ParallelOrderIsRegistrationOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	candidate, job, source := testInputs()

	for round := 0; round < 5; round++ {
		var evaluators []Evaluator
		var expected []string
		for i := 0; i < 6; i++ {
			e := pass(string(rune('A'+i)), rng.Intn(200))
			e.delay = time.Duration(rng.Intn(20)) * time.Millisecond
			evaluators = append(evaluators, e)
			expected = append(expected, e.name)
		}

		v := NewAggregator().Run(context.Background(), MustNewRegistry(evaluators...), candidate, job, source, ModeParallel)

		var got []string
		for _, res := range v.Results {
			got = append(got, res.Name)
		}
		assert.Equal(t, expected, got, "round %d", round)
	}
}

func TestAggregator_ParallelRunsConcurrently(t *testing.T) {
	var evaluators []Evaluator
	for i := 0; i < 4; i++ {
		e := pass(string(rune('A'+i)), 0)
		e.delay = 100 * time.Millisecond
		evaluators = append(evaluators, e)
	}
	candidate, job, source := testInputs()

	start := time.Now()
	v := NewAggregator().Run(context.Background(), MustNewRegistry(evaluators...), candidate, job, source, ModeParallel)
	elapsed := time.Since(start)

	assert.True(t, v.Passed())
	assert.Less(t, elapsed, 350*time.Millisecond, "latency should track the slowest evaluator, not the sum")
}

func TestAggregator_Sequential(t *testing.T) {
	tests := []struct {
		name          string
		evaluators    func() []*fakeEvaluator
		expectedNames []string
		expectedCalls map[string]int32
		passed        bool
	}{
		{
			name: "all pass runs everything in priority order",
			evaluators: func() []*fakeEvaluator {
				return []*fakeEvaluator{pass("Final", 100), pass("Cheap", 0), pass("Mid", 10)}
			},
			expectedNames: []string{"Cheap", "Mid", "Final"},
			expectedCalls: map[string]int32{"Cheap": 1, "Mid": 1, "Final": 1},
			passed:        true,
		},
		{
			name: "non-final failure stops the pass",
			evaluators: func() []*fakeEvaluator {
				return []*fakeEvaluator{pass("Cheap", 0), fail("Mid", 10), pass("Late", 20), pass("Final", 100)}
			},
			expectedNames: []string{"Cheap", "Mid"},
			expectedCalls: map[string]int32{"Cheap": 1, "Mid": 1, "Late": 0, "Final": 0},
			passed:        false,
		},
		{
			name: "failing final check does not stop but later finals are skipped",
			evaluators: func() []*fakeEvaluator {
				return []*fakeEvaluator{pass("Cheap", 0), fail("FinalA", 100), pass("FinalB", 110)}
			},
			expectedNames: []string{"Cheap", "FinalA"},
			expectedCalls: map[string]int32{"Cheap": 1, "FinalA": 1, "FinalB": 0},
			passed:        false,
		},
		{
			name: "errors count as failures",
			evaluators: func() []*fakeEvaluator {
				return []*fakeEvaluator{
					{name: "Broken", priority: 0, threshold: 1, err: errors.New("boom")},
					pass("Final", 100),
				}
			},
			expectedNames: []string{"Broken"},
			expectedCalls: map[string]int32{"Broken": 1, "Final": 0},
			passed:        false,
		},
	}

	candidate, job, source := testInputs()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakes := tt.evaluators()
			evaluators := make([]Evaluator, 0, len(fakes))
			for _, f := range fakes {
				evaluators = append(evaluators, f)
			}

			v := NewAggregator().Run(context.Background(), MustNewRegistry(evaluators...), candidate, job, source, ModeSequential)

			var names []string
			for _, r := range v.Results {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
			assert.Equal(t, tt.passed, v.Passed())
			for _, f := range fakes {
				assert.Equal(t, tt.expectedCalls[f.name], f.calls.Load(), "calls to %s", f.name)
			}
		})
	}
}

func TestAggregator_SequentialNeverRunsFinalAfterFailure(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	candidate, job, source := testInputs()

	for round := 0; round < 50; round++ {
		var fakes []*fakeEvaluator
		var evaluators []Evaluator
		for i := 0; i < 5; i++ {
			f := pass(string(rune('A'+i)), rng.Intn(150))
			f.passed = rng.Intn(3) > 0
			fakes = append(fakes, f)
			evaluators = append(evaluators, f)
		}

		v := NewAggregator().Run(context.Background(), MustNewRegistry(evaluators...), candidate, job, source, ModeSequential)

		failedSoFar := false
		for _, r := range v.Results {
			var priority int
			for _, f := range fakes {
				if f.name == r.Name {
					priority = f.priority
				}
			}
			if priority >= FinalCheckPriority {
				assert.False(t, failedSoFar, "final check %s ran after a failure", r.Name)
			}
			failedSoFar = failedSoFar || !r.Passed
		}
	}
}

type recordingRecorder struct {
	mu    sync.Mutex
	names []string
	errs  int
}

func (r *recordingRecorder) ObserveEvaluator(name string, _ bool, errored bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	if errored {
		r.errs++
	}
}

func TestAggregator_RecorderAndLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &recordingRecorder{}
	agg := NewAggregator(WithLogger(zap.New(core)), WithRecorder(rec))

	broken := &fakeEvaluator{name: "Broken", err: errors.New("boom")}
	candidate, job, source := testInputs()
	agg.Run(context.Background(), MustNewRegistry(pass("A", 0), broken), candidate, job, source, ModeParallel)

	assert.ElementsMatch(t, []string{"A", "Broken"}, rec.names)
	assert.Equal(t, 1, rec.errs)
	assert.Equal(t, 1, logs.FilterMessage("evaluator failed").Len())
}

func TestAggregator_FillsMissingResultName(t *testing.T) {
	candidate, job, source := testInputs()
	anon := &namelessEvaluator{}
	v := NewAggregator().Run(context.Background(), MustNewRegistry(anon), candidate, job, source, ModeParallel)
	require.Len(t, v.Results, 1)
	assert.Equal(t, "Nameless", v.Results[0].Name)
}

type namelessEvaluator struct{}

func (namelessEvaluator) Name() string       { return "Nameless" }
func (namelessEvaluator) Priority() int      { return 0 }
func (namelessEvaluator) Threshold() float64 { return 0 }
func (namelessEvaluator) Evaluate(context.Context, *types.Candidate, *types.JobPosting, *types.SourceDocument) (Result, error) {
	return Result{Passed: true, Score: 1}, nil
}
