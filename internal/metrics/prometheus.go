// Package metrics exposes Prometheus metrics for optimization runs.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/optimize"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Evaluator outcome label values.
const (
	OutcomePass  = "pass"
	OutcomeFail  = "fail"
	OutcomeError = "error"
)

// Manager owns the optimizer's collectors and the registry they live in.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	iterations       *prometheus.CounterVec
	loopOutcomes     *prometheus.CounterVec
	evaluatorResults *prometheus.CounterVec
	retries          prometheus.Counter

	evaluatorLatency *prometheus.HistogramVec
	renderLatency    prometheus.Histogram
	rewriteLatency   prometheus.Histogram
	renderFailures   prometheus.Counter
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry it uses a
// fresh registry so several managers can coexist.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "resume_optimizer",
		subsystem:        "loop",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.iterations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "iterations_total",
		Help:      "Optimization iterations by verdict",
	}, []string{"passed"})

	m.loopOutcomes = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Finished optimization runs by terminal state",
	}, []string{"state"})

	m.evaluatorResults = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluator_results_total",
		Help:      "Evaluator results by evaluator and outcome",
	}, []string{"evaluator", "outcome"})

	m.retries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "retries_total",
		Help:      "Retried external calls",
	})

	m.evaluatorLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluator_duration_seconds",
		Help:      "Evaluator latency",
		Buckets:   m.histogramBuckets,
	}, []string{"evaluator"})

	m.renderLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "render_duration_seconds",
		Help:      "Render and extract latency",
		Buckets:   m.histogramBuckets,
	})

	m.rewriteLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rewrite_duration_seconds",
		Help:      "Rewrite latency",
		Buckets:   m.histogramBuckets,
	})

	m.renderFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "render_failures_total",
		Help:      "Candidates that failed to render",
	})
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveEvaluator implements evaluation.Recorder.
func (m *Manager) ObserveEvaluator(name string, passed bool, errored bool, elapsed time.Duration) {
	outcome := OutcomeFail
	switch {
	case errored:
		outcome = OutcomeError
	case passed:
		outcome = OutcomePass
	}
	m.evaluatorResults.WithLabelValues(name, outcome).Inc()
	m.evaluatorLatency.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ObserveOutcome counts a finished loop run.
func (m *Manager) ObserveOutcome(state optimize.State) {
	m.loopOutcomes.WithLabelValues(string(state)).Inc()
}

// OnRetry matches retry.Policy.OnRetry.
func (m *Manager) OnRetry(int, time.Duration, error) {
	m.retries.Inc()
}

// Observer returns an optimize.Observer that counts iterations by verdict.
func (m *Manager) Observer() optimize.Observer {
	return func(_ context.Context, _ int, _ *types.Candidate, verdict evaluation.Verdict) error {
		m.iterations.WithLabelValues(strconv.FormatBool(verdict.Passed())).Inc()
		if _, ok := verdict.Get(optimize.RenderEvaluatorName); ok {
			m.renderFailures.Inc()
		}
		return nil
	}
}

// Rewriter wraps r so each call is timed.
func (m *Manager) Rewriter(r optimize.Rewriter) optimize.Rewriter {
	return &timedRewriter{next: r, hist: m.rewriteLatency}
}

// Renderer wraps r so each call is timed.
func (m *Manager) Renderer(r optimize.Renderer) optimize.Renderer {
	return &timedRenderer{next: r, hist: m.renderLatency}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WriteTextfile writes the current registry contents to path, for node_exporter's
// textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteTextfile, path, err)
	}
	return nil
}

type timedRewriter struct {
	next optimize.Rewriter
	hist prometheus.Histogram
}

func (t *timedRewriter) Rewrite(ctx context.Context, source *types.SourceDocument, job *types.JobPosting, ictx optimize.IterationContext) (*types.Candidate, error) {
	start := time.Now()
	defer func() { t.hist.Observe(time.Since(start).Seconds()) }()
	return t.next.Rewrite(ctx, source, job, ictx)
}

type timedRenderer struct {
	next optimize.Renderer
	hist prometheus.Histogram
}

func (t *timedRenderer) RenderAndExtract(ctx context.Context, candidate *types.Candidate) (*types.Candidate, error) {
	start := time.Now()
	defer func() { t.hist.Observe(time.Since(start).Seconds()) }()
	return t.next.RenderAndExtract(ctx, candidate)
}
