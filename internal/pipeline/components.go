package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/evaluators"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/optimize"
	"github.com/jonathan/resume-optimizer/internal/rendering"
	"github.com/jonathan/resume-optimizer/internal/rewriting"
)

// Components are the loop collaborators for one run.
type Components struct {
	Rewriter optimize.Rewriter
	Renderer optimize.Renderer
	Registry *evaluation.Registry
	Logger   *zap.Logger
}

// NewClient builds the Gemini client wrapped with retries and the
// client-side rate limit. m may be nil.
func NewClient(ctx context.Context, cfg *config.Config, log *zap.Logger, m *metrics.Manager) (llm.Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, &Error{Message: "GEMINI_API_KEY is not set"}
	}
	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.GeminiAPIKey, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	policy := cfg.RetryPolicy()
	policy.Logger = log
	if m != nil {
		policy.OnRetry = m.OnRetry
	}
	// Retries sit outside the limiter so every attempt waits its turn.
	return llm.WithRetry(llm.WithRateLimit(client, llm.NewLimiter(cfg.LLMRequestsPerMinute)), policy), nil
}

// NewComponents wires the renderer, rewriter and evaluator registry from cfg.
func NewComponents(cfg *config.Config, client llm.Client, noShame bool, log *zap.Logger) (*Components, error) {
	if log == nil {
		log = zap.NewNop()
	}

	renderer := rendering.NewService(
		rendering.WithTimeout(cfg.RenderTimeout),
		rendering.WithMaxPages(cfg.MaxPages),
		rendering.WithLogger(log.Named("render")),
	)

	rewriter := rewriting.NewOptimizer(client, renderer, rewriting.Options{
		NoShame:          noShame,
		Format:           cfg.ContentKind(),
		MaxPages:         cfg.MaxPages,
		MaxChars:         cfg.ResumeMaxChars,
		MaxWords:         cfg.ResumeMaxWords,
		MaxToolCalls:     cfg.LLMToolCallLimit,
		KeywordThreshold: cfg.KeywordThreshold,
		Logger:           log.Named("rewrite"),
	})

	registry, err := evaluators.Default(client, evaluators.Options{
		MaxPages:             cfg.MaxPages,
		KeywordThreshold:     cfg.KeywordThreshold,
		VectorThreshold:      cfg.VectorThreshold,
		ATSThreshold:         cfg.ATSThreshold,
		AIThreshold:          cfg.AIThreshold,
		HallucinationStrict:  cfg.HallucinationStrictThreshold,
		HallucinationLenient: cfg.HallucinationLenientThreshold,
		NoShame:              noShame,
		Logger:               log.Named("evaluate"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluators: %w", err)
	}

	return &Components{Rewriter: rewriter, Renderer: renderer, Registry: registry, Logger: log}, nil
}

// Loop builds an optimize.Loop from the components. When m is non-nil, rewrite,
// render and evaluator calls are timed.
func (c *Components) Loop(opts optimize.Options, m *metrics.Manager) (*optimize.Loop, error) {
	rewriter, renderer := c.Rewriter, c.Renderer
	aggOpts := []evaluation.AggregatorOption{evaluation.WithLogger(opts.Logger)}
	if m != nil {
		rewriter = m.Rewriter(rewriter)
		renderer = m.Renderer(renderer)
		aggOpts = append(aggOpts, evaluation.WithRecorder(m))
	}
	opts.Aggregator = evaluation.NewAggregator(aggOpts...)
	return optimize.NewLoop(rewriter, renderer, c.Registry, opts)
}
