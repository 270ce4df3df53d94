package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/resume-optimizer/internal/retry"
)

// WithRetry wraps client so every call is retried on rate limits and transient
// server errors according to policy.
func WithRetry(client Client, policy retry.Policy) Client {
	return &retryClient{Client: client, policy: policy}
}

type retryClient struct {
	Client
	policy retry.Policy
}

func (c *retryClient) Generate(ctx context.Context, req Request) (string, error) {
	return retry.Do(ctx, c.policy, func(ctx context.Context) (string, error) {
		return c.Client.Generate(ctx, req)
	})
}

func (c *retryClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return retry.Do(ctx, c.policy, func(ctx context.Context) (string, error) {
		return c.Client.GenerateContent(ctx, prompt, tier)
	})
}

func (c *retryClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return retry.Do(ctx, c.policy, func(ctx context.Context) (string, error) {
		return c.Client.GenerateJSON(ctx, prompt, tier)
	})
}

func (c *retryClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return retry.Do(ctx, c.policy, func(ctx context.Context) ([][]float32, error) {
		return c.Client.Embed(ctx, texts)
	})
}

// NewLimiter returns a limiter allowing perMinute model round-trips per minute
// with no burst. A non-positive value disables limiting.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// WithRateLimit wraps client so each call first waits on limiter. Tool-calling
// requests also wait before every follow-up turn of the conversation.
func WithRateLimit(client Client, limiter *rate.Limiter) Client {
	return &limitedClient{Client: client, limiter: limiter}
}

type limitedClient struct {
	Client
	limiter *rate.Limiter
}

func (c *limitedClient) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func (c *limitedClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	if len(req.Tools) > 0 {
		req.Pace = c.pace(req.Pace)
	}
	return c.Client.Generate(ctx, req)
}

// pace chains the limiter after any pace hook already on the request.
func (c *limitedClient) pace(next func(context.Context) error) func(context.Context) error {
	if next == nil {
		return c.wait
	}
	return func(ctx context.Context) error {
		if err := next(ctx); err != nil {
			return err
		}
		return c.wait(ctx)
	}
}

func (c *limitedClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	return c.Client.GenerateContent(ctx, prompt, tier)
}

func (c *limitedClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	return c.Client.GenerateJSON(ctx, prompt, tier)
}

func (c *limitedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.Embed(ctx, texts)
}
