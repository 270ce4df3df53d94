// Package retry runs external calls with exponential backoff on rate limits and
// transient server errors.
package retry

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// DefaultMaxAttempts is the default number of calls before giving up.
	DefaultMaxAttempts = 5
	// DefaultMaxWait caps a single backoff sleep.
	DefaultMaxWait = 60 * time.Second
)

// RetryableStatusCodes are the HTTP statuses treated as transient.
var RetryableStatusCodes = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy configures Do.
type Policy struct {
	MaxAttempts int
	MaxWait     time.Duration
	// Sleep defaults to a context-aware timer. Tests replace it.
	Sleep  SleepFunc
	Logger *zap.Logger
	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultPolicy returns the default retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		MaxWait:     DefaultMaxWait,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.MaxWait <= 0 {
		p.MaxWait = DefaultMaxWait
	}
	if p.Sleep == nil {
		p.Sleep = sleep
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return p
}

// Do calls fn until it succeeds, returns a non-retryable error, or the attempt
// ceiling is reached. The error from the final attempt is returned unchanged.
func Do[T any](ctx context.Context, policy Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p := policy.normalized()

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) || attempt >= p.MaxAttempts {
			return zero, err
		}

		wait := Backoff(attempt, p.MaxWait)
		p.Logger.Warn("retrying after transient error",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.MaxAttempts),
			zap.Duration("wait", wait),
			zap.Error(err))
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, err)
		}

		if sleepErr := p.Sleep(ctx, wait); sleepErr != nil {
			return zero, err
		}
	}
}

// Backoff returns the wait before the next call after the given 1-based attempt:
// 1s, 2s, 4s, ... capped at maxWait.
func Backoff(attempt int, maxWait time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	seconds := math.Pow(2, float64(attempt-1))
	if seconds >= maxWait.Seconds() {
		return maxWait
	}
	return time.Duration(seconds * float64(time.Second))
}

// IsRetryable reports whether err represents a rate limit or transient server error.
func IsRetryable(err error) bool {
	code, ok := StatusCode(err)
	return ok && RetryableStatusCodes[code]
}

// StatusCode extracts an HTTP status code from err when one is available.
func StatusCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}

	var coder StatusCoder
	if errors.As(err, &coder) {
		return coder.StatusCode(), true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}

	if s, ok := status.FromError(err); ok && s.Code() != codes.OK && s.Code() != codes.Unknown {
		return grpcToHTTP(s.Code())
	}

	return 0, false
}

func grpcToHTTP(code codes.Code) (int, bool) {
	switch code {
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests, true
	case codes.Internal:
		return http.StatusInternalServerError, true
	case codes.Unavailable:
		return http.StatusServiceUnavailable, true
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout, true
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest, true
	case codes.PermissionDenied:
		return http.StatusForbidden, true
	case codes.Unauthenticated:
		return http.StatusUnauthorized, true
	case codes.NotFound:
		return http.StatusNotFound, true
	default:
		return 0, false
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
