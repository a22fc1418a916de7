// Package retry wraps fallible operations with bounded retries and
// exponential backoff.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/unklstewy/aero-scope/pkg/errs"
)

// Config controls retry behavior.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first
	// (default: 3)
	MaxAttempts int

	// BaseDelay is the wait before the first retry (default: 1 second)
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay (default: 10 seconds)
	MaxDelay time.Duration

	// Multiplier is the backoff growth factor (default: 2.0)
	Multiplier float64

	// Retryable decides whether a failure is worth another attempt.
	// A nil predicate retries everything.
	Retryable func(error) bool

	// RespectRetryAfter uses a rate-limit response's Retry-After hint in
	// place of the computed backoff when present (default: true)
	RespectRetryAfter bool
}

// DefaultConfig returns the standard retry settings: three attempts with
// delays of 1s and 2s between them.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		BaseDelay:         time.Second,
		MaxDelay:          10 * time.Second,
		Multiplier:        2.0,
		RespectRetryAfter: true,
	}
}

// Do executes fn up to cfg.MaxAttempts times, waiting between attempts with
// exponential backoff. A failure the Retryable predicate rejects propagates
// immediately; exhausting all attempts propagates the last error.
func Do[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := backoff(cfg, attempt)
		if cfg.RespectRetryAfter {
			if rle, ok := errs.AsRateLimit(err); ok && rle.RetryAfter > 0 {
				delay = rle.RetryAfter
			}
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}

// backoff computes min(BaseDelay * Multiplier^(attempt-1), MaxDelay).
func backoff(cfg Config, attempt int) time.Duration {
	d := time.Duration(float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt-1)))
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return d
}
