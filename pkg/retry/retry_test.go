package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unklstewy/aero-scope/pkg/errs"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

// TestDoSuccess tests that a succeeding operation runs exactly once.
func TestDoSuccess(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

// TestDoRetriesThenSucceeds tests recovery on a later attempt.
func TestDoRetriesThenSucceeds(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if got != "ok" {
		t.Errorf("Expected ok, got %s", got)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

// TestDoExhaustsAttempts tests that the last error propagates after the
// final attempt.
func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	lastErr := errors.New("still broken")
	_, err := Do(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 0, lastErr
	})
	if !errors.Is(err, lastErr) {
		t.Fatalf("Expected last error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

// TestDoNonRetryable tests that a rejected failure is attempted exactly once.
func TestDoNonRetryable(t *testing.T) {
	cfg := fastConfig()
	cfg.Retryable = func(err error) bool { return false }

	calls := 0
	failure := &errs.ValidationError{Message: "bad input"}
	_, err := Do(context.Background(), cfg, func(ctx context.Context) (int, error) {
		calls++
		return 0, failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", calls)
	}
}

// TestDoRetryAfterHint tests that a rate-limit hint replaces the backoff.
func TestDoRetryAfterHint(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 2
	cfg.BaseDelay = time.Hour // would hang if the hint were ignored

	calls := 0
	start := time.Now()
	_, err := Do(context.Background(), cfg, func(ctx context.Context) (int, error) {
		calls++
		return 0, &errs.RateLimitError{StatusCode: 429, RetryAfter: time.Millisecond}
	})
	if calls != 2 {
		t.Fatalf("Expected 2 attempts, got %d", calls)
	}
	if !errs.Is[*errs.RateLimitError](err) {
		t.Fatalf("Expected rate limit error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected hint-sized delay, waited %v", elapsed)
	}
}

// TestDoCancellation tests that a cancelled context stops the backoff wait.
func TestDoCancellation(t *testing.T) {
	cfg := fastConfig()
	cfg.BaseDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, cfg, func(ctx context.Context) (int, error) {
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

// TestBackoff tests the exponential schedule and its cap.
func TestBackoff(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, MaxDelay: 10 * time.Second, Multiplier: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second}, // capped
		{6, 10 * time.Second},
	}
	for _, tc := range tests {
		if got := backoff(cfg, tc.attempt); got != tc.want {
			t.Errorf("Attempt %d: expected %v, got %v", tc.attempt, tc.want, got)
		}
	}
}
