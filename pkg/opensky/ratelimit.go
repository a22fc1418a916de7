package opensky

import (
	"context"
	"sync"
	"time"
)

// Rate limit parameters for the OpenSky API. The quota is enforced per
// upstream, not per client, so every limiter talking to the same API must
// share one LimiterState.
const (
	// minRequestGap is the smallest allowed spacing between two requests
	minRequestGap = time.Second

	// maxRequestsPerMinute caps requests in a rolling one-minute window
	maxRequestsPerMinute = 10
)

// Clock abstracts wall time so tests can drive the limiter deterministically.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SystemClock returns the real-time clock.
func SystemClock() Clock { return systemClock{} }

// LimiterState holds the shared request counters for one upstream API.
// Every repository instance that talks to the same upstream must be handed
// the same state so the global quota stays visible across all of them.
type LimiterState struct {
	mu          sync.Mutex
	lastRequest time.Time
	count       int
}

// NewLimiterState creates an empty shared counter state.
func NewLimiterState() *LimiterState { return &LimiterState{} }

// RateLimiter enforces the OpenSky request quota: a minimum gap between
// requests plus a per-minute ceiling. This is a leaky-bucket approximation,
// not a precise sliding window; the upstream's own limit is coarse enough
// that the approximation holds.
type RateLimiter struct {
	state *LimiterState
	clock Clock
}

// NewRateLimiter creates a limiter over the given shared state.
func NewRateLimiter(state *LimiterState) *RateLimiter {
	return &RateLimiter{state: state, clock: systemClock{}}
}

// Wait blocks until the next request is allowed, then records it. The state
// mutex is held across the waits so concurrent callers serialize and the
// per-minute ceiling cannot be overshot.
func (l *RateLimiter) Wait(ctx context.Context) error {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()

	now := l.clock.Now()

	if l.state.lastRequest.IsZero() {
		l.state.lastRequest = now
		l.state.count = 1
		return nil
	}

	elapsed := now.Sub(l.state.lastRequest)

	// Counter resets once a full minute has passed without requests.
	if elapsed > time.Minute {
		l.state.count = 0
	}

	// At the ceiling: wait out the remainder of the minute, then measure
	// the gap from the slept-to time so the wait counts toward it.
	if l.state.count >= maxRequestsPerMinute {
		if wait := time.Minute - elapsed; wait > 0 {
			if err := l.clock.Sleep(ctx, wait); err != nil {
				return err
			}
		}
		l.state.count = 0
		elapsed = l.clock.Now().Sub(l.state.lastRequest)
	}

	// Independent of the counter, keep the minimum gap.
	if elapsed < minRequestGap {
		if err := l.clock.Sleep(ctx, minRequestGap-elapsed); err != nil {
			return err
		}
	}

	l.state.lastRequest = l.clock.Now()
	l.state.count++
	return nil
}
