// Package repository combines a flight data source with rate limiting and
// retries into one validated access point for flight collections.
package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/unklstewy/aero-scope/internal/logging"
	"github.com/unklstewy/aero-scope/pkg/errs"
	"github.com/unklstewy/aero-scope/pkg/flight"
	"github.com/unklstewy/aero-scope/pkg/opensky"
	"github.com/unklstewy/aero-scope/pkg/retry"
)

// FlightRepository fetches flight collections through an optional rate
// limiter and a retry policy. A nil limiter skips outbound throttling,
// which is how fixture-backed repositories are built.
type FlightRepository struct {
	source  flight.Source
	limiter *opensky.RateLimiter
	retry   retry.Config
	log     zerolog.Logger
}

// Option configures a FlightRepository.
type Option func(*FlightRepository)

// WithRateLimiter throttles outbound calls. Pass the limiter shared by
// every repository talking to the same upstream.
func WithRateLimiter(l *opensky.RateLimiter) Option {
	return func(r *FlightRepository) { r.limiter = l }
}

// WithRetryConfig overrides the default retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(r *FlightRepository) { r.retry = cfg }
}

// New builds a repository over the given source.
func New(source flight.Source, opts ...Option) *FlightRepository {
	r := &FlightRepository{
		source: source,
		retry:  retry.DefaultConfig(),
		log:    logging.Component("repository"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.retry.Retryable == nil {
		r.retry.Retryable = opensky.RetryableFetch
	}
	return r
}

// GetAllFlights fetches the full current flight collection.
func (r *FlightRepository) GetAllFlights(ctx context.Context) ([]flight.Record, error) {
	return r.fetch(ctx, func(ctx context.Context) ([]flight.Record, error) {
		return r.source.GetAllFlights(ctx)
	})
}

// GetFlightsByCountry fetches all flights and keeps those whose origin
// country matches exactly. Matching is case sensitive.
func (r *FlightRepository) GetFlightsByCountry(ctx context.Context, country string) ([]flight.Record, error) {
	all, err := r.GetAllFlights(ctx)
	if err != nil {
		return nil, err
	}
	return flight.FilterByCountry(all, country), nil
}

// GetFlightsInBounds fetches flights inside a geographic bounding box.
func (r *FlightRepository) GetFlightsInBounds(ctx context.Context, box flight.BoundingBox) ([]flight.Record, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	return r.fetch(ctx, func(ctx context.Context) ([]flight.Record, error) {
		return r.source.GetFlightsInBounds(ctx, box)
	})
}

// Close releases the underlying source.
func (r *FlightRepository) Close() error {
	return r.source.Close()
}

// fetch runs fn under the retry policy. The rate limiter runs inside the
// retried closure so every attempt, including retries after a failure,
// respects the upstream quota.
func (r *FlightRepository) fetch(ctx context.Context, fn func(ctx context.Context) ([]flight.Record, error)) ([]flight.Record, error) {
	records, err := retry.Do(ctx, r.retry, func(ctx context.Context) ([]flight.Record, error) {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		return fn(ctx)
	})
	if err != nil {
		err = errs.Wrap(err)
		r.log.Warn().Err(err).Str("kind", errs.Kind(err)).Msg("fetch failed")
		return nil, err
	}
	return records, nil
}
