// Package tracker is the top-level refresh use case. It consults the cache
// first, falls back to the repository, writes fresh data back with a TTL,
// recomputes statistics, and exposes the result plus loading and error
// signals to consumers.
//
// A failed refresh never clears previously loaded data. The last good
// collection and its statistics stay visible while the error is surfaced
// alongside them.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/unklstewy/aero-scope/internal/cache"
	"github.com/unklstewy/aero-scope/internal/logging"
	"github.com/unklstewy/aero-scope/internal/stats"
	"github.com/unklstewy/aero-scope/pkg/errs"
	"github.com/unklstewy/aero-scope/pkg/flight"
)

// FlightDataKey is the cache key for the current flight collection.
const FlightDataKey = "flight-data"

// DefaultCacheTTL is how long a refreshed collection stays valid.
const DefaultCacheTTL = 5 * time.Minute

// DefaultRefreshInterval is the period of the optional background refresh.
const DefaultRefreshInterval = 5 * time.Minute

// Repository is the slice of the flight repository the tracker needs.
type Repository interface {
	GetAllFlights(ctx context.Context) ([]flight.Record, error)
}

// Update is pushed to subscribers after every refresh attempt.
type Update struct {
	Flights    []flight.Record
	Statistics *stats.Statistics
	Err        error
	LastUpdate time.Time
}

// Service orchestrates refresh cycles and holds the current snapshot.
type Service struct {
	repo  Repository
	store *cache.Store
	calc  *stats.Calculator
	log   zerolog.Logger

	cacheTTL        time.Duration
	refreshInterval time.Duration

	mu         sync.RWMutex
	flights    []flight.Record
	statistics *stats.Statistics
	loading    bool
	err        error
	lastUpdate time.Time
	subs       []chan Update

	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL overrides the write-back TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.cacheTTL = ttl }
}

// WithRefreshInterval overrides the background refresh period.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) { s.refreshInterval = d }
}

// New builds a tracker service. A nil store disables caching; every
// refresh then goes straight to the repository.
func New(repo Repository, store *cache.Store, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		store:           store,
		calc:            stats.NewCalculator(),
		log:             logging.Component("tracker"),
		cacheTTL:        DefaultCacheTTL,
		refreshInterval: DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh runs one refresh cycle. Unless force is set, a valid cached
// collection short-circuits the repository call. On success the fresh
// collection is written back to the cache and statistics are recomputed.
// On failure the previous flights and statistics are kept and the
// classified error is recorded and returned.
func (s *Service) Refresh(ctx context.Context, force bool) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if !force && s.store != nil {
		var cached []flight.Record
		if s.store.Get(FlightDataKey, &cached) {
			s.log.Debug().Int("flights", len(cached)).Msg("serving cached flight data")
			s.commit(cached)
			return nil
		}
	}

	flights, err := s.repo.GetAllFlights(ctx)
	if err != nil {
		err = errs.Wrap(err)
		s.log.Warn().Err(err).Str("kind", errs.Kind(err)).Bool("force", force).Msg("refresh failed")
		s.fail(err)
		return err
	}

	if s.store != nil {
		s.store.Set(FlightDataKey, flights, s.cacheTTL)
	}
	s.log.Info().Int("flights", len(flights)).Bool("force", force).Msg("refresh complete")
	s.commit(flights)
	return nil
}

// commit installs a new collection and derived statistics, clearing any
// previous error.
func (s *Service) commit(flights []flight.Record) {
	st := s.calc.Calculate(flights)

	s.mu.Lock()
	s.flights = flights
	s.statistics = &st
	s.err = nil
	s.lastUpdate = time.Now()
	update := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(update)
}

// fail records the error without touching the last good data.
func (s *Service) fail(err error) {
	s.mu.Lock()
	s.err = err
	update := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(update)
}

func (s *Service) snapshotLocked() Update {
	return Update{
		Flights:    s.flights,
		Statistics: s.statistics,
		Err:        s.err,
		LastUpdate: s.lastUpdate,
	}
}

func (s *Service) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Flights returns the current collection.
func (s *Service) Flights() []flight.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flights
}

// Statistics returns the current snapshot, or nil before the first
// successful refresh.
func (s *Service) Statistics() *stats.Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statistics
}

// FlightByID looks up one flight by transponder address.
func (s *Service) FlightByID(icao24 string) (flight.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := flight.FindByICAO(s.flights, icao24); ok {
		return rec, nil
	}
	return flight.Record{}, &errs.NotFoundError{Resource: "flight", Identifier: icao24}
}

// FlightsByCountry filters the current collection by exact origin country.
func (s *Service) FlightsByCountry(country string) []flight.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return flight.FilterByCountry(s.flights, country)
}

// Loading reports whether a refresh is in flight.
func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the error from the last refresh attempt, nil after success.
func (s *Service) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// LastUpdate returns when the current collection was installed.
func (s *Service) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// Subscribe returns a channel receiving an Update after every refresh
// attempt. Slow consumers drop updates rather than block refreshes.
// Callers must pass the channel to Unsubscribe when they stop reading.
func (s *Service) Subscribe() <-chan Update {
	ch := make(chan Update, 8)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Unsubscribe detaches a channel obtained from Subscribe. Updates already
// buffered stay readable; no further sends happen. The channel is left
// open so a racing notify cannot send on a closed channel.
func (s *Service) Unsubscribe(ch <-chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *Service) notify(u Update) {
	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// Start launches the periodic background refresh. Each tick runs a
// non-forced refresh, so it still benefits from a cache another refresher
// recently filled.
func (s *Service) Start(ctx context.Context) {
	if s.done != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.refreshInterval)
		defer ticker.Stop()

		s.log.Info().Dur("interval", s.refreshInterval).Msg("auto refresh started")
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx, false); err != nil {
					s.log.Warn().Err(err).Msg("auto refresh failed")
				}
			}
		}
	}()
}

// Stop halts the background refresh and waits for it to exit.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}
