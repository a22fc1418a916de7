// Package fixture provides a static flight data source for development and
// testing. It implements the same flight.Source interface as the live
// OpenSky client, including a configurable artificial delay so loading-state
// behavior is exercised identically to the network path.
package fixture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/unklstewy/aero-scope/pkg/errs"
	"github.com/unklstewy/aero-scope/pkg/flight"
)

// Variant names a pre-built fixture collection.
type Variant string

const (
	VariantAll          Variant = "all"
	VariantEurope       Variant = "europe"
	VariantAsia         Variant = "asia"
	VariantBusy         Variant = "busy"
	VariantEmpty        Variant = "empty"
	VariantHighAltitude Variant = "high-altitude"
	VariantLowAltitude  Variant = "low-altitude"
	VariantMixed        Variant = "mixed"
)

// DefaultDelay simulates a typical network round trip.
const DefaultDelay = 500 * time.Millisecond

// ParseVariant validates a variant name from configuration.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case VariantAll, VariantEurope, VariantAsia, VariantBusy, VariantEmpty,
		VariantHighAltitude, VariantLowAltitude, VariantMixed:
		return v, nil
	default:
		return "", &errs.ValidationError{
			Field:   "mock_data_type",
			Message: fmt.Sprintf("unknown fixture variant %q", s),
		}
	}
}

// Source serves a named fixture collection. Mutation hooks affect only this
// instance's private copy, never the underlying static definitions.
type Source struct {
	mu      sync.Mutex
	flights []flight.Record
	delay   time.Duration
}

// New creates a fixture source for the given variant with the default
// artificial delay.
func New(variant Variant) *Source {
	return &Source{
		flights: flight.CloneAll(variantData(variant)),
		delay:   DefaultDelay,
	}
}

// SetDelay adjusts the artificial delay before each response. Zero disables
// it entirely.
func (s *Source) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// GetAllFlights returns a copy of the fixture collection after the
// configured delay.
func (s *Source) GetAllFlights(ctx context.Context) ([]flight.Record, error) {
	if err := s.simulateDelay(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return flight.CloneAll(s.flights), nil
}

// GetFlightsInBounds filters the fixture collection in memory, inclusive on
// all four bounds. Records without a position never match.
func (s *Source) GetFlightsInBounds(ctx context.Context, box flight.BoundingBox) ([]flight.Record, error) {
	if err := s.simulateDelay(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]flight.Record, 0)
	for _, r := range s.flights {
		if r.Position != nil && box.Contains(*r.Position) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Close implements flight.Source; the fixture source holds no resources.
func (s *Source) Close() error { return nil }

// SetFlights replaces the fixture collection.
func (s *Source) SetFlights(records []flight.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flights = flight.CloneAll(records)
}

// AddFlight appends one record to the fixture collection.
func (s *Source) AddFlight(rec flight.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flights = append(s.flights, rec.Clone())
}

// RemoveFlight deletes all records matching the given transponder address.
func (s *Source) RemoveFlight(icao24 string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.flights[:0]
	for _, r := range s.flights {
		if r.ICAO24 != icao24 {
			kept = append(kept, r)
		}
	}
	s.flights = kept
}

// ClearFlights empties the fixture collection.
func (s *Source) ClearFlights() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flights = nil
}

func (s *Source) simulateDelay(ctx context.Context) error {
	s.mu.Lock()
	delay := s.delay
	s.mu.Unlock()

	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
