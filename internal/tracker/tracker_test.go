package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unklstewy/aero-scope/internal/cache"
	"github.com/unklstewy/aero-scope/pkg/errs"
	"github.com/unklstewy/aero-scope/pkg/flight"
)

// scriptedRepo returns canned responses per call.
type scriptedRepo struct {
	calls   int
	respond func(call int) ([]flight.Record, error)
}

func (r *scriptedRepo) GetAllFlights(ctx context.Context) ([]flight.Record, error) {
	r.calls++
	return r.respond(r.calls)
}

func newStore(t *testing.T) *cache.Store {
	t.Helper()
	s, err := cache.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var sample = []flight.Record{
	{ICAO24: "a1", OriginCountry: "Ireland", Altitude: &flight.Measurement{Value: 30000, Unit: flight.UnitFeet}, Velocity: &flight.Measurement{Value: 800, Unit: flight.UnitKmH}},
	{ICAO24: "a2", OriginCountry: "France", Altitude: &flight.Measurement{Value: 20000, Unit: flight.UnitFeet}, Velocity: &flight.Measurement{Value: 700, Unit: flight.UnitKmH}},
}

// TestRefreshSuccess tests a refresh populating flights and statistics.
func TestRefreshSuccess(t *testing.T) {
	repo := &scriptedRepo{respond: func(int) ([]flight.Record, error) { return sample, nil }}
	svc := New(repo, newStore(t))

	if err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if len(svc.Flights()) != 2 {
		t.Errorf("Expected 2 flights, got %d", len(svc.Flights()))
	}
	st := svc.Statistics()
	if st == nil || st.TotalFlights != 2 {
		t.Errorf("Expected statistics for 2 flights, got %+v", st)
	}
	if svc.Err() != nil {
		t.Errorf("Expected no error, got %v", svc.Err())
	}
	if svc.LastUpdate().IsZero() {
		t.Error("Expected lastUpdate set")
	}
	if svc.Loading() {
		t.Error("Expected loading cleared after refresh")
	}
}

// TestRefreshServesCache tests that a second unforced refresh hits the
// cache instead of the repository.
func TestRefreshServesCache(t *testing.T) {
	repo := &scriptedRepo{respond: func(int) ([]flight.Record, error) { return sample, nil }}
	svc := New(repo, newStore(t))

	if err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if repo.calls != 1 {
		t.Errorf("Expected 1 repository call, got %d", repo.calls)
	}
	if len(svc.Flights()) != 2 {
		t.Errorf("Expected cached flights served, got %d", len(svc.Flights()))
	}
}

// TestRefreshForceBypassesCache tests that force skips the cache read but
// still writes back on success.
func TestRefreshForceBypassesCache(t *testing.T) {
	fresh := []flight.Record{{ICAO24: "b1", OriginCountry: "Spain"}}
	repo := &scriptedRepo{respond: func(call int) ([]flight.Record, error) {
		if call == 1 {
			return sample, nil
		}
		return fresh, nil
	}}
	store := newStore(t)
	svc := New(repo, store)

	if err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if err := svc.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if repo.calls != 2 {
		t.Errorf("Expected forced refresh to call the repository, got %d calls", repo.calls)
	}
	if len(svc.Flights()) != 1 || svc.Flights()[0].ICAO24 != "b1" {
		t.Errorf("Expected fresh collection installed, got %+v", svc.Flights())
	}

	// The forced result must now be in the cache.
	var cached []flight.Record
	if !store.Get(FlightDataKey, &cached) || len(cached) != 1 {
		t.Errorf("Expected forced result written back, got %+v", cached)
	}
}

// TestRefreshFailureKeepsLastGoodData tests stale-while-revalidate: a
// failed forced refresh keeps flights and statistics while recording the
// classified error.
func TestRefreshFailureKeepsLastGoodData(t *testing.T) {
	failure := &errs.NetworkError{StatusCode: 502, URL: "x"}
	repo := &scriptedRepo{respond: func(call int) ([]flight.Record, error) {
		if call == 2 {
			return nil, failure
		}
		return sample, nil
	}}
	svc := New(repo, newStore(t))

	if err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	statsBefore := svc.Statistics()

	err := svc.Refresh(context.Background(), true)
	if !errs.Is[*errs.NetworkError](err) {
		t.Fatalf("Expected NetworkError, got %v", err)
	}

	if len(svc.Flights()) != 2 {
		t.Errorf("Expected previous flights retained, got %d", len(svc.Flights()))
	}
	if svc.Statistics() != statsBefore {
		t.Error("Expected previous statistics retained")
	}
	if !errs.Is[*errs.NetworkError](svc.Err()) {
		t.Errorf("Expected error signal set, got %v", svc.Err())
	}

	// A later success clears the error again.
	if err := svc.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if svc.Err() != nil {
		t.Errorf("Expected error cleared after recovery, got %v", svc.Err())
	}
}

// TestRefreshWithoutCache tests operation with caching disabled.
func TestRefreshWithoutCache(t *testing.T) {
	repo := &scriptedRepo{respond: func(int) ([]flight.Record, error) { return sample, nil }}
	svc := New(repo, nil)

	if err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if repo.calls != 2 {
		t.Errorf("Expected every refresh to reach the repository, got %d", repo.calls)
	}
}

// TestFlightByID tests the lookup boundary.
func TestFlightByID(t *testing.T) {
	repo := &scriptedRepo{respond: func(int) ([]flight.Record, error) { return sample, nil }}
	svc := New(repo, nil)
	if err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	rec, err := svc.FlightByID("a1")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if rec.OriginCountry != "Ireland" {
		t.Errorf("Expected Ireland, got %s", rec.OriginCountry)
	}

	if _, err := svc.FlightByID("zz"); !errs.Is[*errs.NotFoundError](err) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

// TestFlightsByCountry tests the snapshot filter.
func TestFlightsByCountry(t *testing.T) {
	repo := &scriptedRepo{respond: func(int) ([]flight.Record, error) { return sample, nil }}
	svc := New(repo, nil)
	if err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	if got := svc.FlightsByCountry("France"); len(got) != 1 || got[0].ICAO24 != "a2" {
		t.Errorf("Expected the French flight, got %+v", got)
	}
	if got := svc.FlightsByCountry("france"); len(got) != 0 {
		t.Errorf("Expected case-sensitive match, got %+v", got)
	}
}

// TestSubscribe tests the update stream.
func TestSubscribe(t *testing.T) {
	repo := &scriptedRepo{respond: func(int) ([]flight.Record, error) { return sample, nil }}
	svc := New(repo, nil)

	updates := svc.Subscribe()
	if err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	select {
	case u := <-updates:
		if len(u.Flights) != 2 || u.Err != nil {
			t.Errorf("Unexpected update %+v", u)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected an update after refresh")
	}
}

// TestUnsubscribe tests that detached channels are dropped from the
// subscriber list and stop receiving updates.
func TestUnsubscribe(t *testing.T) {
	repo := &scriptedRepo{respond: func(int) ([]flight.Record, error) { return sample, nil }}
	svc := New(repo, nil)

	var channels []<-chan Update
	for i := 0; i < 100; i++ {
		channels = append(channels, svc.Subscribe())
	}
	kept := svc.Subscribe()
	for _, ch := range channels {
		svc.Unsubscribe(ch)
	}

	svc.mu.RLock()
	remaining := len(svc.subs)
	svc.mu.RUnlock()
	if remaining != 1 {
		t.Fatalf("Expected 1 subscriber after unsubscribing, got %d", remaining)
	}

	if err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	select {
	case <-kept:
	case <-time.After(time.Second):
		t.Fatal("Expected the remaining subscriber to receive an update")
	}
	for i, ch := range channels {
		select {
		case <-ch:
			t.Fatalf("Expected detached channel %d to receive nothing", i)
		default:
		}
	}

	// Unsubscribing a channel twice is harmless.
	svc.Unsubscribe(channels[0])
}

// TestStartStop tests the periodic refresh loop lifecycle.
func TestStartStop(t *testing.T) {
	repo := &scriptedRepo{respond: func(int) ([]flight.Record, error) { return sample, nil }}
	svc := New(repo, nil, WithRefreshInterval(10*time.Millisecond))

	updates := svc.Subscribe()
	svc.Start(context.Background())

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("Expected a periodic refresh to fire")
	}

	svc.Stop()
	if svc.done != nil {
		t.Error("Expected loop state cleared after Stop")
	}
}

// TestRefreshPropagatesCancellation tests that a cancelled context surfaces
// as cancellation, not as a classified failure.
func TestRefreshPropagatesCancellation(t *testing.T) {
	repo := &scriptedRepo{respond: func(int) ([]flight.Record, error) {
		return nil, context.Canceled
	}}
	svc := New(repo, nil)

	err := svc.Refresh(context.Background(), false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
