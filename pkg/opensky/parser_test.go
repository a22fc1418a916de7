package opensky

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/unklstewy/aero-scope/pkg/errs"
)

// TestParseStateVector tests parsing a single raw state array.
func TestParseStateVector(t *testing.T) {
	t.Run("Complete vector", func(t *testing.T) {
		state := []any{
			"abc123", "RYR1", "Ireland", 0.0, 1705312200.0,
			4.9, 52.4, 35000.0, false, 850.0, 45.0,
			0.0, nil, 35000.0, "1234", false, 0.0,
		}

		rec, err := ParseStateVector(state)
		if err != nil {
			t.Fatalf("Expected success, got %v", err)
		}
		if rec.ICAO24 != "abc123" {
			t.Errorf("Expected icao24 abc123, got %s", rec.ICAO24)
		}
		if rec.Callsign != "RYR1" {
			t.Errorf("Expected callsign RYR1, got %s", rec.Callsign)
		}
		if rec.OriginCountry != "Ireland" {
			t.Errorf("Expected country Ireland, got %s", rec.OriginCountry)
		}
		if rec.Altitude == nil || rec.Altitude.Value != 35000 {
			t.Errorf("Expected altitude 35000, got %+v", rec.Altitude)
		}
		if rec.Velocity == nil || rec.Velocity.Value != 850 {
			t.Errorf("Expected velocity 850, got %+v", rec.Velocity)
		}
		if rec.Heading == nil || rec.Heading.Value != 45 {
			t.Errorf("Expected heading 45, got %+v", rec.Heading)
		}
		if rec.OnGround {
			t.Error("Expected onGround false")
		}
		if rec.Position == nil || rec.Position.Latitude != 52.4 || rec.Position.Longitude != 4.9 {
			t.Errorf("Expected position 52.4/4.9, got %+v", rec.Position)
		}
		want := time.Unix(1705312200, 0).UTC()
		if !rec.LastContact.Equal(want) {
			t.Errorf("Expected lastContact %v, got %v", want, rec.LastContact)
		}
	})

	t.Run("Too short", func(t *testing.T) {
		state := []any{"abc123", "RYR1", "Ireland"}

		_, err := ParseStateVector(state)
		if !errs.Is[*errs.ParsingError](err) {
			t.Fatalf("Expected ParsingError, got %v", err)
		}
	})

	t.Run("Missing icao24", func(t *testing.T) {
		tests := []struct {
			name   string
			icao24 any
		}{
			{"nil", nil},
			{"number", 123.0},
			{"empty string", ""},
			{"boolean", true},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				state := []any{tc.icao24, "RYR1", "Ireland", nil, nil,
					4.9, 52.4, 35000.0, false, 850.0, 45.0}

				_, err := ParseStateVector(state)
				if !errs.Is[*errs.ParsingError](err) {
					t.Fatalf("Expected ParsingError, got %v", err)
				}
			})
		}
	})

	t.Run("Non-finite numerics treated as absent", func(t *testing.T) {
		// JSON never carries NaN, but protect against non-numeric values in
		// numeric positions.
		state := []any{"abc123", "RYR1", "Ireland", nil, nil,
			"bad", 52.4, nil, false, "fast", nil}

		rec, err := ParseStateVector(state)
		if err != nil {
			t.Fatalf("Expected success, got %v", err)
		}
		if rec.Position != nil {
			t.Errorf("Expected no position with invalid longitude, got %+v", rec.Position)
		}
		if rec.Altitude != nil {
			t.Errorf("Expected absent altitude, got %+v", rec.Altitude)
		}
		if rec.Velocity != nil {
			t.Errorf("Expected absent velocity, got %+v", rec.Velocity)
		}
		if rec.Heading != nil {
			t.Errorf("Expected absent heading, got %+v", rec.Heading)
		}
	})

	t.Run("Zero altitude is present, not absent", func(t *testing.T) {
		state := []any{"abc123", "KLM1", "Netherlands", nil, nil,
			4.76, 52.31, 0.0, true, 0.0, 0.0}

		rec, err := ParseStateVector(state)
		if err != nil {
			t.Fatalf("Expected success, got %v", err)
		}
		if rec.Altitude == nil || rec.Altitude.Value != 0 {
			t.Errorf("Expected altitude 0, got %+v", rec.Altitude)
		}
		if !rec.OnGround {
			t.Error("Expected onGround true")
		}
	})

	t.Run("Missing lastContact defaults to now", func(t *testing.T) {
		state := []any{"abc123", "RYR1", "Ireland", nil, nil,
			4.9, 52.4, 35000.0, false, 850.0, 45.0}

		before := time.Now().UTC()
		rec, err := ParseStateVector(state)
		after := time.Now().UTC()
		if err != nil {
			t.Fatalf("Expected success, got %v", err)
		}
		if rec.LastContact.Before(before.Add(-time.Second)) || rec.LastContact.After(after.Add(time.Second)) {
			t.Errorf("Expected lastContact near now, got %v", rec.LastContact)
		}
	})
}

// TestParseStateVectorScenario tests the documented single-record scenario
// end to end, going through JSON decoding the way the live client does.
func TestParseStateVectorScenario(t *testing.T) {
	raw := `[["abc123", "RYR1", "Ireland", 0, 0, 4.9, 52.4, 35000, false, 850, 45, 0, null, 35000, "1234", false, 0]]`

	var states [][]any
	if err := json.Unmarshal([]byte(raw), &states); err != nil {
		t.Fatalf("Failed to decode scenario JSON: %v", err)
	}

	records, err := ParseStates(states)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.ICAO24 != "abc123" {
		t.Errorf("Expected id abc123, got %s", rec.ICAO24)
	}
	if rec.Altitude == nil || rec.Altitude.Value != 35000 {
		t.Errorf("Expected altitude 35000, got %+v", rec.Altitude)
	}
	if rec.OnGround {
		t.Error("Expected onGround false")
	}
}

// TestParseStates tests batch parsing semantics.
func TestParseStates(t *testing.T) {
	valid := []any{"abc123", "RYR1", "Ireland", nil, nil,
		4.9, 52.4, 35000.0, false, 850.0, 45.0}
	invalid := []any{nil, "BAD", "Nowhere", nil, nil,
		0.0, 0.0, 0.0, false, 0.0, 0.0}

	t.Run("All valid", func(t *testing.T) {
		records, err := ParseStates([][]any{valid, valid})
		if err != nil {
			t.Fatalf("Expected success, got %v", err)
		}
		if len(records) != 2 {
			t.Errorf("Expected 2 records, got %d", len(records))
		}
	})

	t.Run("Aborts on first malformed record", func(t *testing.T) {
		records, err := ParseStates([][]any{valid, invalid, valid})
		if !errs.Is[*errs.ParsingError](err) {
			t.Fatalf("Expected ParsingError, got %v", err)
		}
		if records != nil {
			t.Errorf("Expected no records on batch failure, got %d", len(records))
		}
	})

	t.Run("Empty batch", func(t *testing.T) {
		records, err := ParseStates(nil)
		if err != nil {
			t.Fatalf("Expected success, got %v", err)
		}
		if len(records) != 0 {
			t.Errorf("Expected 0 records, got %d", len(records))
		}
	})
}
