package opensky

import (
	"fmt"
	"math"
	"time"

	"github.com/unklstewy/aero-scope/pkg/errs"
	"github.com/unklstewy/aero-scope/pkg/flight"
)

// State vector positions per the OpenSky /states/all response format.
// https://openskynetwork.github.io/opensky-api/rest.html
const (
	idxICAO24        = 0
	idxCallsign      = 1
	idxOriginCountry = 2
	idxLastContact   = 4
	idxLongitude     = 5
	idxLatitude      = 6
	idxBaroAltitude  = 7
	idxOnGround      = 8
	idxVelocity      = 9
	idxTrueTrack     = 10

	// minStateLength is the shortest array that still carries every field
	// we read. Later positions (sensors, squawk, position source) are
	// ignored either way.
	minStateLength = 11
)

// ParseStateVector converts one raw positional array into a flight record.
// It fails with a ParsingError when the array is too short or the
// transponder address at position 0 is missing or not a string. Numeric
// fields that are present but not finite numbers are treated as absent.
func ParseStateVector(state []any) (flight.Record, error) {
	if len(state) < minStateLength {
		return flight.Record{}, &errs.ParsingError{
			Message: fmt.Sprintf("state vector has %d elements, need at least %d", len(state), minStateLength),
		}
	}

	icao24, ok := state[idxICAO24].(string)
	if !ok || icao24 == "" {
		return flight.Record{}, &errs.ParsingError{
			Message: fmt.Sprintf("missing or invalid icao24 identifier: %v", state[idxICAO24]),
		}
	}

	rec := flight.Record{
		ICAO24:        icao24,
		Callsign:      stringAt(state, idxCallsign),
		OriginCountry: stringAt(state, idxOriginCountry),
		OnGround:      boolAt(state, idxOnGround),
	}

	// Position only when both coordinates are present and numeric.
	lon := floatAt(state, idxLongitude)
	lat := floatAt(state, idxLatitude)
	if lon != nil && lat != nil {
		rec.Position = &flight.Position{Latitude: *lat, Longitude: *lon}
	}

	if v := floatAt(state, idxBaroAltitude); v != nil {
		rec.Altitude = &flight.Measurement{Value: *v, Unit: flight.UnitFeet}
	}
	if v := floatAt(state, idxVelocity); v != nil {
		rec.Velocity = &flight.Measurement{Value: *v, Unit: flight.UnitKmH}
	}
	if v := floatAt(state, idxTrueTrack); v != nil {
		rec.Heading = &flight.Measurement{Value: *v, Unit: flight.UnitDegrees}
	}

	// A record without a contact time is still usable for current-snapshot
	// statistics, so default to the observation time rather than failing.
	if v := floatAt(state, idxLastContact); v != nil {
		rec.LastContact = time.Unix(int64(*v), 0).UTC()
	} else {
		rec.LastContact = time.Now().UTC()
	}

	return rec, nil
}

// ParseStates parses a batch of state vectors. The batch aborts on the first
// malformed record; one bad entry fails the whole fetch.
func ParseStates(states [][]any) ([]flight.Record, error) {
	records := make([]flight.Record, 0, len(states))
	for i, state := range states {
		rec, err := ParseStateVector(state)
		if err != nil {
			return nil, &errs.ParsingError{
				Message: fmt.Sprintf("state vector %d: %v", i, err),
				Err:     err,
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// floatAt extracts a finite numeric field, returning nil for anything else.
func floatAt(state []any, i int) *float64 {
	if i >= len(state) {
		return nil
	}
	v, ok := state[i].(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func stringAt(state []any, i int) string {
	if i >= len(state) {
		return ""
	}
	if s, ok := state[i].(string); ok {
		return s
	}
	return ""
}

func boolAt(state []any, i int) bool {
	if i >= len(state) {
		return false
	}
	if b, ok := state[i].(bool); ok {
		return b
	}
	return false
}
