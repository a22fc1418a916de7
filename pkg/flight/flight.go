// Package flight defines the core domain types for tracked aircraft and the
// data-source abstraction shared by the live OpenSky client and the fixture
// provider.
package flight

import (
	"context"
	"time"

	"github.com/unklstewy/aero-scope/pkg/errs"
)

// Measurement units used by Record fields.
const (
	UnitFeet    = "feet"
	UnitKmH     = "km/h"
	UnitDegrees = "degrees"
)

// Position is a WGS84 coordinate pair. Both fields are always populated
// together; a record with only one of them carries no Position at all.
type Position struct {
	// Latitude in decimal degrees (-90 to +90)
	Latitude float64 `json:"latitude"`

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64 `json:"longitude"`
}

// Measurement is a value with an explicit unit label.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Record is one aircraft observation. ICAO24 is the stable identity key;
// everything except ICAO24, OnGround and LastContact is optional and
// represented by a nil pointer when the source did not report it.
type Record struct {
	// ICAO24 is the 24-bit transponder address in hex (e.g. "4ca2c3")
	ICAO24 string `json:"icao24"`

	// Callsign is the flight number or registration, may be blank
	Callsign string `json:"callsign,omitempty"`

	// OriginCountry is the country the transponder is registered in
	OriginCountry string `json:"originCountry,omitempty"`

	Position *Position `json:"position,omitempty"`

	// Altitude is barometric altitude in feet
	Altitude *Measurement `json:"altitude,omitempty"`

	// Velocity is ground speed in km/h
	Velocity *Measurement `json:"velocity,omitempty"`

	// Heading is the true track in degrees (0-360)
	Heading *Measurement `json:"heading,omitempty"`

	OnGround bool `json:"onGround"`

	// LastContact is the last time the upstream received a message from
	// this transponder; defaults to the observation time when absent.
	LastContact time.Time `json:"lastContact"`
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.Position != nil {
		p := *r.Position
		out.Position = &p
	}
	if r.Altitude != nil {
		m := *r.Altitude
		out.Altitude = &m
	}
	if r.Velocity != nil {
		m := *r.Velocity
		out.Velocity = &m
	}
	if r.Heading != nil {
		m := *r.Heading
		out.Heading = &m
	}
	return out
}

// CloneAll deep-copies a collection.
func CloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// FindByICAO returns the first record matching the given transponder address.
func FindByICAO(records []Record, icao24 string) (Record, bool) {
	for _, r := range records {
		if r.ICAO24 == icao24 {
			return r, true
		}
	}
	return Record{}, false
}

// FilterByCountry returns the records whose origin country matches exactly.
// Matching is case-sensitive.
func FilterByCountry(records []Record, country string) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if r.OriginCountry == country {
			out = append(out, r)
		}
	}
	return out
}

// BoundingBox is a geographic query area. All four bounds are required
// together and are inclusive.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLon float64 `json:"minLon"`
	MaxLon float64 `json:"maxLon"`
}

// Validate checks the box invariants (minLat <= maxLat, minLon <= maxLon).
func (b BoundingBox) Validate() error {
	if b.MinLat > b.MaxLat {
		return &errs.ValidationError{Field: "bounds", Message: "minLat exceeds maxLat"}
	}
	if b.MinLon > b.MaxLon {
		return &errs.ValidationError{Field: "bounds", Message: "minLon exceeds maxLon"}
	}
	return nil
}

// Contains reports whether a position falls inside the box, inclusive on all
// four edges.
func (b BoundingBox) Contains(p Position) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon
}

// Source is the interface all flight data providers implement. This
// abstraction allows switching between the live OpenSky API and static
// fixture data without touching the layers above.
type Source interface {
	// GetAllFlights returns every currently tracked aircraft.
	GetAllFlights(ctx context.Context) ([]Record, error)

	// GetFlightsInBounds returns the aircraft inside a geographic box.
	GetFlightsInBounds(ctx context.Context, box BoundingBox) ([]Record, error)

	// Close cleanly shuts down the source.
	Close() error
}
