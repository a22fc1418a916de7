package fixture

import (
	"time"

	"github.com/unklstewy/aero-scope/pkg/flight"
)

// Static fixture definitions. These are never handed out directly; every
// Source works on a deep copy so mutation hooks cannot corrupt them.

func m(value float64, unit string) *flight.Measurement {
	return &flight.Measurement{Value: value, Unit: unit}
}

func at(minute, second int) time.Time {
	return time.Date(2024, 1, 15, 10, minute, second, 0, time.UTC)
}

func rec(icao24, callsign, country string, lat, lon, altFt, spdKmh, hdg float64, onGround bool, seen time.Time) flight.Record {
	return flight.Record{
		ICAO24:        icao24,
		Callsign:      callsign,
		OriginCountry: country,
		Position:      &flight.Position{Latitude: lat, Longitude: lon},
		Altitude:      m(altFt, flight.UnitFeet),
		Velocity:      m(spdKmh, flight.UnitKmH),
		Heading:       m(hdg, flight.UnitDegrees),
		OnGround:      onGround,
		LastContact:   seen,
	}
}

var europeFlights = []flight.Record{
	rec("4ca2c3", "RYR123", "Ireland", 52.3702, 4.8952, 35000, 850, 45, false, at(30, 0)),
	rec("4ca2c4", "BAW456", "United Kingdom", 51.5074, -0.1278, 28000, 920, 120, false, at(31, 0)),
	rec("4ca2c5", "AFR789", "France", 48.8566, 2.3522, 41000, 780, 200, false, at(32, 0)),
	rec("4ca2c6", "DLH012", "Germany", 52.52, 13.405, 32000, 890, 90, false, at(33, 0)),
	rec("4ca2c7", "KLM345", "Netherlands", 52.3105, 4.7683, 25000, 750, 300, false, at(34, 0)),
}

var asiaFlights = []flight.Record{
	rec("86eb2d", "JAL123", "Japan", 35.6762, 139.6503, 38000, 880, 270, false, at(35, 0)),
	rec("76ceef", "SIA456", "Singapore", 1.3521, 103.8198, 36000, 860, 315, false, at(36, 0)),
	rec("780a2c", "CCA789", "China", 39.9042, 116.4074, 33000, 820, 180, false, at(37, 0)),
	rec("71be12", "KAL012", "South Korea", 37.5665, 126.978, 31000, 840, 225, false, at(38, 0)),
	rec("885102", "THA345", "Thailand", 13.7563, 100.5018, 29000, 800, 90, false, at(39, 0)),
}

// busyFlights is a ground-heavy cluster around Schiphol: parked and taxiing
// aircraft carry explicit zero measurements, which exercises the
// zero-versus-absent distinction in the statistics layer.
var busyFlights = []flight.Record{
	rec("484a9e", "KLM101", "Netherlands", 52.3086, 4.7639, 0, 0, 0, true, at(40, 0)),
	rec("484a9f", "KLM102", "Netherlands", 52.3091, 4.7655, 0, 0, 180, true, at(40, 10)),
	rec("4ca4e1", "RYR201", "Ireland", 52.3099, 4.7702, 0, 30, 90, true, at(40, 20)),
	rec("406b52", "EZY303", "United Kingdom", 52.3112, 4.7741, 0, 25, 270, true, at(40, 30)),
	rec("3c66a4", "DLH404", "Germany", 52.3301, 4.7812, 1200, 310, 45, false, at(40, 40)),
	rec("392ae7", "AFR505", "France", 52.3522, 4.8105, 2800, 420, 60, false, at(40, 50)),
	rec("484b21", "TRA606", "Netherlands", 52.4015, 4.8522, 6500, 540, 30, false, at(41, 0)),
	rec("4ca511", "RYR707", "Ireland", 52.4488, 4.9244, 9800, 640, 20, false, at(41, 10)),
}

var highAltitudeFlights = []flight.Record{
	rec("a835af", "UAL890", "United States", 40.7128, -74.006, 41000, 950, 280, false, at(42, 0)),
	rec("a9c2f0", "DAL210", "United States", 41.8781, -87.6298, 43000, 940, 95, false, at(42, 15)),
	rec("c060b9", "ACA777", "Canada", 43.6532, -79.3832, 47000, 910, 75, false, at(42, 30)),
	rec("adf8a2", "GLF644", "United States", 36.1699, -115.1398, 51000, 870, 130, false, at(42, 45)),
}

var lowAltitudeFlights = []flight.Record{
	rec("7c6b2d", "QFA001", "Australia", -33.8688, 151.2093, 500, 280, 160, false, at(43, 0)),
	rec("7c6b2e", "JST212", "Australia", -37.8136, 144.9631, 3200, 390, 200, false, at(43, 15)),
	rec("c82044", "ANZ415", "New Zealand", -36.8485, 174.7633, 7500, 480, 240, false, at(43, 30)),
	rec("7c1a88", "REX533", "Australia", -34.9285, 138.6007, 9500, 520, 350, false, at(43, 45)),
}

var allFlights = concat(europeFlights, asiaFlights)

// mixedFlights combines a slice of every other set into one heterogeneous
// collection: cruising traffic, ground traffic, and altitude extremes.
var mixedFlights = concat(
	europeFlights[:2],
	asiaFlights[:2],
	busyFlights[:2],
	highAltitudeFlights[:1],
	lowAltitudeFlights[:1],
)

func concat(sets ...[]flight.Record) []flight.Record {
	var out []flight.Record
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

func variantData(v Variant) []flight.Record {
	switch v {
	case VariantEurope:
		return europeFlights
	case VariantAsia:
		return asiaFlights
	case VariantBusy:
		return busyFlights
	case VariantEmpty:
		return nil
	case VariantHighAltitude:
		return highAltitudeFlights
	case VariantLowAltitude:
		return lowAltitudeFlights
	case VariantMixed:
		return mixedFlights
	default:
		return allFlights
	}
}
