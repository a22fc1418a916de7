// Package stats derives summary statistics from a flight collection:
// totals, altitude and country distributions, country rankings and a
// speed/altitude scatter. Everything here is a pure function of its input;
// snapshots are recomputed on demand and never stored.
package stats

import (
	"sort"

	"github.com/unklstewy/aero-scope/pkg/flight"
)

// TopCountriesLimit is the default size of the ranked country list.
const TopCountriesLimit = 10

// PieChartLimit is the default size of the condensed country summary used
// by visual consumers. Configured independently of TopCountriesLimit.
const PieChartLimit = 5

// altitudeRanges is the fixed bucket table for the altitude distribution,
// in feet. Buckets are inclusive on both ends and do not overlap.
var altitudeRanges = []AltitudeRange{
	{Min: 0, Max: 999, Label: "0-999 ft"},
	{Min: 1000, Max: 2999, Label: "1,000-2,999 ft"},
	{Min: 3000, Max: 9999, Label: "3,000-9,999 ft"},
	{Min: 10000, Max: 19999, Label: "10,000-19,999 ft"},
	{Min: 20000, Max: 29999, Label: "20,000-29,999 ft"},
	{Min: 30000, Max: 39999, Label: "30,000-39,999 ft"},
	{Min: 40000, Max: 49999, Label: "40,000-49,999 ft"},
	{Min: 50000, Max: 999999, Label: "50,000+ ft"},
}

// AltitudeRange is one bucket of the altitude distribution.
type AltitudeRange struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
	Label string  `json:"label"`
}

// CountryCount is one country's share of the collection. Percentage is
// relative to the records that carry an origin country, so percentages sum
// to 100 whenever at least one country is present.
type CountryCount struct {
	Country    string  `json:"country"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TopCountry is one entry of the ranked country list.
type TopCountry struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
	Rank    int    `json:"rank"`
}

// Point is one sample of the speed/altitude scatter.
type Point struct {
	Speed    float64 `json:"speed"`
	Altitude float64 `json:"altitude"`
	FlightID string  `json:"flightId"`
}

// Statistics is a snapshot derived from one flight collection.
type Statistics struct {
	TotalFlights    int     `json:"totalFlights"`
	AverageAltitude float64 `json:"averageAltitude"`
	AverageSpeed    float64 `json:"averageSpeed"`
	MaxAltitude     float64 `json:"maxAltitude"`
	MaxSpeed        float64 `json:"maxSpeed"`
	CountriesCount  int     `json:"countriesCount"`

	AltitudeDistribution     []AltitudeRange `json:"altitudeDistribution"`
	CountryDistribution      []CountryCount  `json:"countryDistribution"`
	TopCountries             []TopCountry    `json:"topCountries"`
	SpeedAltitudeCorrelation []Point         `json:"speedAltitudeCorrelation"`
}

// Calculator computes statistics snapshots.
type Calculator struct{}

// NewCalculator returns a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate derives a full snapshot from flights. A collection where no
// record carries both altitude and velocity yields a zeroed snapshot with
// empty distributions rather than an error.
func (c *Calculator) Calculate(flights []flight.Record) Statistics {
	hasValid := false
	for i := range flights {
		if flights[i].Altitude != nil && flights[i].Velocity != nil {
			hasValid = true
			break
		}
	}

	if !hasValid {
		return Statistics{
			TotalFlights:             len(flights),
			AltitudeDistribution:     []AltitudeRange{},
			CountryDistribution:      []CountryCount{},
			TopCountries:             []TopCountry{},
			SpeedAltitudeCorrelation: []Point{},
		}
	}

	// Averages and maxima consider only positive values. A record with a
	// zero altitude still counts toward TotalFlights and still appears in
	// the correlation scatter.
	var altSum, altMax, spdSum, spdMax float64
	var altN, spdN int
	countries := make(map[string]struct{})

	for i := range flights {
		f := &flights[i]
		if f.Altitude != nil && f.Velocity != nil {
			if v := f.Altitude.Value; v > 0 {
				altSum += v
				altN++
				if v > altMax {
					altMax = v
				}
			}
			if v := f.Velocity.Value; v > 0 {
				spdSum += v
				spdN++
				if v > spdMax {
					spdMax = v
				}
			}
		}
		if f.OriginCountry != "" {
			countries[f.OriginCountry] = struct{}{}
		}
	}

	var avgAlt, avgSpd float64
	if altN > 0 {
		avgAlt = altSum / float64(altN)
	}
	if spdN > 0 {
		avgSpd = spdSum / float64(spdN)
	}

	return Statistics{
		TotalFlights:             len(flights),
		AverageAltitude:          avgAlt,
		AverageSpeed:             avgSpd,
		MaxAltitude:              altMax,
		MaxSpeed:                 spdMax,
		CountriesCount:           len(countries),
		AltitudeDistribution:     c.AltitudeDistribution(flights),
		CountryDistribution:      c.CountryDistribution(flights),
		TopCountries:             c.TopCountries(flights, TopCountriesLimit),
		SpeedAltitudeCorrelation: c.SpeedAltitudeCorrelation(flights),
	}
}

// AltitudeDistribution counts records per fixed altitude bucket. Records
// without an altitude fall into no bucket.
func (c *Calculator) AltitudeDistribution(flights []flight.Record) []AltitudeRange {
	ranges := make([]AltitudeRange, len(altitudeRanges))
	copy(ranges, altitudeRanges)

	for i := range flights {
		if flights[i].Altitude == nil {
			continue
		}
		v := flights[i].Altitude.Value
		for j := range ranges {
			if v >= ranges[j].Min && v <= ranges[j].Max {
				ranges[j].Count++
				break
			}
		}
	}
	return ranges
}

// CountryDistribution counts records per origin country. Records with no
// country are excluded from both the counts and the percentage base.
func (c *Calculator) CountryDistribution(flights []flight.Record) []CountryCount {
	counts, order := countByCountry(flights)

	total := 0
	for _, n := range counts {
		total += n
	}

	out := make([]CountryCount, 0, len(order))
	for _, country := range order {
		n := counts[country]
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		out = append(out, CountryCount{Country: country, Count: n, Percentage: pct})
	}
	return out
}

// TopCountries ranks countries by record count, descending. Ties keep the
// order countries were first encountered while scanning the collection.
func (c *Calculator) TopCountries(flights []flight.Record, limit int) []TopCountry {
	counts, order := countByCountry(flights)

	sorted := make([]string, len(order))
	copy(sorted, order)
	sort.SliceStable(sorted, func(i, j int) bool {
		return counts[sorted[i]] > counts[sorted[j]]
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]TopCountry, 0, len(sorted))
	for i, country := range sorted {
		out = append(out, TopCountry{Country: country, Count: counts[country], Rank: i + 1})
	}
	return out
}

// SpeedAltitudeCorrelation emits one point per record carrying both speed
// and altitude. Zero values are kept here even though the averages exclude
// them; the scatter shows the raw sample.
func (c *Calculator) SpeedAltitudeCorrelation(flights []flight.Record) []Point {
	out := make([]Point, 0, len(flights))
	for i := range flights {
		f := &flights[i]
		if f.Velocity == nil || f.Altitude == nil {
			continue
		}
		out = append(out, Point{
			Speed:    f.Velocity.Value,
			Altitude: f.Altitude.Value,
			FlightID: f.ICAO24,
		})
	}
	return out
}

// countByCountry tallies records per origin country, preserving
// first-encounter order for deterministic tie-breaking downstream.
func countByCountry(flights []flight.Record) (map[string]int, []string) {
	counts := make(map[string]int)
	var order []string
	for i := range flights {
		country := flights[i].OriginCountry
		if country == "" {
			continue
		}
		if _, seen := counts[country]; !seen {
			order = append(order, country)
		}
		counts[country]++
	}
	return counts, order
}
