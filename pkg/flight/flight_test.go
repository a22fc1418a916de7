package flight

import (
	"testing"

	"github.com/unklstewy/aero-scope/pkg/errs"
)

// TestClone tests deep copying of optional fields.
func TestClone(t *testing.T) {
	orig := Record{
		ICAO24:   "abc123",
		Position: &Position{Latitude: 52.4, Longitude: 4.9},
		Altitude: &Measurement{Value: 35000, Unit: UnitFeet},
	}

	clone := orig.Clone()
	clone.Position.Latitude = 0
	clone.Altitude.Value = 0

	if orig.Position.Latitude != 52.4 {
		t.Error("Expected original position untouched")
	}
	if orig.Altitude.Value != 35000 {
		t.Error("Expected original altitude untouched")
	}
}

// TestFindByICAO tests lookup by transponder address.
func TestFindByICAO(t *testing.T) {
	records := []Record{{ICAO24: "a1"}, {ICAO24: "a2"}}

	if _, ok := FindByICAO(records, "a2"); !ok {
		t.Error("Expected a2 found")
	}
	if _, ok := FindByICAO(records, "zz"); ok {
		t.Error("Expected zz not found")
	}
}

// TestFilterByCountry tests the exact-match filter.
func TestFilterByCountry(t *testing.T) {
	records := []Record{
		{ICAO24: "a1", OriginCountry: "Ireland"},
		{ICAO24: "a2", OriginCountry: "ireland"},
		{ICAO24: "a3", OriginCountry: "Ireland"},
	}

	got := FilterByCountry(records, "Ireland")
	if len(got) != 2 {
		t.Errorf("Expected 2 exact matches, got %d", len(got))
	}
}

// TestBoundingBoxValidate tests the box invariants.
func TestBoundingBoxValidate(t *testing.T) {
	tests := []struct {
		name    string
		box     BoundingBox
		wantErr bool
	}{
		{"valid", BoundingBox{MinLat: 45, MaxLat: 55, MinLon: -5, MaxLon: 15}, false},
		{"degenerate point", BoundingBox{MinLat: 50, MaxLat: 50, MinLon: 10, MaxLon: 10}, false},
		{"inverted latitude", BoundingBox{MinLat: 55, MaxLat: 45, MinLon: -5, MaxLon: 15}, true},
		{"inverted longitude", BoundingBox{MinLat: 45, MaxLat: 55, MinLon: 15, MaxLon: -5}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.box.Validate()
			if tc.wantErr && !errs.Is[*errs.ValidationError](err) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected valid box, got %v", err)
			}
		})
	}
}

// TestBoundingBoxContains tests inclusive edges.
func TestBoundingBoxContains(t *testing.T) {
	box := BoundingBox{MinLat: 45, MaxLat: 55, MinLon: 0, MaxLon: 10}

	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"inside", Position{Latitude: 50, Longitude: 5}, true},
		{"on min edge", Position{Latitude: 45, Longitude: 0}, true},
		{"on max edge", Position{Latitude: 55, Longitude: 10}, true},
		{"north of box", Position{Latitude: 56, Longitude: 5}, false},
		{"west of box", Position{Latitude: 50, Longitude: -1}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := box.Contains(tc.pos); got != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}
