package geo

import (
	"math"
	"testing"

	"fieldtrack/internal/domain/entities"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		point     entities.GeoPoint
		precision int
		want      string
	}{
		{
			name:      "Da Nang",
			point:     entities.GeoPoint{Lat: 16.0471, Lng: 108.2062},
			precision: 5,
			want:      "w6ugq",
		},
		{
			name:      "San Francisco",
			point:     entities.GeoPoint{Lat: 37.7749, Lng: -122.4194},
			precision: 6,
			want:      "9q8yyk",
		},
		{
			name:      "New York",
			point:     entities.GeoPoint{Lat: 40.7128, Lng: -74.0060},
			precision: 6,
			want:      "dr5reg",
		},
		{
			name:      "London",
			point:     entities.GeoPoint{Lat: 51.5074, Lng: -0.1278},
			precision: 6,
			want:      "gcpvj0",
		},
		{
			name:      "Jutland reference point",
			point:     entities.GeoPoint{Lat: 57.64911, Lng: 10.40744},
			precision: 11,
			want:      "u4pruydqqvj",
		},
		{
			name:      "default precision",
			point:     entities.GeoPoint{Lat: 37.7749, Lng: -122.4194},
			precision: 0,
			want:      "9q8yy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.point, tt.precision)
			if got != tt.want {
				t.Errorf("Encode(%+v, %d) = %q, want %q", tt.point, tt.precision, got, tt.want)
			}
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	points := []entities.GeoPoint{
		{Lat: 16.0471, Lng: 108.2062},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 0, Lng: 0},
		{Lat: 57.64911, Lng: 10.40744},
	}

	for _, p := range points {
		hash := Encode(p, 8)
		got := Decode(hash)

		// Precision 8 cells are ~38 m × 19 m; the decoded center must be well
		// within a thousandth of a degree of the original.
		if math.Abs(got.Lat-p.Lat) > 0.001 || math.Abs(got.Lng-p.Lng) > 0.001 {
			t.Errorf("Decode(Encode(%+v)) = %+v, drift too large", p, got)
		}
	}
}

func TestDecodeBoundsContainsPoint(t *testing.T) {
	p := entities.GeoPoint{Lat: 16.0471, Lng: 108.2062}
	for precision := 1; precision <= 9; precision++ {
		hash := Encode(p, precision)
		b := DecodeBounds(hash)
		if !b.Contains(p) {
			t.Errorf("precision %d: cell %q bounds %+v do not contain %+v", precision, hash, b, p)
		}
	}
}

// Adjacent cells must tile: the east neighbor starts exactly where this cell
// ends, the north neighbor starts at this cell's top edge.
func TestNeighborAdjacency(t *testing.T) {
	points := []entities.GeoPoint{
		{Lat: 16.0471, Lng: 108.2062},
		{Lat: 37.7749, Lng: -122.4194},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 51.5074, Lng: -0.1278},
	}

	for _, p := range points {
		for precision := 3; precision <= 7; precision++ {
			hash := Encode(p, precision)
			b := DecodeBounds(hash)

			east := DecodeBounds(Neighbor(hash, "e"))
			if math.Abs(east.MinLng-b.MaxLng) > 1e-9 {
				t.Errorf("%q east neighbor MinLng = %v, want %v", hash, east.MinLng, b.MaxLng)
			}
			north := DecodeBounds(Neighbor(hash, "n"))
			if math.Abs(north.MinLat-b.MaxLat) > 1e-9 {
				t.Errorf("%q north neighbor MinLat = %v, want %v", hash, north.MinLat, b.MaxLat)
			}
			west := DecodeBounds(Neighbor(hash, "w"))
			if math.Abs(west.MaxLng-b.MinLng) > 1e-9 {
				t.Errorf("%q west neighbor MaxLng = %v, want %v", hash, west.MaxLng, b.MinLng)
			}
			south := DecodeBounds(Neighbor(hash, "s"))
			if math.Abs(south.MaxLat-b.MinLat) > 1e-9 {
				t.Errorf("%q south neighbor MaxLat = %v, want %v", hash, south.MaxLat, b.MinLat)
			}
		}
	}
}

// Crossing a cell border must agree with re-encoding: a point just east of a
// cell's boundary encodes to that cell's east neighbor.
func TestNeighborMatchesEncoding(t *testing.T) {
	p := entities.GeoPoint{Lat: 16.0471, Lng: 108.2062}
	for precision := 3; precision <= 7; precision++ {
		hash := Encode(p, precision)
		b := DecodeBounds(hash)

		epsilon := (b.MaxLng - b.MinLng) / 1000
		eastPoint := entities.GeoPoint{Lat: p.Lat, Lng: b.MaxLng + epsilon}
		if got, want := Encode(eastPoint, precision), Neighbor(hash, "e"); got != want {
			t.Errorf("precision %d: encoded east point %q, Neighbor(e) = %q", precision, got, want)
		}

		northPoint := entities.GeoPoint{Lat: b.MaxLat + (b.MaxLat-b.MinLat)/1000, Lng: p.Lng}
		if got, want := Encode(northPoint, precision), Neighbor(hash, "n"); got != want {
			t.Errorf("precision %d: encoded north point %q, Neighbor(n) = %q", precision, got, want)
		}
	}
}

func TestCoverContainsInteriorPoints(t *testing.T) {
	b := Bounds{MinLat: 16.0, MaxLat: 16.1, MinLng: 108.15, MaxLng: 108.3}
	cells := Cover(b, 5, 1024)
	if cells == nil {
		t.Fatal("Cover returned nil for a small box")
	}

	cellSet := make(map[string]struct{}, len(cells))
	for _, c := range cells {
		cellSet[c] = struct{}{}
	}

	// Every point inside the box must encode to one of the covering cells.
	for lat := b.MinLat; lat <= b.MaxLat; lat += 0.013 {
		for lng := b.MinLng; lng <= b.MaxLng; lng += 0.017 {
			hash := Encode(entities.GeoPoint{Lat: lat, Lng: lng}, 5)
			if _, ok := cellSet[hash]; !ok {
				t.Fatalf("point (%v, %v) encodes to %q, not in cover %v", lat, lng, hash, cells)
			}
		}
	}
}

func TestCoverRespectsMaxCells(t *testing.T) {
	// A continent-sized box at high precision blows any reasonable budget.
	b := Bounds{MinLat: 10, MaxLat: 50, MinLng: 70, MaxLng: 140}
	if cells := Cover(b, 7, 100); cells != nil {
		t.Errorf("expected nil for oversized cover, got %d cells", len(cells))
	}
}

func TestCoverSingleCell(t *testing.T) {
	p := entities.GeoPoint{Lat: 16.0471, Lng: 108.2062}
	cell := DecodeBounds(Encode(p, 5))
	inner := Bounds{
		MinLat: cell.MinLat + 1e-6, MaxLat: cell.MaxLat - 1e-6,
		MinLng: cell.MinLng + 1e-6, MaxLng: cell.MaxLng - 1e-6,
	}
	cells := Cover(inner, 5, 1024)
	if len(cells) != 1 || cells[0] != Encode(p, 5) {
		t.Errorf("Cover of sub-cell box = %v, want exactly [%q]", cells, Encode(p, 5))
	}
}
