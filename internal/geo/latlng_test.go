package geo

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"fieldtrack/internal/domain/entities"
)

func TestParseLatLng(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    entities.GeoPoint
		wantErr bool
	}{
		{
			name:  "simple pair",
			input: "16.0471,108.2062",
			want:  entities.GeoPoint{Lat: 16.0471, Lng: 108.2062},
		},
		{
			name:  "surrounding whitespace",
			input: "  37.7749 , -122.4194 ",
			want:  entities.GeoPoint{Lat: 37.7749, Lng: -122.4194},
		},
		{
			name:  "integer tokens",
			input: "0,0",
			want:  entities.GeoPoint{Lat: 0, Lng: 0},
		},
		{
			name:  "extreme valid values",
			input: "-90,180",
			want:  entities.GeoPoint{Lat: -90, Lng: 180},
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "single token",
			input:   "16.0471",
			wantErr: true,
		},
		{
			name:    "three tokens",
			input:   "16.0471,108.2062,12",
			wantErr: true,
		},
		{
			name:    "non-numeric latitude",
			input:   "north,108.2062",
			wantErr: true,
		},
		{
			name:    "non-numeric longitude",
			input:   "16.0471,east",
			wantErr: true,
		},
		{
			name:    "latitude out of range",
			input:   "91,0",
			wantErr: true,
		},
		{
			name:    "longitude out of range",
			input:   "0,-180.5",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLatLng(tt.input)
			if tt.wantErr {
				if !errors.Is(err, entities.ErrInvalidFormat) {
					t.Fatalf("ParseLatLng(%q) error = %v, want ErrInvalidFormat", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLatLng(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLatLng(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDistanceKm(t *testing.T) {
	bna := entities.GeoPoint{Lat: 36.12, Lng: -86.67}
	lax := entities.GeoPoint{Lat: 33.94, Lng: -118.40}

	// Known haversine result for BNA → LAX with R = 6371 km.
	got := DistanceKm(bna, lax)
	if math.Abs(got-2886.44) > 0.5 {
		t.Errorf("DistanceKm(BNA, LAX) = %v, want ≈ 2886.44", got)
	}

	if d := DistanceKm(bna, bna); d != 0 {
		t.Errorf("DistanceKm(a, a) = %v, want 0", d)
	}

	forward := DistanceKm(bna, lax)
	backward := DistanceKm(lax, bna)
	if math.Abs(forward-backward) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", forward, backward)
	}
}

func TestDistanceKmShortRange(t *testing.T) {
	a := entities.GeoPoint{Lat: 16.0471, Lng: 108.2062}
	b := entities.GeoPoint{Lat: 16.0471, Lng: 108.2162}

	// 0.01° of longitude at 16°N ≈ 1.069 km.
	got := DistanceKm(a, b)
	if math.Abs(got-1.069) > 0.01 {
		t.Errorf("DistanceKm short range = %v, want ≈ 1.069", got)
	}
}

func TestBoundingBoxContainsCenter(t *testing.T) {
	center := entities.GeoPoint{Lat: 16.0471, Lng: 108.2062}
	b := BoundingBox(center, 5)
	if !b.Contains(center) {
		t.Fatalf("bounding box %+v does not contain its own center", b)
	}
}

// destination computes the point at bearingDeg and distanceKm from start on
// the same sphere the haversine distance uses. Used to generate points lying
// exactly on the query circle.
func destination(start entities.GeoPoint, bearingDeg, distanceKm float64) entities.GeoPoint {
	lat1 := start.Lat * math.Pi / 180
	lng1 := start.Lng * math.Pi / 180
	bearing := bearingDeg * math.Pi / 180
	delta := distanceKm / EarthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) +
		math.Cos(lat1)*math.Sin(delta)*math.Cos(bearing))
	lng2 := lng1 + math.Atan2(
		math.Sin(bearing)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	lngDeg := lng2 * 180 / math.Pi
	for lngDeg > 180 {
		lngDeg -= 360
	}
	for lngDeg < -180 {
		lngDeg += 360
	}
	return entities.GeoPoint{Lat: lat2 * 180 / math.Pi, Lng: lngDeg}
}

// Every point at exactly radiusKm from the center, in any direction, must fall
// inside the bounding box — the coarse filter may over-cover but never
// exclude a true positive.
func TestBoundingBoxNeverExcludesPointsInRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		center := entities.GeoPoint{
			Lat: rng.Float64()*160 - 80, // stay off the exact poles
			Lng: rng.Float64()*360 - 180,
		}
		radius := rng.Float64()*50 + 0.1
		bearing := rng.Float64() * 360

		b := BoundingBox(center, radius)
		p := destination(center, bearing, radius)

		if !b.Contains(p) {
			t.Fatalf("point %+v at %.2f km bearing %.1f° from %+v outside box %+v",
				p, radius, bearing, center, b)
		}
	}
}

func TestBoundingBoxNearPole(t *testing.T) {
	b := BoundingBox(entities.GeoPoint{Lat: 89.9, Lng: 45}, 50)
	if b.MinLng != -180 || b.MaxLng != 180 {
		t.Errorf("near-pole box should span all longitudes, got %+v", b)
	}
	if b.MaxLat != 90 {
		t.Errorf("near-pole box should reach the pole, got MaxLat %v", b.MaxLat)
	}
}

func TestBoundingBoxAntimeridian(t *testing.T) {
	b := BoundingBox(entities.GeoPoint{Lat: 0, Lng: 179.99}, 10)
	if b.MinLng != -180 || b.MaxLng != 180 {
		t.Errorf("box wrapping the antimeridian should widen to the full range, got %+v", b)
	}

	// A point just across the antimeridian, within radius, must be contained.
	p := entities.GeoPoint{Lat: 0, Lng: -179.95}
	if !b.Contains(p) {
		t.Errorf("box %+v does not contain cross-antimeridian point %+v", b, p)
	}
}
