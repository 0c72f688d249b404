// Package geo implements the geospatial primitives of the location subsystem:
// coordinate parsing, great-circle distance, bounding-box construction, a
// geohash coarse index, and the proximity search engine built on top of them.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fieldtrack/internal/domain/entities"
)

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// Degrees-per-kilometre approximations used to size bounding boxes.
// Latitude degrees are nearly constant; longitude degrees shrink with
// cos(latitude).
const (
	kmPerDegreeLat = 110.574
	kmPerDegreeLng = 111.320
)

// ParseLatLng parses a "lat,lng" string into a GeoPoint. The string must be
// exactly two comma-separated numeric tokens; surrounding whitespace is
// trimmed. Anything else — wrong token count, non-numeric tokens, or values
// outside the valid coordinate ranges — fails with ErrInvalidFormat.
func ParseLatLng(s string) (entities.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return entities.GeoPoint{}, fmt.Errorf("%w: expected \"lat,lng\", got %q", entities.ErrInvalidFormat, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return entities.GeoPoint{}, fmt.Errorf("%w: latitude %q is not a number", entities.ErrInvalidFormat, parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return entities.GeoPoint{}, fmt.Errorf("%w: longitude %q is not a number", entities.ErrInvalidFormat, parts[1])
	}

	p := entities.NewGeoPoint(lat, lng)
	if err := p.Validate(); err != nil {
		return entities.GeoPoint{}, fmt.Errorf("%w: %q out of range", entities.ErrInvalidFormat, s)
	}
	return p, nil
}

// DistanceKm computes the haversine great-circle distance between two points
// in kilometres. Symmetric in its arguments; DistanceKm(a, a) == 0.
func DistanceKm(a, b entities.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// Bounds is a latitude/longitude rectangle used as the coarse pre-filter for
// proximity queries.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// Contains reports whether the point falls inside the rectangle (inclusive).
func (b Bounds) Contains(p entities.GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// BoundingBox computes a rectangle around center that is guaranteed to
// contain every point within radiusKm. The degree deltas are approximations
// that over-cover (the box is wider than the true circle), which is the
// property the exact-distance filter downstream depends on: a candidate the
// box discards is never a true positive.
//
// Near the poles, or when the longitude delta degenerates (cos(lat) → 0) or
// would wrap past the antimeridian, the affected axis widens to its full
// range. More candidates, but still no false negatives.
func BoundingBox(center entities.GeoPoint, radiusKm float64) Bounds {
	latDelta := radiusKm / kmPerDegreeLat

	// Longitude half-width: the flat approximation radius/(111.320·cos(lat))
	// slips just under the spherical worst case (the maximum longitude
	// deviation along the circle is reached poleward of due east), so it is
	// widened to asin(sin(r/R)/cos(lat)) — the exact spherical bound. The box
	// must never exclude a point the haversine filter would accept.
	cosLat := math.Cos(center.Lat * math.Pi / 180)
	sinRadial := math.Sin(radiusKm / EarthRadiusKm)
	var lngDelta float64
	if cosLat > sinRadial {
		flat := radiusKm / (kmPerDegreeLng * cosLat)
		exact := math.Asin(sinRadial/cosLat) * 180 / math.Pi
		lngDelta = math.Max(flat, exact)
	} else {
		lngDelta = 360 // the circle wraps around a pole
	}

	b := Bounds{
		MinLat: center.Lat - latDelta,
		MaxLat: center.Lat + latDelta,
		MinLng: center.Lng - lngDelta,
		MaxLng: center.Lng + lngDelta,
	}

	if b.MinLat < -90 {
		b.MinLat = -90
	}
	if b.MaxLat > 90 {
		b.MaxLat = 90
	}
	// A box that touches a pole, or wraps in longitude, degenerates to the
	// full longitude range rather than splitting into two rectangles.
	if b.MinLng < -180 || b.MaxLng > 180 || b.MinLat == -90 || b.MaxLat == 90 {
		b.MinLng = -180
		b.MaxLng = 180
	}

	return b
}
