package entities

import (
	"fmt"
	"math"
)

// GeoPoint is a geographic coordinate pair.
//
// Go Learning Note — Value Types vs Reference Types:
// GeoPoint is a small, immutable data holder passed by value (16 bytes, two
// float64s). Larger mutable structs in this package (Session, PresenceRecord)
// are passed as pointers so mutations are visible to all holders.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewGeoPoint creates a GeoPoint value from latitude and longitude.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Lat: lat, Lng: lng}
}

// Validate checks that both components are finite and within range:
// latitude in [-90, 90], longitude in [-180, 180]. Out-of-range coordinates
// fail with ErrInvalidLocation — they are never silently clamped.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("%w: coordinates must be finite", ErrInvalidLocation)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidLocation, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidLocation, p.Lng)
	}
	return nil
}
