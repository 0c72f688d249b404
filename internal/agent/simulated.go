package agent

import (
	"context"
	"math/rand"
	"sync"

	"fieldtrack/internal/domain/entities"
)

// SimulatedSampler is a stand-in for real device geolocation: a random walk
// from a starting point, with an optional dropout rate to exercise the
// publisher's skip-a-cycle path. Used by the demo agent binary and tests.
type SimulatedSampler struct {
	mu          sync.Mutex
	current     entities.GeoPoint
	stepDeg     float64
	dropoutRate float64
	rng         *rand.Rand
}

// NewSimulatedSampler starts a walk at start. stepDeg is the maximum
// coordinate change per sample in degrees (0.0005 ≈ 50 m); dropoutRate in
// [0,1) is the fraction of samples that fail with ErrSampleUnavailable.
func NewSimulatedSampler(start entities.GeoPoint, stepDeg, dropoutRate float64, seed int64) *SimulatedSampler {
	return &SimulatedSampler{
		current:     start,
		stepDeg:     stepDeg,
		dropoutRate: dropoutRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (s *SimulatedSampler) Sample(_ context.Context) (entities.GeoPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dropoutRate > 0 && s.rng.Float64() < s.dropoutRate {
		return entities.GeoPoint{}, entities.ErrSampleUnavailable
	}

	s.current.Lat += (s.rng.Float64()*2 - 1) * s.stepDeg
	s.current.Lng += (s.rng.Float64()*2 - 1) * s.stepDeg
	if err := s.current.Validate(); err != nil {
		// Walked off the map edge; park at the edge rather than emit garbage.
		s.current = clampPoint(s.current)
	}
	return s.current, nil
}

func clampPoint(p entities.GeoPoint) entities.GeoPoint {
	if p.Lat > 90 {
		p.Lat = 90
	}
	if p.Lat < -90 {
		p.Lat = -90
	}
	if p.Lng > 180 {
		p.Lng = 180
	}
	if p.Lng < -180 {
		p.Lng = -180
	}
	return p
}
