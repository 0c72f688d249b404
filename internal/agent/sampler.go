// Package agent contains the device-resident half of the location subsystem:
// the session controller state machine and the location publisher that turn
// a technician's device into an intermittent location beacon.
package agent

import (
	"context"

	"fieldtrack/internal/domain/entities"
)

// Sampler is the device geolocation capability, injected into the publisher
// so tests can fake it. A sampler that cannot produce a location this cycle
// returns an error wrapping ErrSampleUnavailable; the publisher skips the
// cycle and tries again next tick.
type Sampler interface {
	Sample(ctx context.Context) (entities.GeoPoint, error)
}

// SamplerFunc adapts a plain function to the Sampler interface.
type SamplerFunc func(ctx context.Context) (entities.GeoPoint, error)

func (f SamplerFunc) Sample(ctx context.Context) (entities.GeoPoint, error) {
	return f(ctx)
}
