// Package repository defines the durable-store boundary of the location
// subsystem. The core never depends on a specific store technology — the
// memory package backs tests and single-process deployments, the sqlite
// package backs durable ones, and both satisfy these interfaces.
package repository

import (
	"context"
	"time"

	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/geo"
)

// SessionRepository persists technician shifts. Sessions are created open
// and closed exactly once.
type SessionRepository interface {
	Create(ctx context.Context, session *entities.Session) error
	GetByID(ctx context.Context, id string) (*entities.Session, error)
	// GetOpenByTechnician returns the technician's open session, or
	// ErrNotFound when no shift is in progress.
	GetOpenByTechnician(ctx context.Context, technicianID string) (*entities.Session, error)
	// Close stamps EndedAt. Closing an already-closed session is a no-op.
	Close(ctx context.Context, id string, at time.Time) error
}

// PresenceRepository holds the latest presence record per technician,
// replaced whole on every write (last accepted write wins — no field-level
// interleaving of concurrent writers). It doubles as the candidate source
// for nearby-technician queries: InBounds offers every non-offline record
// with a location inside the bounds.
type PresenceRepository interface {
	Upsert(ctx context.Context, record *entities.PresenceRecord) error
	Get(ctx context.Context, technicianID string) (*entities.PresenceRecord, error)
	ListAll(ctx context.Context) ([]*entities.PresenceRecord, error)
	InBounds(ctx context.Context, b geo.Bounds) ([]geo.Candidate, error)
}

// TrackRepository is the append-only track log. Points are keyed by
// (technician, session); reads come back ordered by CapturedAt ascending
// with insertion order breaking ties.
type TrackRepository interface {
	Append(ctx context.Context, point *entities.TrackPoint) error
	Points(ctx context.Context, technicianID, sessionID string) ([]*entities.TrackPoint, error)
}

// ProviderRepository is the service-provider registry searched by the
// nearby-provider queries.
type ProviderRepository interface {
	Put(ctx context.Context, provider *entities.Provider) error
	GetByID(ctx context.Context, id string) (*entities.Provider, error)
	ListAll(ctx context.Context) ([]*entities.Provider, error)
	InBounds(ctx context.Context, b geo.Bounds) ([]geo.Candidate, error)
}
