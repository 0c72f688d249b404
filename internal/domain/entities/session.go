// Package entities defines the core domain models for the field-technician
// location subsystem. These structs represent the business concepts (GeoPoint,
// Session, PresenceRecord, TrackPoint) and live in the innermost layer of the
// architecture — they have no dependencies on databases, HTTP, or external
// services.
package entities

import "time"

// Session is one continuous online shift for a technician, bounded by
// go-online and end-shift. EndedAt is nil while the shift is open and is set
// exactly once when it ends. A technician has at most one open session at a
// time; opening a new one supersedes any stale open session left behind by a
// crashed client.
type Session struct {
	ID           string     `json:"session_id"`
	TechnicianID string     `json:"technician_id"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

// NewSession creates an open Session starting now.
func NewSession(id, technicianID string) *Session {
	return &Session{
		ID:           id,
		TechnicianID: technicianID,
		StartedAt:    time.Now(),
	}
}

// Open reports whether the shift is still in progress.
func (s *Session) Open() bool {
	return s.EndedAt == nil
}

// Close stamps the end of the shift. Closing an already-closed session is a
// no-op so that end-shift stays idempotent; EndedAt is never overwritten.
func (s *Session) Close(at time.Time) {
	if s.EndedAt != nil {
		return
	}
	ended := at
	s.EndedAt = &ended
}
