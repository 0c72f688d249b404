package entities

import (
	"fmt"
	"time"
)

// PresenceStatus is a typed string enum for a technician's current state.
// String values are used directly in JSON and in the durable store.
type PresenceStatus string

const (
	PresenceStatusOnline  PresenceStatus = "online"
	PresenceStatusPaused  PresenceStatus = "paused"
	PresenceStatusOffline PresenceStatus = "offline"
)

// PresenceRecord is the single current status+location record for one
// technician. It is upserted in place, never appended. Invariant: an offline
// record carries no session id; an online or paused record always carries the
// id of the technician's open session.
type PresenceRecord struct {
	TechnicianID    string         `json:"technician_id"`
	Status          PresenceStatus `json:"status"`
	Location        *GeoPoint      `json:"location,omitempty"`
	SessionID       string         `json:"session_id,omitempty"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DisplayName     string         `json:"display_name,omitempty"`
	AffiliationName string         `json:"affiliation_name,omitempty"`
}

// Validate enforces the status/session pairing invariant. Violations fail
// with ErrInvalidStateTransition — they are rejected, not coerced.
func (r *PresenceRecord) Validate() error {
	switch r.Status {
	case PresenceStatusOffline:
		if r.SessionID != "" {
			return fmt.Errorf("%w: offline presence must not reference a session", ErrInvalidStateTransition)
		}
	case PresenceStatusOnline, PresenceStatusPaused:
		if r.SessionID == "" {
			return fmt.Errorf("%w: %s presence requires an open session", ErrInvalidStateTransition, r.Status)
		}
	default:
		return fmt.Errorf("%w: unknown presence status %q", ErrInvalidStateTransition, r.Status)
	}
	if r.Location != nil {
		if err := r.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PresencePatch is a partial presence update. Nil fields are left untouched
// by the merge, so publishers never resend unchanged fields.
//
// Go Learning Note — Pointer Fields for Optionality:
// A plain string field can't distinguish "not sent" from "set to empty".
// Pointer fields make absence explicit: nil means "leave as is", a non-nil
// pointer (even to the zero value) means "overwrite". This replaces the
// object-spread merging a dynamic language would use with something the
// compiler can check.
type PresencePatch struct {
	Status          *PresenceStatus `json:"status,omitempty"`
	Location        *GeoPoint       `json:"location,omitempty"`
	SessionID       *string         `json:"session_id,omitempty"`
	DisplayName     *string         `json:"display_name,omitempty"`
	AffiliationName *string         `json:"affiliation_name,omitempty"`
}

// MergePresence applies patch on top of current and returns the resulting
// record. Pure function — neither argument is mutated. UpdatedAt is stamped
// by the caller, which owns write ordering.
func MergePresence(current PresenceRecord, patch PresencePatch) PresenceRecord {
	merged := current
	if patch.Status != nil {
		merged.Status = *patch.Status
	}
	if patch.Location != nil {
		loc := *patch.Location
		merged.Location = &loc
	}
	if patch.SessionID != nil {
		merged.SessionID = *patch.SessionID
	}
	if patch.DisplayName != nil {
		merged.DisplayName = *patch.DisplayName
	}
	if patch.AffiliationName != nil {
		merged.AffiliationName = *patch.AffiliationName
	}
	return merged
}

// Helper constructors for the pointer fields above.

func StatusPtr(s PresenceStatus) *PresenceStatus { return &s }
func StringPtr(s string) *string                 { return &s }
