package entities

import "errors"

// Sentinel errors shared across the location subsystem. Callers match them
// with errors.Is after layers wrap them with fmt.Errorf and %w.
var (
	// ErrInvalidFormat reports a malformed coordinate string or query input.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidLocation reports coordinates outside the valid lat/lng ranges.
	// Out-of-range values are rejected, never clamped.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidStateTransition reports a presence or session write that would
	// violate the status/session pairing invariant.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrSampleUnavailable reports that the device could not produce a
	// location this cycle. Recoverable — the publisher retries next tick.
	ErrSampleUnavailable = errors.New("location sample unavailable")

	// ErrStoreUnavailable reports a failed backing-store read or write.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound reports a missing session, presence record, or provider.
	ErrNotFound = errors.New("not found")
)
