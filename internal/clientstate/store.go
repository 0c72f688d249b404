// Package clientstate persists the device-resident session controller state.
// The state is owned by the device, not the backend: it is what lets a page
// or process restart resume an in-progress shift instead of losing it.
//
// Keys are technician identities. A device may start tracking before login
// completes, so state written under AnonymousKey is migrated to the
// technician's key once identity resolves — an explicit one-shot Migrate
// operation rather than ad-hoc key juggling in UI code.
package clientstate

import "context"

// AnonymousKey is the slot used before the technician's identity is known.
const AnonymousKey = "anonymous"

// State is the persisted controller state. Zero value means "fresh device,
// tracking disabled".
type State struct {
	Enabled   bool   `json:"enabled"`
	Paused    bool   `json:"paused"`
	SessionID string `json:"session_id,omitempty"`
}

// Store is durable key-value storage surviving process restarts.
type Store interface {
	// Load returns the state for key and whether any state was stored.
	Load(ctx context.Context, key string) (State, bool, error)
	// Save replaces the state for key.
	Save(ctx context.Context, key string, state State) error
	// Clear removes the state for key. Clearing a missing key is a no-op.
	Clear(ctx context.Context, key string) error
	// Migrate moves the state stored under fromKey to toKey and clears
	// fromKey. When fromKey holds nothing, the call is a no-op; existing
	// state under toKey is only overwritten when fromKey had state.
	Migrate(ctx context.Context, fromKey, toKey string) error
}
