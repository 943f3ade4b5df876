package conversation

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned by SessionStore.Set when the stored version
// moved since the state was read. The caller lost a write race and should
// not persist blindly.
var ErrVersionConflict = errors.New("session version conflict")

// ErrStatsUnsupported is returned by SessionStore.Stats when the backend does
// not track statistics. It is an explicit optional capability, not something
// callers probe for.
var ErrStatsUnsupported = errors.New("session stats unsupported")

// StoreStats is optional telemetry about the session backend.
type StoreStats struct {
	ActiveSessions int64 `json:"active_sessions"`
}

// SessionStore persists per-user conversation state. Implementations are
// expected to apply a bounded retention window after which Get reports the
// user as absent even without an explicit Delete.
type SessionStore interface {
	// Get returns the state for userID, or (nil, nil) when absent/expired.
	Get(ctx context.Context, userID string) (*State, error)
	// Set persists state as a whole record. The write is optimistic: it
	// fails with ErrVersionConflict when the stored version differs from
	// state.Version, and bumps the version on success.
	Set(ctx context.Context, userID string, state *State) error
	// ResetToIdle replaces the record with a fresh idle state, data
	// cleared. Idempotent.
	ResetToIdle(ctx context.Context, userID string) error
	// Delete removes the record entirely. Idempotent.
	Delete(ctx context.Context, userID string) error
	// Stats reports backend telemetry, or ErrStatsUnsupported.
	Stats(ctx context.Context) (StoreStats, error)
}
