package store

import (
	"context"
	"time"
)

// SessionStore persists serialized game session snapshots.
// Implementations treat the snapshot as an opaque document; the game
// package owns its encoding.
type SessionStore interface {
	// Save inserts or replaces the snapshot stored under id and records
	// lastActivity for idle-session queries.
	Save(ctx context.Context, id string, data []byte, lastActivity time.Time) error

	// Load returns the snapshot stored under id.
	// Returns ErrSessionNotFound if no snapshot exists.
	Load(ctx context.Context, id string) ([]byte, error)

	// Delete removes the snapshot stored under id.
	// Returns ErrSessionNotFound if no snapshot exists.
	Delete(ctx context.Context, id string) error

	// DeleteMany removes every listed snapshot in a single transaction and
	// reports how many rows were removed. Unknown IDs are ignored.
	DeleteMany(ctx context.Context, ids []string) (int, error)

	// ListIdle returns the IDs of sessions whose last activity is strictly
	// before olderThan.
	ListIdle(ctx context.Context, olderThan time.Time) ([]string, error)

	// ListIDs returns the IDs of all stored sessions, ordered by ID.
	ListIDs(ctx context.Context) ([]string, error)
}
