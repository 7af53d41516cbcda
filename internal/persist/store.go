// Package persist owns snapshot durability. The engine treats a Store as
// an opaque save/load pair keyed by user id: full snapshots only, no
// partial updates.
package persist

import (
	"context"
	"errors"

	"innerlevel/internal/player"
)

// ErrInvalidSnapshot marks a persisted snapshot that failed to decode.
// Callers substitute a known-good default state instead of failing.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

type Store interface {
	// Save durably stores a full snapshot for the user.
	Save(ctx context.Context, userID string, s player.State) error
	// Load returns the last stored snapshot, normalized, or ok=false if
	// none exists.
	Load(ctx context.Context, userID string) (player.State, bool, error)
	Close() error
}
