package session

import (
	"context"
	"time"
)

// Store is the durable record of sessions and the source of truth for
// all session state. Implementations must normalize the storage-level
// representation of is_active to a Go bool at the scan boundary.
type Store interface {
	// Create atomically deactivates every active session belonging to
	// the new session's user, then inserts the new row. The two steps
	// must execute as a single transaction or equivalent critical
	// section so that concurrent logins by the same user cannot leave
	// two active rows. Returns the tokens that were displaced.
	Create(ctx context.Context, sess *Session) (displaced []string, err error)

	// Get retrieves a session by token. Returns ErrInvalidToken when
	// the token is unknown to the store.
	Get(ctx context.Context, token string) (*Session, error)

	// Invalidate sets is_active to false if currently true. The bool
	// reports whether state actually changed, making repeat calls
	// detectable without being errors. Returns ErrInvalidToken for
	// unknown tokens.
	Invalidate(ctx context.Context, token string) (*Session, bool, error)

	// Extend moves expires_at forward, conditional on the session
	// still being active. Returns ErrSessionInactive when the row is
	// no longer active.
	Extend(ctx context.Context, token string, expiresAt time.Time) error

	// MarkExpired flips every active row whose expiry has passed and
	// returns the affected sessions. Supports the optional sweep.
	MarkExpired(ctx context.Context, now time.Time) ([]Session, error)

	// ActiveSessions lists sessions that are active and not yet past
	// expiry, most recent first.
	ActiveSessions(ctx context.Context, now time.Time) ([]Session, error)
}
