package session

import (
	"time"

	"github.com/google/uuid"
)

// State describes the lifecycle position of a session. Expired and
// Invalidated are terminal: no transition leads back to Active.
type State string

const (
	StateActive      State = "active"
	StateExpired     State = "expired"
	StateInvalidated State = "invalidated"
)

// Session is a single row in the session store. Rows are never
// physically deleted; invalidated and expired rows remain for audit.
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
}

// StateAt derives the lifecycle state at the given instant. An active
// row past its expiry is Expired even before the lazy flip has been
// persisted; an inactive row past expiry also reports Expired so that
// repeated validations of an expired token stay consistent.
func (s *Session) StateAt(now time.Time) State {
	if !now.Before(s.ExpiresAt) {
		return StateExpired
	}
	if !s.IsActive {
		return StateInvalidated
	}
	return StateActive
}

// Reason tags an explicit invalidation for the audit trail.
type Reason string

const (
	ReasonLogout      Reason = "logout"
	ReasonNewLogin    Reason = "new_login"
	ReasonAdminAction Reason = "admin_action"
)
