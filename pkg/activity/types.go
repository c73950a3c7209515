package activity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type classifies a session lifecycle event.
type Type string

const (
	TypeSessionCreated     Type = "session_created"
	TypePageAccess         Type = "page_access"
	TypeSessionInvalidated Type = "session_invalidated"
	TypeSessionExpired     Type = "session_expired"
)

// Event is a single audit record. Events are append-only: never
// mutated or deleted once written.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Type      Type           `json:"activity_type"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate checks the event has the required fields.
func (e *Event) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("%w: activity type is required", ErrInvalidEvent)
	}
	return nil
}

// DailyCount is one bucket of the per-day login series. Day is
// truncated to midnight UTC.
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}
