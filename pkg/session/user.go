package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the read-only identity record joined at validation time.
// The user directory is owned by an external collaborator; this
// package never mutates user records.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Level    int       `json:"level"`
	Points   int       `json:"points"`
	IsAdmin  bool      `json:"is_admin"`
}

// UserDirectory resolves user identity for validated sessions.
type UserDirectory interface {
	Find(ctx context.Context, id uuid.UUID) (*User, error)
}

// UserContext is the result of a successful validation: the session's
// user joined with identity data, handed to the request pipeline.
type UserContext struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Level     int       `json:"level"`
	Points    int       `json:"points"`
	IsAdmin   bool      `json:"is_admin"`
	ExpiresAt time.Time `json:"expires_at"`
}
