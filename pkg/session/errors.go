package session

import "errors"

var (
	// ErrInvalidToken indicates the token is unknown to the store.
	ErrInvalidToken = errors.New("session.invalid_token")

	// ErrSessionExpired indicates the session is past its expiry time.
	ErrSessionExpired = errors.New("session.expired")

	// ErrSessionInactive indicates the session was explicitly invalidated.
	ErrSessionInactive = errors.New("session.inactive")

	// ErrStoreUnavailable indicates the durable store is unreachable.
	// Fatal for the operation; never mistaken for a valid session.
	ErrStoreUnavailable = errors.New("session.store_unavailable")

	// ErrTokenGeneration indicates token generation failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")
)
