package activity

import "errors"

var (
	// ErrStorageUnavailable indicates the event storage is unreachable.
	ErrStorageUnavailable = errors.New("activity.storage_unavailable")

	// ErrInvalidEvent indicates the event is missing required fields.
	ErrInvalidEvent = errors.New("activity.invalid_event")
)
