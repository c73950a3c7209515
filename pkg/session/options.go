package session

import (
	"log/slog"
	"time"

	"github.com/learntrack/learnkit/pkg/activity"
)

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets the durable session store (default: in-memory).
func WithStore(store Store) Option {
	return func(m *Manager) {
		if store != nil {
			m.store = store
		}
	}
}

// WithCache sets the session cache (default: bounded in-process LRU).
func WithCache(cache Cache) Option {
	return func(m *Manager) {
		if cache != nil {
			m.cache = cache
		}
	}
}

// WithUserDirectory sets the read-only user identity source joined at
// validation time. Required.
func WithUserDirectory(users UserDirectory) Option {
	return func(m *Manager) {
		m.users = users
	}
}

// WithRecorder sets the activity recorder for the audit trail.
// Optional: without one, no events are recorded.
func WithRecorder(recorder activity.Recorder) Option {
	return func(m *Manager) {
		m.recorder = recorder
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.config = cfg
	}
}

// WithClock overrides the UTC time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger for recovered best-effort failures.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}
