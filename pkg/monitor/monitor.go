package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/learntrack/learnkit/pkg/activity"
	"github.com/learntrack/learnkit/pkg/session"
)

// Invalidator is the slice of the session manager the monitor needs
// for admin-initiated forced logouts.
type Invalidator interface {
	InvalidateSession(ctx context.Context, token string, reason session.Reason) error
}

// ActiveSession is a session row joined with user identity for the
// admin dashboard.
type ActiveSession struct {
	session.Session
	Username string `json:"username"`
	Level    int    `json:"level"`
	Points   int    `json:"points"`
	IsAdmin  bool   `json:"is_admin"`
}

// Monitor is a read-only composition over the session store and the
// activity reader.
type Monitor struct {
	store       session.Store
	users       session.UserDirectory
	reader      *activity.Reader
	invalidator Invalidator
	now         func() time.Time
	log         *slog.Logger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger for degraded identity lookups.
func WithLogger(log *slog.Logger) Option {
	return func(m *Monitor) {
		if log != nil {
			m.log = log
		}
	}
}

// New creates an admin session monitor.
func New(store session.Store, users session.UserDirectory, reader *activity.Reader, invalidator Invalidator, opts ...Option) *Monitor {
	if store == nil {
		panic("monitor: session store cannot be nil")
	}
	if reader == nil {
		panic("monitor: activity reader cannot be nil")
	}
	if invalidator == nil {
		panic("monitor: invalidator cannot be nil")
	}

	m := &Monitor{
		store:       store,
		users:       users,
		reader:      reader,
		invalidator: invalidator,
		now:         func() time.Time { return time.Now().UTC() },
		log:         slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// ActiveSessions lists all currently active sessions joined with user
// identity. A failed directory lookup degrades to the bare session row
// rather than dropping it from the listing.
func (m *Monitor) ActiveSessions(ctx context.Context) ([]ActiveSession, error) {
	sessions, err := m.store.ActiveSessions(ctx, m.now())
	if err != nil {
		return nil, err
	}

	active := make([]ActiveSession, 0, len(sessions))
	for _, sess := range sessions {
		row := ActiveSession{Session: sess}
		if m.users != nil {
			if user, err := m.users.Find(ctx, sess.UserID); err == nil {
				row.Username = user.Username
				row.Level = user.Level
				row.Points = user.Points
				row.IsAdmin = user.IsAdmin
			} else {
				m.log.DebugContext(ctx, "identity lookup failed for active session",
					"user_id", sess.UserID, "error", err)
			}
		}
		active = append(active, row)
	}

	return active, nil
}

// ActivityHistogram returns event counts grouped by type within the
// reader's trailing window. Fails soft to an empty map.
func (m *Monitor) ActivityHistogram(ctx context.Context) map[activity.Type]int64 {
	return m.reader.CountsByType(ctx)
}

// DailyLogins returns the per-day login series. Fails soft to empty.
func (m *Monitor) DailyLogins(ctx context.Context) []activity.DailyCount {
	return m.reader.DailyLogins(ctx)
}

// LoginsToday returns today's login count. Fails soft to zero.
func (m *Monitor) LoginsToday(ctx context.Context) int64 {
	return m.reader.LoginsToday(ctx)
}

// ForceLogout terminates a session on behalf of an administrator.
func (m *Monitor) ForceLogout(ctx context.Context, token string) error {
	return m.invalidator.InvalidateSession(ctx, token, session.ReasonAdminAction)
}
