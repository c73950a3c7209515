package activity

import (
	"context"
	"log/slog"
	"time"
)

// DefaultWindow is the trailing period covered by aggregates.
const DefaultWindow = 7 * 24 * time.Hour

// Reader serves the aggregate queries behind admin dashboards. Every
// method fails soft: when the event storage is unavailable it returns
// an empty result and logs, because monitoring data is advisory.
type Reader struct {
	storage Storage
	window  time.Duration
	log     *slog.Logger
	now     func() time.Time
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithWindow sets the trailing aggregation window (default 7 days).
func WithWindow(d time.Duration) ReaderOption {
	return func(r *Reader) {
		if d > 0 {
			r.window = d
		}
	}
}

// WithReaderLogger sets the logger for suppressed storage failures.
func WithReaderLogger(log *slog.Logger) ReaderOption {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// WithReaderClock overrides the time source, mainly for tests.
func WithReaderClock(now func() time.Time) ReaderOption {
	return func(r *Reader) {
		if now != nil {
			r.now = now
		}
	}
}

// NewReader creates a Reader over the given storage.
func NewReader(storage Storage, opts ...ReaderOption) *Reader {
	if storage == nil {
		panic("activity: storage cannot be nil")
	}

	r := &Reader{
		storage: storage,
		window:  DefaultWindow,
		log:     slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// CountsByType returns event counts grouped by type within the
// trailing window.
func (r *Reader) CountsByType(ctx context.Context) map[Type]int64 {
	counts, err := r.storage.CountByType(ctx, r.now().Add(-r.window))
	if err != nil {
		r.log.WarnContext(ctx, "activity histogram unavailable", "error", err)
		return map[Type]int64{}
	}
	return counts
}

// DailyLogins returns session_created counts per calendar day within
// the trailing window.
func (r *Reader) DailyLogins(ctx context.Context) []DailyCount {
	days, err := r.storage.CountPerDay(ctx, TypeSessionCreated, r.now().Add(-r.window))
	if err != nil {
		r.log.WarnContext(ctx, "daily login series unavailable", "error", err)
		return []DailyCount{}
	}
	return days
}

// LoginsToday derives today's login count from the per-day aggregate.
func (r *Reader) LoginsToday(ctx context.Context) int64 {
	now := r.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	days, err := r.storage.CountPerDay(ctx, TypeSessionCreated, today)
	if err != nil {
		r.log.WarnContext(ctx, "today's login count unavailable", "error", err)
		return 0
	}

	for _, d := range days {
		if d.Day.Equal(today) {
			return d.Count
		}
	}
	return 0
}
