package activity

import (
	"context"
	"time"
)

// Storage persists activity events and serves the aggregates. The
// event log has no effect on session state; implementations only need
// append and group-by reads.
type Storage interface {
	// Append writes one event.
	Append(ctx context.Context, event Event) error

	// CountByType counts events grouped by type, recorded at or after
	// the given instant.
	CountByType(ctx context.Context, since time.Time) (map[Type]int64, error)

	// CountPerDay counts events of one type grouped by calendar day
	// (UTC), recorded at or after the given instant, ordered by day.
	CountPerDay(ctx context.Context, typ Type, since time.Time) ([]DailyCount, error)
}
