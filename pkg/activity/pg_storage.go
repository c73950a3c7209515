package activity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStorage persists events in PostgreSQL. Failures are joined with
// ErrStorageUnavailable; the Recorder and Reader above decide how to
// degrade (drop the write, return an empty aggregate).
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates a PostgreSQL-backed event storage.
func NewPGStorage(pool *pgxpool.Pool) *PGStorage {
	if pool == nil {
		panic("activity: pg storage requires a connection pool")
	}
	return &PGStorage{pool: pool}
}

func (s *PGStorage) Append(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO activity_events (id, user_id, activity_type, ip_address, user_agent, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.UserID, string(event.Type), event.IPAddress, event.UserAgent,
		event.Metadata, event.CreatedAt)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PGStorage) CountByType(ctx context.Context, since time.Time) (map[Type]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT activity_type, COUNT(*)
		 FROM activity_events
		 WHERE created_at >= $1
		 GROUP BY activity_type`,
		since)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer rows.Close()

	counts := make(map[Type]int64)
	for rows.Next() {
		var typ string
		var count int64
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, errors.Join(ErrStorageUnavailable, err)
		}
		counts[Type(typ)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return counts, nil
}

func (s *PGStorage) CountPerDay(ctx context.Context, typ Type, since time.Time) ([]DailyCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, COUNT(*)
		 FROM activity_events
		 WHERE activity_type = $1 AND created_at >= $2
		 GROUP BY day
		 ORDER BY day`,
		string(typ), since)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	days, err := pgx.CollectRows(rows, pgx.RowToStructByPos[DailyCount])
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return days, nil
}
