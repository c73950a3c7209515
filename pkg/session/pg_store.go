package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on PostgreSQL via pgxpool. All transport
// failures are joined with ErrStoreUnavailable so callers can separate
// infrastructure faults from session-state results.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed session store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("session: pg store requires a connection pool")
	}
	return &PGStore{pool: pool}
}

// Create runs the invalidate-then-insert sequence in one transaction.
// The UPDATE also heals any duplicate active rows left by external
// interference: the newest session always wins.
func (s *PGStore) Create(ctx context.Context, sess *Session) ([]string, error) {
	if sess == nil || sess.Token == "" {
		return nil, ErrInvalidToken
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	rows, err := tx.Query(ctx,
		`UPDATE sessions SET is_active = FALSE
		 WHERE user_id = $1 AND is_active
		 RETURNING session_token`,
		sess.UserID)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	displaced, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO sessions (session_token, user_id, ip_address, user_agent, created_at, expires_at, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE)`,
		sess.Token, sess.UserID, sess.IPAddress, sess.UserAgent, sess.CreatedAt, sess.ExpiresAt); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return displaced, nil
}

func (s *PGStore) Get(ctx context.Context, token string) (*Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx,
		`SELECT session_token, user_id, ip_address, user_agent, created_at, expires_at, is_active
		 FROM sessions WHERE session_token = $1`,
		token).Scan(&sess.Token, &sess.UserID, &sess.IPAddress, &sess.UserAgent,
		&sess.CreatedAt, &sess.ExpiresAt, &sess.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return &sess, nil
}

func (s *PGStore) Invalidate(ctx context.Context, token string) (*Session, bool, error) {
	var sess Session
	sess.Token = token

	// Conditional update: a returned row means the session was active.
	err := s.pool.QueryRow(ctx,
		`UPDATE sessions SET is_active = FALSE
		 WHERE session_token = $1 AND is_active
		 RETURNING user_id, ip_address, user_agent, created_at, expires_at`,
		token).Scan(&sess.UserID, &sess.IPAddress, &sess.UserAgent, &sess.CreatedAt, &sess.ExpiresAt)
	if err == nil {
		return &sess, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, errors.Join(ErrStoreUnavailable, err)
	}

	// Already inactive or unknown; Get distinguishes the two.
	existing, err := s.Get(ctx, token)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *PGStore) Extend(ctx context.Context, token string, expiresAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET expires_at = $2
		 WHERE session_token = $1 AND is_active`,
		token, expiresAt)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionInactive
	}
	return nil
}

func (s *PGStore) MarkExpired(ctx context.Context, now time.Time) ([]Session, error) {
	rows, err := s.pool.Query(ctx,
		`UPDATE sessions SET is_active = FALSE
		 WHERE is_active AND expires_at <= $1
		 RETURNING session_token, user_id, ip_address, user_agent, created_at, expires_at, is_active`,
		now)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	expired, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Session])
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return expired, nil
}

func (s *PGStore) ActiveSessions(ctx context.Context, now time.Time) ([]Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT session_token, user_id, ip_address, user_agent, created_at, expires_at, is_active
		 FROM sessions
		 WHERE is_active AND expires_at > $1
		 ORDER BY created_at DESC`,
		now)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	active, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Session])
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return active, nil
}
