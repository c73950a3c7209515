package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/learntrack/learnkit/pkg/activity"
	"github.com/learntrack/learnkit/pkg/cache"
)

// Manager orchestrates the session lifecycle against a durable store,
// drives the cache as a side effect of store writes, and appends
// best-effort activity events. It exclusively owns the is_active
// transition logic.
type Manager struct {
	store    Store
	cache    Cache
	users    UserDirectory
	recorder activity.Recorder
	config   Config
	now      func() time.Time
	log      *slog.Logger

	// pageSeen rate-limits page_access events per token.
	pageSeen *cache.LRU[string, time.Time]

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a session manager. A user directory is required; the
// store defaults to in-memory and the cache to a bounded LRU.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		now:    func() time.Time { return time.Now().UTC() },
		log:    slog.Default(),
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.users == nil {
		// Fail fast: validation cannot produce a UserContext without
		// an identity source.
		panic("session: user directory is required")
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.cache == nil {
		m.cache = NewLRUCache(m.config.CacheSize)
	}

	m.pageSeen = cache.New[string, time.Time](m.config.CacheSize)

	if m.config.SweepInterval > 0 {
		go m.sweepLoop(m.config.SweepInterval)
	}

	return m
}

// CreateSession issues a fresh opaque token for a user whose
// credentials were already verified by the auth collaborator. Any
// previously active session for the user is invalidated in the same
// transaction, enforcing the single-active-session policy. The cache
// write happens only after the store write succeeds: the store is the
// commit point.
func (m *Manager) CreateSession(ctx context.Context, userID uuid.UUID, ip, userAgent string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := m.now()
	sess := &Session{
		Token:     token,
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(m.config.TTL),
		IsActive:  true,
	}

	displaced, err := m.store.Create(ctx, sess)
	if err != nil {
		return "", err
	}

	for _, old := range displaced {
		m.cache.Remove(ctx, old)
		m.pageSeen.Delete(old)
		m.record(ctx, userID, activity.TypeSessionInvalidated, ip, userAgent,
			map[string]any{"reason": string(ReasonNewLogin)})
	}

	m.cache.Put(ctx, sess)
	m.record(ctx, userID, activity.TypeSessionCreated, ip, userAgent, nil)

	return token, nil
}

// ValidateSession resolves a token to the requesting user's context.
// Cache-aside: the cache is consulted first, a miss falls back to the
// store and repopulates it. Expiry is detected lazily here; expired
// and invalidated sessions are terminal.
func (m *Manager) ValidateSession(ctx context.Context, token string) (*UserContext, error) {
	sess, err := m.lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	now := m.now()
	switch sess.StateAt(now) {
	case StateExpired:
		m.expire(ctx, sess)
		return nil, ErrSessionExpired
	case StateInvalidated:
		m.cache.Remove(ctx, token)
		return nil, ErrSessionInactive
	}

	user, err := m.users.Find(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	m.recordPageAccess(ctx, sess, now)

	return &UserContext{
		UserID:    user.ID,
		Username:  user.Username,
		Level:     user.Level,
		Points:    user.Points,
		IsAdmin:   user.IsAdmin,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// InvalidateSession terminates a session. Idempotent: an already
// inactive or unknown token is a no-op, not an error.
func (m *Manager) InvalidateSession(ctx context.Context, token string, reason Reason) error {
	if token == "" {
		return nil
	}

	sess, changed, err := m.store.Invalidate(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil
		}
		return err
	}

	m.cache.Remove(ctx, token)
	m.pageSeen.Delete(token)

	if changed {
		m.record(ctx, sess.UserID, activity.TypeSessionInvalidated, sess.IPAddress, sess.UserAgent,
			map[string]any{"reason": string(reason)})
	}

	return nil
}

// ExtendSession moves an active session's expiry to now + TTL.
// Sliding-window renewal is deliberate and explicit: it never happens
// implicitly on validation, and a terminated session is never
// resurrected.
func (m *Manager) ExtendSession(ctx context.Context, token string) (time.Time, error) {
	sess, err := m.lookup(ctx, token)
	if err != nil {
		return time.Time{}, err
	}

	now := m.now()
	switch sess.StateAt(now) {
	case StateExpired:
		m.expire(ctx, sess)
		return time.Time{}, ErrSessionExpired
	case StateInvalidated:
		m.cache.Remove(ctx, token)
		return time.Time{}, ErrSessionInactive
	}

	expiresAt := now.Add(m.config.TTL)
	if err := m.store.Extend(ctx, token, expiresAt); err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrSessionInactive) {
			// Lost a race with an invalidation; the cached copy is stale.
			m.cache.Remove(ctx, token)
			return time.Time{}, ErrSessionInactive
		}
		return time.Time{}, err
	}

	extended := *sess
	extended.ExpiresAt = expiresAt
	m.cache.Put(ctx, &extended)

	return expiresAt, nil
}

// Sweep proactively flips expired rows so admin aggregates stay
// accurate between validations. Optional: the validation path detects
// expiry on its own.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	expired, err := m.store.MarkExpired(ctx, m.now())
	if err != nil {
		return 0, err
	}

	for i := range expired {
		sess := &expired[i]
		m.cache.Remove(ctx, sess.Token)
		m.pageSeen.Delete(sess.Token)
		m.record(ctx, sess.UserID, activity.TypeSessionExpired, sess.IPAddress, sess.UserAgent, nil)
	}

	return len(expired), nil
}

// Close stops the background sweeper, if enabled.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	return nil
}

// lookup resolves a token via cache, then store. A store hit
// repopulates the cache regardless of session state; the state check
// happens at the caller so expired entries still get their lazy flip.
func (m *Manager) lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	if sess, ok := m.cache.Get(ctx, token); ok {
		return sess, nil
	}

	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	m.cache.Put(ctx, sess)
	return sess, nil
}

// expire performs the lazy expiry transition: persist the flip, evict,
// record. A store failure here still leaves the result invalid for the
// caller, so it is logged rather than escalated.
func (m *Manager) expire(ctx context.Context, sess *Session) {
	if sess.IsActive {
		if _, _, err := m.store.Invalidate(ctx, sess.Token); err != nil && !errors.Is(err, ErrInvalidToken) {
			m.log.WarnContext(ctx, "failed to persist lazy expiry", "error", err)
		}
		m.record(ctx, sess.UserID, activity.TypeSessionExpired, sess.IPAddress, sess.UserAgent, nil)
	}
	m.cache.Remove(ctx, sess.Token)
	m.pageSeen.Delete(sess.Token)
}

// recordPageAccess appends a page_access event, at most once per
// PageAccessInterval per token. Sampling bounds audit write volume on
// the hot path; it is an optimization, not a correctness requirement.
func (m *Manager) recordPageAccess(ctx context.Context, sess *Session, now time.Time) {
	if m.config.PageAccessInterval > 0 {
		if last, ok := m.pageSeen.Get(sess.Token); ok && now.Sub(last) < m.config.PageAccessInterval {
			return
		}
		m.pageSeen.Put(sess.Token, now)
	}
	m.record(ctx, sess.UserID, activity.TypePageAccess, sess.IPAddress, sess.UserAgent, nil)
}

// record appends an activity event, best-effort. The recorder never
// blocks or errors; a nil recorder disables the audit trail entirely.
func (m *Manager) record(ctx context.Context, userID uuid.UUID, typ activity.Type, ip, userAgent string, metadata map[string]any) {
	if m.recorder == nil {
		return
	}
	m.recorder.Record(ctx, activity.Event{
		UserID:    userID,
		Type:      typ,
		IPAddress: ip,
		UserAgent: userAgent,
		Metadata:  metadata,
		CreatedAt: m.now(),
	})
}

func (m *Manager) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.Sweep(context.Background()); err != nil {
				m.log.Warn("session sweep failed", "error", err)
			}
		case <-m.done:
			return
		}
	}
}
