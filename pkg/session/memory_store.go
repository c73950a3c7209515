package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. Suitable for
// tests and single-process deployments; production setups should use
// PGStore so sessions survive restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create deactivates the user's active sessions and inserts the new
// row under a single lock acquisition, which serves as the critical
// section required by the single-active-session invariant.
func (m *MemoryStore) Create(ctx context.Context, sess *Session) ([]string, error) {
	if sess == nil || sess.Token == "" {
		return nil, ErrInvalidToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var displaced []string
	for token, existing := range m.sessions {
		if existing.UserID == sess.UserID && existing.IsActive {
			existing.IsActive = false
			displaced = append(displaced, token)
		}
	}

	cp := *sess
	m.sessions[sess.Token] = &cp
	return displaced, nil
}

func (m *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[token]
	if !ok {
		return nil, ErrInvalidToken
	}

	cp := *sess
	return &cp, nil
}

func (m *MemoryStore) Invalidate(ctx context.Context, token string) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return nil, false, ErrInvalidToken
	}

	changed := sess.IsActive
	sess.IsActive = false

	cp := *sess
	return &cp, changed, nil
}

func (m *MemoryStore) Extend(ctx context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return ErrInvalidToken
	}
	if !sess.IsActive {
		return ErrSessionInactive
	}

	sess.ExpiresAt = expiresAt
	return nil
}

func (m *MemoryStore) MarkExpired(ctx context.Context, now time.Time) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []Session
	for _, sess := range m.sessions {
		if sess.IsActive && !now.Before(sess.ExpiresAt) {
			sess.IsActive = false
			expired = append(expired, *sess)
		}
	}
	return expired, nil
}

func (m *MemoryStore) ActiveSessions(ctx context.Context, now time.Time) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []Session
	for _, sess := range m.sessions {
		if sess.IsActive && now.Before(sess.ExpiresAt) {
			active = append(active, *sess)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active, nil
}

// Len returns the total number of rows, active or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
