package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learntrack/learnkit/pkg/activity"
	"github.com/learntrack/learnkit/pkg/session"
)

// fakeClock is a manually advanced UTC time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start.UTC()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeDirectory is an in-memory user directory.
type fakeDirectory struct {
	users map[uuid.UUID]session.User
}

func (d *fakeDirectory) Find(ctx context.Context, id uuid.UUID) (*session.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &u, nil
}

// syncRecorder persists events inline so tests can assert on them
// without waiting for a background worker.
type syncRecorder struct {
	storage *activity.MemoryStorage
}

func (r *syncRecorder) Record(ctx context.Context, event activity.Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	_ = r.storage.Append(ctx, event)
}

type testEnv struct {
	mgr     *session.Manager
	clock   *fakeClock
	cache   *session.LRUCache
	store   *session.MemoryStore
	events  *activity.MemoryStorage
	userID  uuid.UUID
	adminID uuid.UUID
}

func setupManager(t *testing.T, cfg session.Config) *testEnv {
	t.Helper()

	env := &testEnv{
		clock:   newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		cache:   session.NewLRUCache(128),
		store:   session.NewMemoryStore(),
		events:  activity.NewMemoryStorage(),
		userID:  uuid.New(),
		adminID: uuid.New(),
	}

	dir := &fakeDirectory{users: map[uuid.UUID]session.User{
		env.userID:  {ID: env.userID, Username: "gopher", Level: 3, Points: 420},
		env.adminID: {ID: env.adminID, Username: "root", Level: 9, Points: 9000, IsAdmin: true},
	}}

	env.mgr = session.New(
		session.WithStore(env.store),
		session.WithCache(env.cache),
		session.WithUserDirectory(dir),
		session.WithRecorder(&syncRecorder{storage: env.events}),
		session.WithConfig(cfg),
		session.WithClock(env.clock.Now),
	)
	t.Cleanup(func() { _ = env.mgr.Close() })

	return env
}

func testConfig() session.Config {
	return session.Config{
		TTL:                time.Hour,
		CacheSize:          128,
		PageAccessInterval: 0, // record every validation unless a test opts in
		SweepInterval:      0,
	}
}

func eventsOfType(events []activity.Event, typ activity.Type) []activity.Event {
	var out []activity.Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestManager_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("issues unique high-entropy tokens", func(t *testing.T) {
		env := setupManager(t, testConfig())

		seen := make(map[string]bool)
		for range 50 {
			token, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(token), 43) // 32 bytes, base64 raw url
			assert.False(t, seen[token])
			seen[token] = true
		}
	})

	t.Run("records session_created with provenance", func(t *testing.T) {
		env := setupManager(t, testConfig())

		_, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "netscape/4")
		require.NoError(t, err)

		created := eventsOfType(env.events.Events(), activity.TypeSessionCreated)
		require.Len(t, created, 1)
		assert.Equal(t, env.userID, created[0].UserID)
		assert.Equal(t, "203.0.113.7", created[0].IPAddress)
		assert.Equal(t, "netscape/4", created[0].UserAgent)
	})

	t.Run("second login leaves exactly one active session", func(t *testing.T) {
		env := setupManager(t, testConfig())

		_, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)
		_, err = env.mgr.CreateSession(ctx, env.userID, "203.0.113.8", "ua")
		require.NoError(t, err)

		active, err := env.store.ActiveSessions(ctx, env.clock.Now())
		require.NoError(t, err)
		assert.Len(t, active, 1)

		invalidated := eventsOfType(env.events.Events(), activity.TypeSessionInvalidated)
		require.Len(t, invalidated, 1)
		assert.Equal(t, string(session.ReasonNewLogin), invalidated[0].Metadata["reason"])
	})
}

func TestManager_ValidateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token is invalid", func(t *testing.T) {
		env := setupManager(t, testConfig())

		_, err := env.mgr.ValidateSession(ctx, "not-a-token")
		assert.ErrorIs(t, err, session.ErrInvalidToken)
	})

	t.Run("empty token is invalid", func(t *testing.T) {
		env := setupManager(t, testConfig())

		_, err := env.mgr.ValidateSession(ctx, "")
		assert.ErrorIs(t, err, session.ErrInvalidToken)
	})

	t.Run("active session yields joined user context", func(t *testing.T) {
		env := setupManager(t, testConfig())

		token, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)

		uc, err := env.mgr.ValidateSession(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, env.userID, uc.UserID)
		assert.Equal(t, "gopher", uc.Username)
		assert.Equal(t, 3, uc.Level)
		assert.Equal(t, 420, uc.Points)
		assert.False(t, uc.IsAdmin)
		assert.True(t, uc.ExpiresAt.Equal(env.clock.Now().Add(time.Hour)))

		access := eventsOfType(env.events.Events(), activity.TypePageAccess)
		assert.Len(t, access, 1)
	})

	t.Run("expiry is detected lazily and is terminal", func(t *testing.T) {
		env := setupManager(t, testConfig())

		token, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)

		env.clock.Advance(time.Hour) // exactly at expires_at

		_, err = env.mgr.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, session.ErrSessionExpired)

		// The flip was persisted.
		row, err := env.store.Get(ctx, token)
		require.NoError(t, err)
		assert.False(t, row.IsActive)

		// Repeat validation stays Expired; no resurrection.
		_, err = env.mgr.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, session.ErrSessionExpired)

		expired := eventsOfType(env.events.Events(), activity.TypeSessionExpired)
		assert.Len(t, expired, 1)
	})

	t.Run("scenario: new login displaces the previous token", func(t *testing.T) {
		env := setupManager(t, testConfig())

		tokenA, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)

		env.clock.Advance(10 * time.Second)
		uc, err := env.mgr.ValidateSession(ctx, tokenA)
		require.NoError(t, err)
		assert.Equal(t, env.userID, uc.UserID)

		env.clock.Advance(10 * time.Second)
		tokenB, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)

		env.clock.Advance(10 * time.Second)
		_, err = env.mgr.ValidateSession(ctx, tokenA)
		assert.ErrorIs(t, err, session.ErrSessionInactive)

		uc, err = env.mgr.ValidateSession(ctx, tokenB)
		require.NoError(t, err)
		assert.Equal(t, env.userID, uc.UserID)
	})

	t.Run("cleared cache falls back to the store", func(t *testing.T) {
		env := setupManager(t, testConfig())

		token, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)

		_, err = env.mgr.ValidateSession(ctx, token)
		require.NoError(t, err)

		// Simulate a process restart.
		env.cache.Clear(ctx)

		uc, err := env.mgr.ValidateSession(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, env.userID, uc.UserID)
	})

	t.Run("page_access events are rate limited per token", func(t *testing.T) {
		cfg := testConfig()
		cfg.PageAccessInterval = time.Minute
		env := setupManager(t, cfg)

		token, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)

		for range 5 {
			_, err = env.mgr.ValidateSession(ctx, token)
			require.NoError(t, err)
		}
		assert.Len(t, eventsOfType(env.events.Events(), activity.TypePageAccess), 1)

		env.clock.Advance(2 * time.Minute)
		_, err = env.mgr.ValidateSession(ctx, token)
		require.NoError(t, err)
		assert.Len(t, eventsOfType(env.events.Events(), activity.TypePageAccess), 2)
	})
}

func TestManager_InvalidateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("logout terminates the session", func(t *testing.T) {
		env := setupManager(t, testConfig())

		token, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)

		require.NoError(t, env.mgr.InvalidateSession(ctx, token, session.ReasonLogout))

		_, err = env.mgr.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, session.ErrSessionInactive)

		invalidated := eventsOfType(env.events.Events(), activity.TypeSessionInvalidated)
		require.Len(t, invalidated, 1)
		assert.Equal(t, string(session.ReasonLogout), invalidated[0].Metadata["reason"])
	})

	t.Run("idempotent on repeated calls", func(t *testing.T) {
		env := setupManager(t, testConfig())

		token, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)

		require.NoError(t, env.mgr.InvalidateSession(ctx, token, session.ReasonLogout))
		require.NoError(t, env.mgr.InvalidateSession(ctx, token, session.ReasonLogout))

		// Only the first call records an event.
		invalidated := eventsOfType(env.events.Events(), activity.TypeSessionInvalidated)
		assert.Len(t, invalidated, 1)
	})

	t.Run("unknown and empty tokens are no-ops", func(t *testing.T) {
		env := setupManager(t, testConfig())

		assert.NoError(t, env.mgr.InvalidateSession(ctx, "nope", session.ReasonLogout))
		assert.NoError(t, env.mgr.InvalidateSession(ctx, "", session.ReasonLogout))
	})
}

func TestManager_ExtendSession(t *testing.T) {
	ctx := context.Background()

	t.Run("strictly increases expiry on an active session", func(t *testing.T) {
		env := setupManager(t, testConfig())

		token, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)
		originalExpiry := env.clock.Now().Add(time.Hour)

		env.clock.Advance(10 * time.Minute)

		newExpiry, err := env.mgr.ExtendSession(ctx, token)
		require.NoError(t, err)
		assert.True(t, newExpiry.After(originalExpiry))
		assert.True(t, newExpiry.Equal(env.clock.Now().Add(time.Hour)))

		row, err := env.store.Get(ctx, token)
		require.NoError(t, err)
		assert.True(t, row.ExpiresAt.Equal(newExpiry))
	})

	t.Run("does not resurrect an invalidated session", func(t *testing.T) {
		env := setupManager(t, testConfig())

		token, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)
		require.NoError(t, env.mgr.InvalidateSession(ctx, token, session.ReasonLogout))

		_, err = env.mgr.ExtendSession(ctx, token)
		assert.ErrorIs(t, err, session.ErrSessionInactive)

		_, err = env.mgr.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, session.ErrSessionInactive)
	})

	t.Run("does not resurrect an expired session", func(t *testing.T) {
		env := setupManager(t, testConfig())

		token, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
		require.NoError(t, err)

		env.clock.Advance(2 * time.Hour)

		_, err = env.mgr.ExtendSession(ctx, token)
		assert.ErrorIs(t, err, session.ErrSessionExpired)

		_, err = env.mgr.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, session.ErrSessionExpired)
	})

	t.Run("unknown token", func(t *testing.T) {
		env := setupManager(t, testConfig())

		_, err := env.mgr.ExtendSession(ctx, "nope")
		assert.ErrorIs(t, err, session.ErrInvalidToken)
	})
}

func TestManager_Sweep(t *testing.T) {
	ctx := context.Background()
	env := setupManager(t, testConfig())

	tokenStale, err := env.mgr.CreateSession(ctx, env.userID, "203.0.113.7", "ua")
	require.NoError(t, err)

	env.clock.Advance(30 * time.Minute)
	_, err = env.mgr.CreateSession(ctx, env.adminID, "203.0.113.9", "ua")
	require.NoError(t, err)

	env.clock.Advance(45 * time.Minute) // stale is past 1h TTL, admin is not

	n, err := env.mgr.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	row, err := env.store.Get(ctx, tokenStale)
	require.NoError(t, err)
	assert.False(t, row.IsActive)

	expired := eventsOfType(env.events.Events(), activity.TypeSessionExpired)
	require.Len(t, expired, 1)
	assert.Equal(t, env.userID, expired[0].UserID)
}

func TestManager_RequiresUserDirectory(t *testing.T) {
	assert.Panics(t, func() {
		session.New(session.WithStore(session.NewMemoryStore()))
	})
}
