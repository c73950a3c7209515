package activity_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learntrack/learnkit/pkg/activity"
)

// failingStorage rejects every operation, standing in for an
// unreachable event table.
type failingStorage struct {
	mu      sync.Mutex
	appends int
}

func (f *failingStorage) Append(ctx context.Context, event activity.Event) error {
	f.mu.Lock()
	f.appends++
	f.mu.Unlock()
	return errors.New("table does not exist")
}

func (f *failingStorage) CountByType(ctx context.Context, since time.Time) (map[activity.Type]int64, error) {
	return nil, errors.New("table does not exist")
}

func (f *failingStorage) CountPerDay(ctx context.Context, typ activity.Type, since time.Time) ([]activity.DailyCount, error) {
	return nil, errors.New("table does not exist")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("persists events with generated id and timestamp", func(t *testing.T) {
		storage := activity.NewMemoryStorage()
		rec := activity.NewRecorder(storage, activity.WithRecorderLogger(quietLogger()))

		userID := uuid.New()
		rec.Record(ctx, activity.Event{
			UserID:    userID,
			Type:      activity.TypeSessionCreated,
			IPAddress: "203.0.113.7",
		})
		rec.Close() // drains the buffer

		events := storage.Events()
		require.Len(t, events, 1)
		assert.NotEqual(t, uuid.Nil, events[0].ID)
		assert.False(t, events[0].CreatedAt.IsZero())
		assert.Equal(t, userID, events[0].UserID)
		assert.Equal(t, activity.TypeSessionCreated, events[0].Type)
	})

	t.Run("drops events without a type", func(t *testing.T) {
		storage := activity.NewMemoryStorage()
		rec := activity.NewRecorder(storage, activity.WithRecorderLogger(quietLogger()))

		rec.Record(ctx, activity.Event{UserID: uuid.New()})
		rec.Close()

		assert.Empty(t, storage.Events())
	})

	t.Run("storage failure never reaches the caller", func(t *testing.T) {
		storage := &failingStorage{}
		rec := activity.NewRecorder(storage, activity.WithRecorderLogger(quietLogger()))

		assert.NotPanics(t, func() {
			rec.Record(ctx, activity.Event{UserID: uuid.New(), Type: activity.TypePageAccess})
			rec.Close()
		})
	})

	t.Run("record after close does not block", func(t *testing.T) {
		storage := activity.NewMemoryStorage()
		rec := activity.NewRecorder(storage,
			activity.WithRecorderLogger(quietLogger()),
			activity.WithBufferSize(1))
		rec.Close()

		done := make(chan struct{})
		go func() {
			for range 10 {
				rec.Record(ctx, activity.Event{UserID: uuid.New(), Type: activity.TypePageAccess})
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Record blocked after Close")
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		rec := activity.NewRecorder(activity.NewMemoryStorage())
		rec.Close()
		assert.NotPanics(t, rec.Close)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() { activity.NewRecorder(nil) })
	})
}
