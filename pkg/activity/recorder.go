package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Recorder accepts lifecycle events for the audit trail. Record must
// never block the caller and never surface an error: the critical
// session path continues regardless of audit health.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// AsyncRecorder buffers events on a channel and writes them from a
// background worker, keeping the session hot path free of audit I/O.
// When the buffer is full the event is dropped rather than blocking.
type AsyncRecorder struct {
	storage      Storage
	events       chan Event
	done         chan struct{}
	wg           sync.WaitGroup
	closeOnce    sync.Once
	log          *slog.Logger
	now          func() time.Time
	writeTimeout time.Duration
}

// RecorderOption configures an AsyncRecorder.
type RecorderOption func(*AsyncRecorder)

// WithBufferSize sets the event channel capacity (default 1024).
func WithBufferSize(n int) RecorderOption {
	return func(r *AsyncRecorder) {
		if n > 0 {
			r.events = make(chan Event, n)
		}
	}
}

// WithRecorderLogger sets the logger for dropped or failed writes.
func WithRecorderLogger(log *slog.Logger) RecorderOption {
	return func(r *AsyncRecorder) {
		if log != nil {
			r.log = log
		}
	}
}

// WithRecorderClock overrides the time source, mainly for tests.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *AsyncRecorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithWriteTimeout bounds each storage write (default 5s).
func WithWriteTimeout(d time.Duration) RecorderOption {
	return func(r *AsyncRecorder) {
		if d > 0 {
			r.writeTimeout = d
		}
	}
}

// NewRecorder creates an AsyncRecorder writing to the given storage.
func NewRecorder(storage Storage, opts ...RecorderOption) *AsyncRecorder {
	if storage == nil {
		panic("activity: storage cannot be nil")
	}

	r := &AsyncRecorder{
		storage:      storage,
		events:       make(chan Event, 1024),
		done:         make(chan struct{}),
		log:          slog.Default(),
		now:          func() time.Time { return time.Now().UTC() },
		writeTimeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// Record queues an event for persistence. Fills in ID and timestamp
// when absent. Invalid or overflowing events are logged and dropped.
func (r *AsyncRecorder) Record(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now()
	}

	if err := event.Validate(); err != nil {
		r.log.WarnContext(ctx, "dropping invalid activity event", "error", err)
		return
	}

	select {
	case r.events <- event:
	case <-r.done:
	default:
		// Buffer full; dropping keeps the session path non-blocking.
		r.log.WarnContext(ctx, "activity buffer full, dropping event",
			"activity_type", string(event.Type), "user_id", event.UserID)
	}
}

func (r *AsyncRecorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case event := <-r.events:
			r.write(event)
		case <-r.done:
			// Drain remaining events for graceful shutdown.
			for {
				select {
				case event := <-r.events:
					r.write(event)
				default:
					return
				}
			}
		}
	}
}

// write persists one event with its own deadline. Uses a background
// context so request cancellation cannot cascade into the audit log.
func (r *AsyncRecorder) write(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := r.storage.Append(ctx, event); err != nil {
		r.log.Warn("activity event write failed",
			"activity_type", string(event.Type), "error", err)
	}
}

// Close stops accepting events, drains the buffer and waits for the
// worker to finish.
func (r *AsyncRecorder) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}
