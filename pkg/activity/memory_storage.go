package activity

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"
)

// MemoryStorage keeps events in a slice. Used by tests and small
// single-process deployments.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryStorage creates an empty in-memory event log.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Append(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.Metadata != nil {
		md := make(map[string]any, len(event.Metadata))
		maps.Copy(md, event.Metadata)
		event.Metadata = md
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryStorage) CountByType(ctx context.Context, since time.Time) (map[Type]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[Type]int64)
	for _, e := range m.events {
		if !e.CreatedAt.Before(since) {
			counts[e.Type]++
		}
	}
	return counts, nil
}

func (m *MemoryStorage) CountPerDay(ctx context.Context, typ Type, since time.Time) ([]DailyCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byDay := make(map[time.Time]int64)
	for _, e := range m.events {
		if e.Type != typ || e.CreatedAt.Before(since) {
			continue
		}
		t := e.CreatedAt.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		byDay[day]++
	}

	days := make([]DailyCount, 0, len(byDay))
	for day, count := range byDay {
		days = append(days, DailyCount{Day: day, Count: count})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days, nil
}

// Events returns a snapshot of all recorded events, oldest first.
func (m *MemoryStorage) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
