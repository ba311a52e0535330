package event

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryDLQ is an in-memory DeadLetterQueue.
// Suitable for tests and hosts that replay dead events within one process.
type MemoryDLQ struct {
	mu      sync.RWMutex
	events  map[string]*FailedEvent
	maxSize int
}

// DefaultDLQMaxSize bounds the in-memory dead letter queue.
const DefaultDLQMaxSize = 10000

// NewMemoryDLQ creates an in-memory dead letter queue.
// maxSize <= 0 falls back to DefaultDLQMaxSize.
func NewMemoryDLQ(maxSize int) *MemoryDLQ {
	if maxSize <= 0 {
		maxSize = DefaultDLQMaxSize
	}
	return &MemoryDLQ{
		events:  make(map[string]*FailedEvent),
		maxSize: maxSize,
	}
}

// Enqueue implements DeadLetterQueue. Re-enqueueing an id already present
// accumulates attempts and advances the last-failure time. When the queue
// is full, the oldest entry is evicted.
func (q *MemoryDLQ) Enqueue(_ context.Context, failed *FailedEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if existing, ok := q.events[failed.EventID]; ok {
		existing.Attempts += failed.Attempts
		existing.LastFailedAt = failed.LastFailedAt
		existing.ErrorMessage = failed.ErrorMessage
		return nil
	}

	if len(q.events) >= q.maxSize {
		q.evictOldest()
	}

	q.events[failed.EventID] = failed
	return nil
}

// evictOldest drops the entry with the earliest first failure.
// Caller holds the lock.
func (q *MemoryDLQ) evictOldest() {
	var oldestID string
	var oldestAt time.Time
	for id, f := range q.events {
		if oldestID == "" || f.FirstFailedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = f.FirstFailedAt
		}
	}
	delete(q.events, oldestID)
}

// List implements DeadLetterQueue, most recently failed first.
func (q *MemoryDLQ) List(_ context.Context, limit int) ([]*FailedEvent, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	all := make([]*FailedEvent, 0, len(q.events))
	for _, f := range q.events {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].LastFailedAt.After(all[j].LastFailedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Count implements DeadLetterQueue.
func (q *MemoryDLQ) Count(_ context.Context) (int, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.events), nil
}

// Acknowledge implements DeadLetterQueue. Unknown ids are a no-op.
func (q *MemoryDLQ) Acknowledge(_ context.Context, eventID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.events, eventID)
	return nil
}
