package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrStoreClosed indicates an operation on a closed SQLiteDLQ.
var ErrStoreClosed = errors.New("dead letter store is closed")

// SQLiteDLQ persists dead events to SQLite so the host's offline replay
// worker can pick them up after a restart or when connectivity returns.
// Suitable for single-process production use.
type SQLiteDLQ struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteDLQ opens (or creates) a dead letter store at path.
// Use ":memory:" for testing.
func NewSQLiteDLQ(path string) (*SQLiteDLQ, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS dead_events (
			event_id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			source_id TEXT NOT NULL,
			payload BLOB,
			error_message TEXT NOT NULL,
			attempts INTEGER NOT NULL,
			first_failed_at TEXT NOT NULL,
			last_failed_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_dead_events_last_failed
		ON dead_events(last_failed_at)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteDLQ{db: db}, nil
}

// Enqueue implements DeadLetterQueue. An existing event id accumulates
// attempts and keeps its first failure time.
func (q *SQLiteDLQ) Enqueue(ctx context.Context, failed *FailedEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrStoreClosed
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO dead_events
			(event_id, event_type, source_id, payload, error_message, attempts, first_failed_at, last_failed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			attempts = dead_events.attempts + excluded.attempts,
			error_message = excluded.error_message,
			last_failed_at = excluded.last_failed_at
	`,
		failed.EventID, failed.EventType, failed.SourceID, failed.Payload,
		failed.ErrorMessage, failed.Attempts,
		failed.FirstFailedAt.UTC().Format(time.RFC3339Nano),
		failed.LastFailedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("enqueue dead event: %w", err)
	}
	return nil
}

// List implements DeadLetterQueue, most recently failed first.
func (q *SQLiteDLQ) List(ctx context.Context, limit int) ([]*FailedEvent, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, ErrStoreClosed
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT event_id, event_type, source_id, payload, error_message, attempts, first_failed_at, last_failed_at
		FROM dead_events
		ORDER BY last_failed_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list dead events: %w", err)
	}
	defer rows.Close()

	var events []*FailedEvent
	for rows.Next() {
		var f FailedEvent
		var first, last string
		if err := rows.Scan(&f.EventID, &f.EventType, &f.SourceID, &f.Payload,
			&f.ErrorMessage, &f.Attempts, &first, &last); err != nil {
			return nil, fmt.Errorf("scan dead event: %w", err)
		}
		f.FirstFailedAt, _ = time.Parse(time.RFC3339Nano, first)
		f.LastFailedAt, _ = time.Parse(time.RFC3339Nano, last)
		events = append(events, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dead events: %w", err)
	}
	return events, nil
}

// Count implements DeadLetterQueue.
func (q *SQLiteDLQ) Count(ctx context.Context) (int, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return 0, ErrStoreClosed
	}

	var count int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dead_events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count dead events: %w", err)
	}
	return count, nil
}

// Acknowledge implements DeadLetterQueue. Unknown ids are a no-op.
func (q *SQLiteDLQ) Acknowledge(ctx context.Context, eventID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrStoreClosed
	}

	if _, err := q.db.ExecContext(ctx, `DELETE FROM dead_events WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("acknowledge dead event: %w", err)
	}
	return nil
}

// Close releases the underlying database. Further operations return
// ErrStoreClosed.
func (q *SQLiteDLQ) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	return q.db.Close()
}
