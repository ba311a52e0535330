package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// HandlerError wraps a handler failure with the event it occurred on.
type HandlerError struct {
	// EventID identifies the failed event.
	EventID string

	// EventType is the event's type tag.
	EventType string

	// Attempt is the processing attempt that failed (1-based).
	Attempt int

	// Err is the error the handler returned.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("event %s (%s) attempt %d: %v", e.EventID, e.EventType, e.Attempt, e.Err)
}

// Unwrap returns the handler's error for errors.Is/As support.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// FailedEvent records an event that was discarded past the retry bound.
type FailedEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	SourceID      string    `json:"source_id"`
	Payload       []byte    `json:"payload,omitempty"`
	ErrorMessage  string    `json:"error_message"`
	Attempts      int       `json:"attempts"`
	FirstFailedAt time.Time `json:"first_failed_at"`
	LastFailedAt  time.Time `json:"last_failed_at"`
}

// NewFailedEvent builds a FailedEvent from a discarded event and its final
// error. The payload is serialized best-effort.
func NewFailedEvent(evt *Event, err error) *FailedEvent {
	now := time.Now()
	payload, _ := json.Marshal(evt.Payload)
	return &FailedEvent{
		EventID:       evt.ID,
		EventType:     evt.Type,
		SourceID:      evt.SourceID,
		Payload:       payload,
		ErrorMessage:  err.Error(),
		Attempts:      evt.RetryCount,
		FirstFailedAt: now,
		LastFailedAt:  now,
	}
}

// DeadLetterQueue stores events discarded past the retry bound so an
// operator (or the host's offline replay worker) can inspect and replay
// them. The router treats a nil DeadLetterQueue as "discard silently".
type DeadLetterQueue interface {
	// Enqueue adds a discarded event. Re-enqueueing the same event id
	// updates the attempt count and last-failure time.
	Enqueue(ctx context.Context, failed *FailedEvent) error

	// List returns up to limit dead events, most recently failed first.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*FailedEvent, error)

	// Count returns the number of dead events.
	Count(ctx context.Context) (int, error)

	// Acknowledge removes a dead event after successful replay or review.
	Acknowledge(ctx context.Context, eventID string) error
}
