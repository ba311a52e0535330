package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Priority orders events in the queue. Higher values drain first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Status is an event's position in its processing lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// TypeWildcard registers a handler for every event type.
const TypeWildcard = "*"

// ExecutionContext carries correlation data through an event's lifetime.
type ExecutionContext struct {
	// CorrelationID groups related events. Defaults to a fresh uuid when
	// the event is created without an explicit context.
	CorrelationID string `json:"correlation_id"`

	// Metadata holds ancillary key/value pairs.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Event is a prioritized unit of work routed to matching handlers.
//
// An event is owned by the router's queue from creation until it is
// processed or discarded past the retry bound. Retries keep the original
// identity; only RetryCount advances.
type Event struct {
	// ID uniquely identifies the event across its whole lifetime.
	ID string `json:"id"`

	// Type is the event type tag handlers filter on.
	Type string `json:"type"`

	// SourceID identifies the emitting entity.
	SourceID string `json:"source_id"`

	// SourceKind tags the kind of emitter (e.g. "module", "agent").
	SourceKind string `json:"source_kind"`

	// Priority determines queue position. Defaults to PriorityNormal.
	Priority Priority `json:"priority"`

	// Payload is the opaque event body.
	Payload map[string]any `json:"payload,omitempty"`

	// Context is the execution context the event was created under.
	Context ExecutionContext `json:"context"`

	// Status tracks the processing lifecycle.
	Status Status `json:"status"`

	// RetryCount is the number of failed processing attempts so far.
	// It is monotonically non-decreasing.
	RetryCount int `json:"retry_count"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"created_at"`

	// ProcessedAt is set when the event reaches StatusProcessed.
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// Handler processes a single event. Returning an error marks the event
// failed and stops the handler chain for that event.
type Handler func(ctx context.Context, evt *Event) error

// UnregisterFunc removes the registration it was returned for.
// Calling it more than once is a no-op.
type UnregisterFunc func()

// EventOption configures event creation.
type EventOption func(*Event)

// WithPriority sets the event priority (default: PriorityNormal).
func WithPriority(p Priority) EventOption {
	return func(e *Event) {
		e.Priority = p
	}
}

// WithContext sets the full execution context.
func WithContext(ec ExecutionContext) EventOption {
	return func(e *Event) {
		e.Context = ec
	}
}

// WithCorrelationID sets only the correlation id, keeping other context
// fields at their defaults.
func WithCorrelationID(id string) EventOption {
	return func(e *Event) {
		e.Context.CorrelationID = id
	}
}

// NewEvent builds an event with a fresh identifier and timestamp.
// Status starts pending and RetryCount at zero. When no execution context
// is supplied the event gets a fresh correlation id and empty metadata.
func NewEvent(eventType, sourceID, sourceKind string, payload map[string]any, opts ...EventOption) *Event {
	evt := &Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		SourceID:   sourceID,
		SourceKind: sourceKind,
		Priority:   PriorityNormal,
		Payload:    payload,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}

	for _, opt := range opts {
		opt(evt)
	}

	if evt.Context.CorrelationID == "" {
		evt.Context.CorrelationID = uuid.New().String()
	}
	if evt.Context.Metadata == nil {
		evt.Context.Metadata = make(map[string]any)
	}

	return evt
}
