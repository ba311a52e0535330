package event

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pulsedev/kernel/pkg/kernel/observability"
)

// RouterConfig configures router behavior.
type RouterConfig struct {
	// Capacity bounds the queue. Emit rejects events beyond it.
	// Default: 10000
	Capacity int

	// MaxRetries is the total number of processing attempts an event gets
	// during draining before it is discarded.
	// Default: 3
	MaxRetries int

	// Logger receives structured processing logs. nil disables logging.
	Logger *slog.Logger

	// Metrics records router metrics. nil disables metrics.
	Metrics observability.MetricsRecorder

	// DLQ receives events discarded past the retry bound.
	// nil means discarded events are dropped silently.
	DLQ DeadLetterQueue
}

// DefaultRouterConfig provides the stock capacity and retry bound.
var DefaultRouterConfig = RouterConfig{
	Capacity:   10000,
	MaxRetries: 3,
}

// registration is a handler bound to an event-type filter.
type registration struct {
	seq       int
	eventType string
	handler   Handler
	priority  int
}

// Router holds a bounded priority queue of events and a registry of
// handlers, and drains events to matching handlers one at a time.
//
// All queue and registry mutations are atomic under an internal mutex.
// Handler dispatch is sequential and cooperative: the drain loop waits for
// one handler to finish before advancing, so a hung handler stalls the
// whole pass. A Router must not be shared across tenants; use one instance
// per tenant.
type Router struct {
	cfg RouterConfig

	mu       sync.Mutex
	queue    []*Event
	registry []*registration
	regSeq   int

	draining atomic.Bool
}

// NewRouter creates a router with the given configuration.
// Zero or negative Capacity/MaxRetries fall back to the defaults.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultRouterConfig.Capacity
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultRouterConfig.MaxRetries
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	return &Router{cfg: cfg}
}

// Register adds a handler for eventType (or TypeWildcard for all types).
// Handlers for an event run in descending registration priority; equal
// priorities run in registration order. The returned UnregisterFunc removes
// exactly this registration and is idempotent.
func (r *Router) Register(eventType string, h Handler, priority int) UnregisterFunc {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.regSeq++
	reg := &registration{
		seq:       r.regSeq,
		eventType: eventType,
		handler:   h,
		priority:  priority,
	}

	// Insert before the first entry with strictly lower priority so that
	// equal priorities keep registration order.
	idx := len(r.registry)
	for i, existing := range r.registry {
		if existing.priority < reg.priority {
			idx = i
			break
		}
	}
	r.registry = append(r.registry, nil)
	copy(r.registry[idx+1:], r.registry[idx:])
	r.registry[idx] = reg

	var once sync.Once
	return func() {
		once.Do(func() {
			r.unregister(reg)
		})
	}
}

func (r *Router) unregister(reg *registration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.registry {
		if existing == reg {
			r.registry = append(r.registry[:i], r.registry[i+1:]...)
			return
		}
	}
}

// Emit inserts an event into the queue, keeping priority order: the event
// goes before the first queued entry of strictly lower priority, so equal
// priorities stay in emission order. Returns false, leaving the queue
// unchanged, when the queue is at capacity. Emit never blocks; rejection is
// the only form of backpressure.
func (r *Router) Emit(evt *Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queue) >= r.cfg.Capacity {
		if r.cfg.Logger != nil {
			r.cfg.Logger.Warn("event rejected, queue at capacity",
				slog.String("event_id", evt.ID),
				slog.String("event_type", evt.Type),
				slog.Int("capacity", r.cfg.Capacity),
			)
		}
		r.cfg.Metrics.RecordEmit(context.Background(), evt.Type, evt.Priority.String(), false)
		return false
	}

	idx := len(r.queue)
	for i, queued := range r.queue {
		if queued.Priority < evt.Priority {
			idx = i
			break
		}
	}
	r.queue = append(r.queue, nil)
	copy(r.queue[idx+1:], r.queue[idx:])
	r.queue[idx] = evt

	r.cfg.Metrics.RecordEmit(context.Background(), evt.Type, evt.Priority.String(), true)
	r.cfg.Metrics.RecordQueueDepth(context.Background(), int64(len(r.queue)))
	return true
}

// Dequeue removes and returns the queue head: the highest-priority event,
// earliest-emitted among ties. The second return is false when the queue
// is empty.
func (r *Router) Dequeue() (*Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queue) == 0 {
		return nil, false
	}
	evt := r.queue[0]
	r.queue = r.queue[1:]
	return evt, true
}

// Process runs every matching handler for the event sequentially, in
// descending registration priority. The first handler error stops the
// chain: the event is marked failed, its retry counter advances, and the
// error is returned wrapped in a HandlerError. On full success the event
// is marked processed with a timestamp.
func (r *Router) Process(ctx context.Context, evt *Event) error {
	handlers := r.matchingHandlers(evt.Type)

	evt.Status = StatusProcessing
	start := time.Now()

	ctx, span := observability.StartEventSpan(ctx, evt.ID, evt.Type)

	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			evt.Status = StatusFailed
			evt.RetryCount++

			herr := &HandlerError{
				EventID:   evt.ID,
				EventType: evt.Type,
				Attempt:   evt.RetryCount,
				Err:       err,
			}
			if r.cfg.Logger != nil {
				r.cfg.Logger.Error("event processing failed",
					slog.String("event_id", evt.ID),
					slog.String("event_type", evt.Type),
					slog.Int("attempt", evt.RetryCount),
					slog.String("error", err.Error()),
				)
			}
			r.cfg.Metrics.RecordProcessed(ctx, evt.Type, time.Since(start), herr)
			observability.EndSpanWithError(span, herr)
			return herr
		}
	}

	now := time.Now()
	evt.Status = StatusProcessed
	evt.ProcessedAt = &now

	if r.cfg.Logger != nil {
		r.cfg.Logger.Debug("event processed",
			slog.String("event_id", evt.ID),
			slog.String("event_type", evt.Type),
			slog.Int("handlers", len(handlers)),
		)
	}
	r.cfg.Metrics.RecordProcessed(ctx, evt.Type, time.Since(start), nil)
	observability.EndSpanWithError(span, nil)
	return nil
}

// matchingHandlers snapshots the handlers for an event type, wildcard
// registrations included, already in dispatch order.
func (r *Router) matchingHandlers(eventType string) []Handler {
	r.mu.Lock()
	defer r.mu.Unlock()

	var handlers []Handler
	for _, reg := range r.registry {
		if reg.eventType == eventType || reg.eventType == TypeWildcard {
			handlers = append(handlers, reg.handler)
		}
	}
	return handlers
}

// Drain dequeues and processes events until the queue is empty, returning
// the number of events that reached processed status during this call.
//
// Drain is single-flight: a call made while another drain is active returns
// 0 immediately without touching the queue. A failed event whose retry
// counter is still below MaxRetries is re-emitted into its priority band
// for a later iteration of the same pass; at the bound it is discarded,
// to the configured DLQ if one is set.
func (r *Router) Drain(ctx context.Context) int {
	if !r.draining.CompareAndSwap(false, true) {
		return 0
	}
	defer r.draining.Store(false)

	ctx, span := observability.StartDrainSpan(ctx)
	start := time.Now()
	processed := 0

	for {
		evt, ok := r.Dequeue()
		if !ok {
			break
		}

		err := r.Process(ctx, evt)
		if err == nil {
			processed++
			continue
		}

		if evt.RetryCount < r.cfg.MaxRetries {
			evt.Status = StatusPending
			r.cfg.Metrics.RecordRetry(ctx, evt.Type)
			if !r.Emit(evt) && r.cfg.Logger != nil {
				r.cfg.Logger.Warn("retry rejected, queue at capacity",
					slog.String("event_id", evt.ID),
				)
			}
			continue
		}

		r.discard(ctx, evt, err)
	}

	if r.cfg.Logger != nil {
		r.cfg.Logger.Debug("drain pass complete",
			slog.Int("processed", processed),
			slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
		)
	}
	observability.EndSpanWithError(span, nil)
	return processed
}

// discard drops an event that exhausted its retries, handing it to the
// DLQ when one is configured.
func (r *Router) discard(ctx context.Context, evt *Event, cause error) {
	r.cfg.Metrics.RecordDiscard(ctx, evt.Type)

	if r.cfg.Logger != nil {
		r.cfg.Logger.Warn("event discarded after max retries",
			slog.String("event_id", evt.ID),
			slog.String("event_type", evt.Type),
			slog.Int("attempts", evt.RetryCount),
		)
	}

	if r.cfg.DLQ == nil {
		return
	}
	if err := r.cfg.DLQ.Enqueue(ctx, NewFailedEvent(evt, cause)); err != nil && r.cfg.Logger != nil {
		r.cfg.Logger.Error("dead letter enqueue failed",
			slog.String("event_id", evt.ID),
			slog.String("error", err.Error()),
		)
	}
}

// ClearQueue discards all queued events without invoking handlers.
// An event already inside Process is unaffected.
func (r *Router) ClearQueue() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.queue = nil
	r.cfg.Metrics.RecordQueueDepth(context.Background(), 0)
}

// QueueLength returns the number of queued events.
func (r *Router) QueueLength() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// QueueSnapshot returns a defensive copy of the queued events in queue
// order. Mutating the returned events does not affect the queue.
func (r *Router) QueueSnapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]Event, len(r.queue))
	for i, evt := range r.queue {
		snapshot[i] = *evt
	}
	return snapshot
}

// HandlerCount returns the number of active registrations.
func (r *Router) HandlerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.registry)
}
