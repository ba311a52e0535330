// Package event routes runtime events to registered handlers under strict
// priority ordering, bounded queueing, and bounded retry.
//
// # Router
//
// Router is the stateful runtime primitive of the kernel: a bounded
// priority queue of events plus a registry of handlers. Events are drained
// one at a time in priority order (FIFO within a priority band) and
// dispatched to every matching handler in descending registration
// priority.
//
//	router := event.NewRouter(event.RouterConfig{
//	    Capacity:   10000,
//	    MaxRetries: 3,
//	})
//
//	unregister := router.Register("page.saved", saveHandler, 10)
//	defer unregister()
//
//	evt := event.NewEvent("page.saved", "editor", "module", payload,
//	    event.WithPriority(event.PriorityHigh))
//	if !router.Emit(evt) {
//	    // queue at capacity; the caller decides what to do
//	}
//
//	processed := router.Drain(ctx)
//
// # Admission control and backpressure
//
// Emit is the only backpressure point: at capacity it returns false and
// leaves the queue unchanged. It never blocks the caller.
//
// # Retry and dead letters
//
// A handler failure during Drain re-emits the event into its priority band
// until its retry counter reaches MaxRetries; after that the event is
// discarded. Configure a DeadLetterQueue to capture discarded events
// instead of dropping them: MemoryDLQ keeps them in process, SQLiteDLQ
// persists them for replay across restarts.
//
// # Concurrency
//
// Dispatch is sequential and cooperative. At most one event is processing
// at a time per Router, and Drain is single-flight: a call made while a
// pass is active returns 0 immediately. There is no per-handler timeout;
// a hung handler stalls the drain loop.
package event
