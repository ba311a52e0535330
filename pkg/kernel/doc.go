// Package kernel is a small in-process kernel with two responsibilities:
// computing deterministic load orders for interdependent named units, and
// routing runtime events to registered handlers under strict priority
// ordering, bounded queueing, and bounded retry.
//
// The two primitives live in their own packages and share no runtime
// state:
//
//   - resolve: pure dependency resolution with cycle detection
//   - event: the stateful priority-queue event router
//
// The Kernel type in this package ties them together for an orchestrator:
// it owns one Router instance and wraps the resolve functions with
// structured logging, metrics, and tracing. Construct one explicitly with
// New, or use the process-wide Default()/Reset() pair when test isolation
// is all you need:
//
//	k := kernel.New(
//	    kernel.WithQueueCapacity(10000),
//	    kernel.WithMaxRetries(3),
//	    kernel.WithLogger(slog.Default()),
//	)
//
//	order, err := k.Resolve(ctx, modules)
//	if err != nil {
//	    // a cycle or missing dependency; no partial order is returned
//	}
//	for _, entry := range order {
//	    initModule(entry.ID)
//	    k.Router().Register(entry.ID+".ready", readyHandler, 0)
//	}
//
//	k.Router().Emit(event.NewEvent("app.started", "orchestrator", "system", nil))
//	k.Router().Drain(ctx)
//
// A Kernel is intended for single-tenant use; run one instance per tenant.
package kernel
