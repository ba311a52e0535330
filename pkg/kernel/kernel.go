package kernel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pulsedev/kernel/pkg/kernel/event"
	"github.com/pulsedev/kernel/pkg/kernel/observability"
	"github.com/pulsedev/kernel/pkg/kernel/resolve"
)

// Kernel owns one event router and wraps dependency resolution with
// logging, metrics, and tracing. The two primitives underneath share no
// runtime state; the Kernel is just the context object an orchestrator
// passes around instead of reaching for process-wide state.
type Kernel struct {
	router  *event.Router
	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// New creates a Kernel with the given options.
func New(opts ...Option) *Kernel {
	cfg := defaultKernelConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	metrics := cfg.metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	return &Kernel{
		router: event.NewRouter(event.RouterConfig{
			Capacity:   cfg.queueCapacity,
			MaxRetries: cfg.maxRetries,
			Logger:     cfg.logger,
			Metrics:    metrics,
			DLQ:        cfg.dlq,
		}),
		logger:  cfg.logger,
		metrics: metrics,
	}
}

// Router returns the kernel's event router.
func (k *Kernel) Router() *event.Router {
	return k.router
}

// Resolve computes a validated load order for the node set.
// Semantics are identical to resolve.Resolve; this wrapper adds structured
// logging, metrics, and a trace span around the call.
func (k *Kernel) Resolve(ctx context.Context, nodes []resolve.Node) ([]resolve.ResolvedEntry, error) {
	ctx, span := observability.StartResolveSpan(ctx, len(nodes))
	observability.LogResolveStart(k.logger, len(nodes))

	start := time.Now()
	order, err := resolve.Resolve(nodes)
	k.metrics.RecordResolution(ctx, len(nodes), time.Since(start), err)
	observability.EndSpanWithError(span, err)

	if err != nil {
		observability.LogResolveError(k.logger, err)
		return nil, err
	}
	observability.LogResolveComplete(k.logger, len(nodes), float64(time.Since(start).Milliseconds()))
	return order, nil
}

// LoadOrderFor resolves the union of existing nodes and newNode and
// returns the load-order suffix starting at newNode. See
// resolve.LoadOrderFor.
func (k *Kernel) LoadOrderFor(ctx context.Context, newNode resolve.Node, existing []resolve.Node) ([]resolve.ResolvedEntry, error) {
	ctx, span := observability.StartResolveSpan(ctx, len(existing)+1)

	start := time.Now()
	order, err := resolve.LoadOrderFor(newNode, existing)
	k.metrics.RecordResolution(ctx, len(existing)+1, time.Since(start), err)
	observability.EndSpanWithError(span, err)

	if err != nil {
		observability.LogResolveError(k.logger, err)
		return nil, err
	}
	return order, nil
}

// Process-wide default instance, for hosts that want singleton access.
// Prefer constructing a Kernel with New and passing it explicitly.
var (
	defaultMu     sync.Mutex
	defaultKernel *Kernel
)

// Default returns the process-wide Kernel, constructing it on first use.
func Default() *Kernel {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultKernel == nil {
		defaultKernel = New()
	}
	return defaultKernel
}

// Reset drops the process-wide Kernel so the next Default call constructs
// a fresh one. Intended for test isolation, not for concurrent
// multi-tenant sharing within one process.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultKernel = nil
}
