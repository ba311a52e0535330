package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records kernel metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEmit records an admission decision for an emitted event.
	RecordEmit(ctx context.Context, eventType, priority string, accepted bool)

	// RecordProcessed records one processing attempt with its duration
	// and error status.
	RecordProcessed(ctx context.Context, eventType string, duration time.Duration, err error)

	// RecordRetry records a failed event re-entering the queue.
	RecordRetry(ctx context.Context, eventType string)

	// RecordDiscard records an event dropped past the retry bound.
	RecordDiscard(ctx context.Context, eventType string)

	// RecordQueueDepth records the queue length after a mutation.
	RecordQueueDepth(ctx context.Context, depth int64)

	// RecordResolution records a load-order resolution with its node count,
	// duration and error status.
	RecordResolution(ctx context.Context, nodeCount int, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsEmitted   metric.Int64Counter
	eventsRejected  metric.Int64Counter
	eventsProcessed metric.Int64Counter
	eventErrors     metric.Int64Counter
	eventLatency    metric.Float64Histogram
	eventsRetried   metric.Int64Counter
	eventsDiscarded metric.Int64Counter
	queueDepth      metric.Int64Gauge
	resolutions     metric.Int64Counter
	resolveLatency  metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the default OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("kernel")

	eventsEmitted, err := meter.Int64Counter("kernel.events.emitted",
		metric.WithDescription("Number of events admitted to the queue"),
	)
	if err != nil {
		return nil, err
	}

	eventsRejected, err := meter.Int64Counter("kernel.events.rejected",
		metric.WithDescription("Number of events rejected at capacity"),
	)
	if err != nil {
		return nil, err
	}

	eventsProcessed, err := meter.Int64Counter("kernel.events.processed",
		metric.WithDescription("Number of event processing attempts"),
	)
	if err != nil {
		return nil, err
	}

	eventErrors, err := meter.Int64Counter("kernel.events.errors",
		metric.WithDescription("Number of failed processing attempts"),
	)
	if err != nil {
		return nil, err
	}

	eventLatency, err := meter.Float64Histogram("kernel.events.latency_ms",
		metric.WithDescription("Event processing latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	eventsRetried, err := meter.Int64Counter("kernel.events.retried",
		metric.WithDescription("Number of retry re-enqueues"),
	)
	if err != nil {
		return nil, err
	}

	eventsDiscarded, err := meter.Int64Counter("kernel.events.discarded",
		metric.WithDescription("Number of events discarded past the retry bound"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64Gauge("kernel.queue.depth",
		metric.WithDescription("Event queue length"),
	)
	if err != nil {
		return nil, err
	}

	resolutions, err := meter.Int64Counter("kernel.resolve.runs",
		metric.WithDescription("Number of load-order resolutions"),
	)
	if err != nil {
		return nil, err
	}

	resolveLatency, err := meter.Float64Histogram("kernel.resolve.latency_ms",
		metric.WithDescription("Load-order resolution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsEmitted:   eventsEmitted,
		eventsRejected:  eventsRejected,
		eventsProcessed: eventsProcessed,
		eventErrors:     eventErrors,
		eventLatency:    eventLatency,
		eventsRetried:   eventsRetried,
		eventsDiscarded: eventsDiscarded,
		queueDepth:      queueDepth,
		resolutions:     resolutions,
		resolveLatency:  resolveLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordEmit records an admission decision.
func (m *otelMetrics) RecordEmit(ctx context.Context, eventType, priority string, accepted bool) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
		attribute.String("priority", priority),
	}
	if accepted {
		m.eventsEmitted.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		m.eventsRejected.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordProcessed records a processing attempt.
func (m *otelMetrics) RecordProcessed(ctx context.Context, eventType string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
	}
	m.eventsProcessed.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.eventLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		m.eventErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordRetry records a retry re-enqueue.
func (m *otelMetrics) RecordRetry(ctx context.Context, eventType string) {
	m.eventsRetried.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}

// RecordDiscard records a discarded event.
func (m *otelMetrics) RecordDiscard(ctx context.Context, eventType string) {
	m.eventsDiscarded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}

// RecordQueueDepth records the queue length.
func (m *otelMetrics) RecordQueueDepth(ctx context.Context, depth int64) {
	m.queueDepth.Record(ctx, depth)
}

// RecordResolution records a load-order resolution.
func (m *otelMetrics) RecordResolution(ctx context.Context, nodeCount int, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.Int("node_count", nodeCount),
		attribute.Bool("success", err == nil),
	}
	m.resolutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.resolveLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}
