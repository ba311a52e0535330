package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the kernel tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("kernel")

// StartDrainSpan starts a span covering one full drain pass.
func StartDrainSpan(ctx context.Context) (context.Context, trace.Span) {
	return tracer.Start(ctx, "kernel.drain",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartEventSpan starts a span for processing one event.
// The event span should be a child of the drain span.
func StartEventSpan(ctx context.Context, eventID, eventType string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "kernel.event."+eventType,
		trace.WithAttributes(
			attribute.String("event.id", eventID),
			attribute.String("event.type", eventType),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartResolveSpan starts a span for a load-order resolution.
func StartResolveSpan(ctx context.Context, nodeCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "kernel.resolve",
		trace.WithAttributes(
			attribute.Int("node_count", nodeCount),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
