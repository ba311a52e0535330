// Package observability provides structured logging, metrics, and tracing
// for the kernel.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// Every logging helper is nil-safe: passing a nil logger is a no-op.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds event context to a logger.
// Returns a new logger with event_id, event_type, and attempt fields.
func EnrichLogger(logger *slog.Logger, eventID, eventType string, attempt int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.Int("attempt", attempt),
	)
}

// LogResolveStart logs the start of a load-order resolution.
func LogResolveStart(logger *slog.Logger, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Debug("resolving load order",
		slog.Int("node_count", nodeCount),
	)
}

// LogResolveComplete logs a successful resolution.
func LogResolveComplete(logger *slog.Logger, nodeCount int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("load order resolved",
		slog.Int("node_count", nodeCount),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogResolveError logs a failed resolution.
func LogResolveError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Error("load order resolution failed",
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
