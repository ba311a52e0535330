package kernel

import (
	"log/slog"

	"github.com/pulsedev/kernel/pkg/kernel/config"
	"github.com/pulsedev/kernel/pkg/kernel/event"
	"github.com/pulsedev/kernel/pkg/kernel/observability"
)

// kernelConfig holds construction settings for a Kernel.
type kernelConfig struct {
	queueCapacity int
	maxRetries    int
	logger        *slog.Logger
	metrics       observability.MetricsRecorder
	dlq           event.DeadLetterQueue
}

func defaultKernelConfig() kernelConfig {
	return kernelConfig{
		queueCapacity: event.DefaultRouterConfig.Capacity,
		maxRetries:    event.DefaultRouterConfig.MaxRetries,
	}
}

// Option configures a Kernel at construction time.
type Option func(*kernelConfig)

// WithQueueCapacity bounds the router's event queue.
// Non-positive values keep the default (10000).
func WithQueueCapacity(n int) Option {
	return func(c *kernelConfig) {
		if n > 0 {
			c.queueCapacity = n
		}
	}
}

// WithMaxRetries sets the total processing attempts an event gets before
// it is discarded. Non-positive values keep the default (3).
func WithMaxRetries(n int) Option {
	return func(c *kernelConfig) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithLogger sets the structured logger for the kernel and its router.
// nil (the default) disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *kernelConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for the kernel and its router.
// nil (the default) disables metrics.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *kernelConfig) {
		c.metrics = m
	}
}

// WithDLQ sets the dead letter queue receiving events discarded past the
// retry bound. nil (the default) discards them silently.
func WithDLQ(dlq event.DeadLetterQueue) Option {
	return func(c *kernelConfig) {
		c.dlq = dlq
	}
}

// FromConfig builds a Kernel from a loaded configuration, reading the
// "queue_capacity" and "max_retries" keys. Explicit options override
// config values.
func FromConfig(cfg config.Config, opts ...Option) *Kernel {
	base := []Option{
		WithQueueCapacity(cfg.Int("queue_capacity", event.DefaultRouterConfig.Capacity)),
		WithMaxRetries(cfg.Int("max_retries", event.DefaultRouterConfig.MaxRetries)),
	}
	return New(append(base, opts...)...)
}
