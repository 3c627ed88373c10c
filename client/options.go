package client

import (
	"time"

	"go.uber.org/zap"

	"github.com/david-macharia/isc-radius/internal/metrics"
)

// Option configures a Client at construction time.
type Option func(*Client) error

// WithRetry overrides the default retry count (3).
func WithRetry(retry int) Option {
	return func(c *Client) error {
		c.retry = retry
		return nil
	}
}

// WithDelay overrides the default per-attempt delay (1s).
func WithDelay(delay time.Duration) Option {
	return func(c *Client) error {
		c.delay = delay
		return nil
	}
}

// WithLogger injects a structured logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithMetrics injects a metrics instrument set. The default is a detached
// (unregistered) instance.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) error {
		if m != nil {
			c.metrics = m
		}
		return nil
	}
}
