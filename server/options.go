package server

import (
	"go.uber.org/zap"

	"github.com/david-macharia/isc-radius/internal/metrics"
)

// Option configures a Server at construction time.
type Option func(*Server) error

// WithAuthPort overrides the default auth port (1812).
func WithAuthPort(port int) Option {
	return func(s *Server) error {
		s.authPort = port
		return nil
	}
}

// WithAcctPort overrides the default accounting port (1813).
func WithAcctPort(port int) Option {
	return func(s *Server) error {
		s.acctPort = port
		return nil
	}
}

// WithLogger injects a structured logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithMetrics injects a metrics instrument set. The default is a detached
// (unregistered) instance.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) error {
		if m != nil {
			s.metrics = m
		}
		return nil
	}
}

// WithClient registers ip with secret at construction time, equivalent to
// calling AddClient after New.
func WithClient(ip string, secret []byte) Option {
	return func(s *Server) error {
		s.AddClient(ip, secret)
		return nil
	}
}

// WithHandler appends h to the handler chain, in call order.
func WithHandler(h Handler) Option {
	return func(s *Server) error {
		s.handlers = append(s.handlers, h)
		return nil
	}
}
