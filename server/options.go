// File: server/options.go
// Package server defines functional options for the relay Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"io"

	"go.uber.org/zap"

	"github.com/momentics/ncrelay/api"
	"github.com/momentics/ncrelay/control"
	"github.com/momentics/ncrelay/transport"
)

// ServerOption customizes server initialization.
type ServerOption func(*Server)

// WithLogger sets the logger shared by the loop and the console.
func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithOutput sets where console command results are printed.
func WithOutput(w io.Writer) ServerOption {
	return func(s *Server) {
		if w != nil {
			s.out = w
		}
	}
}

// WithMetrics shares an external metrics registry.
func WithMetrics(m *control.MetricsRegistry) ServerOption {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithParams sets the completion parameters the relay starts with.
func WithParams(p api.Params) ServerOption {
	return func(s *Server) {
		s.params = p
	}
}

// WithSender overrides how replies and notices are written to clients.
func WithSender(snd transport.Sender) ServerOption {
	return func(s *Server) {
		if snd != nil {
			s.sender = snd
		}
	}
}
