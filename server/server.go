// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Relay construction, lifecycle and teardown.

package server

import (
	"io"
	"net/netip"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/ncrelay/api"
	"github.com/momentics/ncrelay/control"
	"github.com/momentics/ncrelay/pool"
	"github.com/momentics/ncrelay/reactor"
	"github.com/momentics/ncrelay/registry"
	"github.com/momentics/ncrelay/transport"
)

var _ api.GracefulShutdown = (*Server)(nil)

// New acquires every resource the relay needs: listening socket, reactor,
// wake descriptor and console descriptor. On failure everything acquired so
// far is released and an ErrCodeStartup error is returned.
func New(cfg *Config, completer api.Completer, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if completer == nil {
		return nil, api.NewError(api.ErrCodeStartup, "nil completer").Wrap(api.ErrInvalidArgument)
	}
	if cfg.Backlog <= 0 {
		cfg.Backlog = DefaultBacklog
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = pool.DefaultBufferSize
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = reactor.DefaultMaxEvents
	}

	s := &Server{
		cfg:       cfg,
		completer: completer,
		log:       zap.NewNop(),
		out:       io.Discard,
		metrics:   control.NewMetricsRegistry(),
		params:    api.DefaultParams(),
		sender:    transport.SenderFunc(transport.Send),
		pending:   queue.New(),
		lfd:       -1,
	}
	for _, o := range opts {
		o(s)
	}

	var undo []func()
	fail := func(op string, err error) (*Server, error) {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		s.log.Error("startup failed", zap.String("op", op), zap.Error(err))
		return nil, api.NewError(api.ErrCodeStartup, op).
			WithContext("addr", cfg.BindAddr.String()).
			Wrap(err)
	}

	lfd, addr, err := transport.Listen(cfg.BindAddr, cfg.Backlog)
	if err != nil {
		return fail("listen", err)
	}
	s.lfd, s.addr = lfd, addr
	undo = append(undo, func() { _ = transport.Close(lfd) })

	r, err := reactor.New(cfg.MaxEvents)
	if err != nil {
		return fail("reactor", err)
	}
	s.reactor = r
	undo = append(undo, func() { _ = r.Close() })

	w, err := transport.NewWaker()
	if err != nil {
		return fail("waker", err)
	}
	s.waker = w
	undo = append(undo, func() { _ = w.Close() })

	if err := r.Register(lfd, reactor.EventRead, s.onListener); err != nil {
		return fail("register listener", err)
	}
	if err := r.Register(w.FD(), reactor.EventRead, s.onWake); err != nil {
		return fail("register waker", err)
	}
	if cfg.ControlFD >= 0 {
		flags, err := transport.SetNonblock(cfg.ControlFD)
		if err != nil {
			return fail("console nonblock", err)
		}
		s.ctlFlags, s.ctlSaved = flags, true
		undo = append(undo, func() { _ = transport.RestoreFlags(cfg.ControlFD, flags) })
		if err := r.Register(cfg.ControlFD, reactor.EventRead, s.onControl); err != nil {
			return fail("register console", err)
		}
	}

	s.bufs = pool.NewBytePool(cfg.BufferSize)
	s.scratch = s.bufs.GetBuffer()
	s.conns = registry.NewConnections(s.bufs)
	s.state = control.NewState(s.params)
	s.state.OnChange(func(m control.Mode, p api.Params) {
		s.log.Debug("relay state changed", zap.Stringer("mode", m), zap.Stringer("params", p))
	})
	s.console = control.NewConsole(s.state, s.conns,
		control.WithOutput(s.out),
		control.WithLogger(s.log.Named("console")),
		control.WithMetrics(s.metrics),
		control.WithSender(s.sender),
		control.WithCompletionSink(s.submitConsole),
	)
	s.metrics.RegisterProbe("connections.live", func() any { return s.conns.Len() })

	s.log.Info("listening",
		zap.Stringer("addr", addr),
		zap.Int("backlog", cfg.Backlog),
		zap.Bool("console", cfg.ControlFD >= 0))
	return s, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() netip.AddrPort { return s.addr }

// State returns the shared mode and parameter state.
func (s *Server) State() *control.State { return s.state }

// Metrics returns the relay's counters.
func (s *Server) Metrics() *control.MetricsRegistry { return s.metrics }

// Shutdown stops a running loop, or releases resources if Run was never
// called. Calling it more than once is harmless.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	running := s.running
	s.mu.Unlock()

	if running {
		return s.wake()
	}
	s.teardown()
	return nil
}

// wake interrupts the reactor wait from any goroutine.
func (s *Server) wake() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tornDown {
		return nil
	}
	return s.waker.Wake()
}

func (s *Server) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tornDown {
		return
	}
	s.tornDown = true

	closed := 0
	s.conns.ForEach(func(c *registry.Connection) bool {
		c.State = registry.StateClosing
		if err := transport.Close(c.FD); err != nil {
			s.log.Warn("close client", zap.Int("fd", c.FD), zap.Error(err))
		}
		closed++
		return true
	})
	s.conns.Clear()
	s.metrics.Add(control.MetricClosed, uint64(closed))

	if s.ctlSaved {
		if err := transport.RestoreFlags(s.cfg.ControlFD, s.ctlFlags); err != nil {
			s.log.Warn("restore console flags", zap.Error(err))
		}
	}
	if err := s.reactor.Close(); err != nil {
		s.log.Warn("close reactor", zap.Error(err))
	}
	if err := transport.Close(s.lfd); err != nil {
		s.log.Warn("close listener", zap.Error(err))
	}
	if err := s.waker.Close(); err != nil {
		s.log.Warn("close waker", zap.Error(err))
	}
	s.bufs.PutBuffer(s.scratch)
	s.scratch = nil
	s.log.Info("relay stopped", zap.Int("clients_closed", closed))
}
