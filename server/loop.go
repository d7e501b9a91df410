// File: server/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reactor loop: accept, turn assembly, console input and the serialized
// dispatch of prompts to the completion provider.

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/momentics/ncrelay/affinity"
	"github.com/momentics/ncrelay/api"
	"github.com/momentics/ncrelay/control"
	"github.com/momentics/ncrelay/reactor"
	"github.com/momentics/ncrelay/registry"
	"github.com/momentics/ncrelay/transport"
)

// Run drives the relay until the console says exit, ctx is cancelled or
// Shutdown is called. Every resource is released before it returns. A failed
// wait is returned as an ErrCodeLoop error.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return api.ErrClosed
	case s.running:
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()
	defer s.teardown()

	if s.cfg.CPU >= 0 {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := affinity.SetAffinity(s.cfg.CPU); err != nil {
			s.log.Warn("cpu pinning failed", zap.Int("cpu", s.cfg.CPU), zap.Error(err))
		} else {
			s.log.Info("loop pinned", zap.Int("cpu", s.cfg.CPU))
		}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			if err := s.wake(); err != nil {
				s.log.Warn("wake on cancel", zap.Error(err))
			}
		case <-done:
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	s.log.Info("relay running", zap.Stringer("addr", s.addr))
	for !s.stop && ctx.Err() == nil && !s.isClosed() {
		if _, err := s.reactor.Poll(-1); err != nil {
			s.log.Error("event wait failed", zap.Error(err))
			return api.NewError(api.ErrCodeLoop, "event wait").Wrap(err)
		}
		s.dispatch(ctx)
	}
	return nil
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) onWake(int, reactor.FDEventType) {
	s.waker.Drain()
	s.stop = true
}

func (s *Server) onListener(fd int, _ reactor.FDEventType) {
	for {
		cfd, peer, err := transport.Accept(fd)
		if errors.Is(err, transport.ErrWouldBlock) {
			return
		}
		if err != nil {
			s.log.Warn("accept failed", zap.Error(err))
			return
		}
		if _, err := s.conns.Register(cfd, peer.String()); err != nil {
			s.log.Error("register client", zap.Int("fd", cfd), zap.Error(err))
			_ = transport.Close(cfd)
			continue
		}
		if err := s.reactor.Register(cfd, reactor.EventRead, s.onClient); err != nil {
			s.log.Error("watch client", zap.Int("fd", cfd), zap.Error(err))
			_ = s.conns.Unregister(cfd)
			_ = transport.Close(cfd)
			continue
		}
		s.metrics.Inc(control.MetricAccepted)
		s.log.Info("client connected", zap.Int("fd", cfd), zap.Stringer("peer", peer))
		s.send(cfd, api.Prompt)
	}
}

func (s *Server) onClient(fd int, ev reactor.FDEventType) {
	if ev&reactor.EventRead == 0 && ev&reactor.EventError != 0 {
		s.closeClient(fd, "socket error")
		return
	}
	s.readClient(fd, false)
}

// readClient drains fd into its turn buffer. A turn is complete when the
// socket would block or the buffer is full. resumed is set when reading the
// remainder of a turn that overflowed the buffer.
func (s *Server) readClient(fd int, resumed bool) {
	conn, err := s.conns.Find(fd)
	if err != nil {
		s.log.Warn("readiness for unknown client", zap.Int("fd", fd))
		return
	}
	for !conn.Full() {
		n, err := transport.Recv(fd, s.scratch[:conn.Cap()-conn.Len()])
		switch {
		case errors.Is(err, transport.ErrWouldBlock):
			if resumed && conn.Len() == 0 {
				conn.State = registry.StateIdle
				return
			}
			s.turnReady(conn, false)
			return
		case errors.Is(err, io.EOF):
			s.closeClient(fd, "peer closed")
			return
		case err != nil:
			s.log.Warn("recv failed", zap.Int("fd", fd), zap.Error(err))
			s.closeClient(fd, "recv error")
			return
		}
		if _, err := s.conns.UpdateBuffer(fd, s.scratch[:n]); err != nil {
			s.log.Error("buffer update", zap.Int("fd", fd), zap.Error(err))
			return
		}
	}
	s.turnReady(conn, true)
}

func (s *Server) turnReady(conn *registry.Connection, full bool) {
	data := conn.Buffered()
	conn.State = registry.StateTurnReady
	s.metrics.Inc(control.MetricTurns)

	if len(data) <= 3 {
		s.metrics.Inc(control.MetricEmptyTurns)
		s.send(conn.FD, api.NoInput)
		s.resetClient(conn.FD)
		return
	}
	if strings.TrimRight(string(data), "\r\n") == api.ExitWord {
		s.closeClient(conn.FD, "client exit")
		return
	}
	conn.State = registry.StateDispatching
	s.pending.Add(&turn{fd: conn.FD, prompt: string(data), more: full})
	s.log.Debug("turn queued", zap.Int("fd", conn.FD), zap.Int("bytes", len(data)))
}

func (s *Server) onControl(fd int, _ reactor.FDEventType) {
	var in []byte
	for {
		n, err := transport.Recv(fd, s.scratch)
		if n > 0 {
			in = append(in, s.scratch[:n]...)
		}
		if errors.Is(err, transport.ErrWouldBlock) {
			break
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Warn("console read failed", zap.Error(err))
			}
			s.log.Info("console closed")
			if err := s.reactor.Unregister(fd); err != nil {
				s.log.Warn("unwatch console", zap.Error(err))
			}
			break
		}
	}
	if len(in) > 0 && s.console.Feed(in) == control.ActionExit {
		s.stop = true
	}
}

func (s *Server) submitConsole(prompt string) {
	s.pending.Add(&turn{fd: -1, prompt: prompt, console: true})
}

// dispatch drains the queue in arrival order, one provider call at a time.
func (s *Server) dispatch(ctx context.Context) {
	for s.pending.Length() > 0 {
		t := s.pending.Remove().(*turn)
		if t.console {
			s.completeConsole(ctx, t)
			continue
		}
		s.completeClient(ctx, t)
	}
}

func (s *Server) completeConsole(ctx context.Context, t *turn) {
	text, err := s.completer.Complete(ctx, t.prompt, s.state.Params())
	if err != nil {
		s.metrics.Inc(control.MetricCompletionErrors)
		s.log.Warn("console completion failed", zap.Error(err))
		return
	}
	s.metrics.Inc(control.MetricCompletions)
	s.log.Info("console completion", zap.String("prompt", t.prompt), zap.String("response", text))
	if _, err := fmt.Fprintf(s.out, "%s\n", text); err != nil {
		s.log.Warn("console output failed", zap.Error(err))
	}
}

func (s *Server) completeClient(ctx context.Context, t *turn) {
	conn, err := s.conns.Find(t.fd)
	if err != nil {
		s.log.Debug("turn dropped, client gone", zap.Int("fd", t.fd))
		return
	}
	text, err := s.completer.Complete(ctx, t.prompt, s.state.Params())
	reply := text + api.TurnDelimiter
	if err != nil {
		s.metrics.Inc(control.MetricCompletionErrors)
		s.log.Warn("completion failed", zap.Int("fd", t.fd), zap.Error(err))
		reply = api.TurnDelimiter
	} else {
		s.metrics.Inc(control.MetricCompletions)
	}
	conn.State = registry.StateReplying
	s.send(t.fd, reply)
	s.resetClient(t.fd)
	if t.more {
		// The edge that filled the buffer will not fire again for the rest.
		s.readClient(t.fd, true)
	}
}

func (s *Server) resetClient(fd int) {
	if err := s.conns.ResetBuffer(fd); err != nil {
		s.log.Warn("reset buffer", zap.Int("fd", fd), zap.Error(err))
	}
}

// send is best effort: failures are counted and logged, the client stays.
func (s *Server) send(fd int, msg string) {
	n, err := s.sender.Send(fd, []byte(msg))
	if err != nil {
		s.metrics.Inc(control.MetricSendFailures)
		s.log.Warn("send failed", zap.Int("fd", fd), zap.Int("sent", n), zap.Int("want", len(msg)), zap.Error(err))
	}
}

func (s *Server) closeClient(fd int, reason string) {
	if conn, err := s.conns.Find(fd); err == nil {
		conn.State = registry.StateClosing
	}
	if err := s.reactor.Unregister(fd); err != nil {
		s.log.Warn("unwatch client", zap.Int("fd", fd), zap.Error(err))
	}
	if err := s.conns.Unregister(fd); err != nil {
		s.log.Warn("unregister client", zap.Int("fd", fd), zap.Error(err))
	}
	if err := transport.Close(fd); err != nil {
		s.log.Warn("close client", zap.Int("fd", fd), zap.Error(err))
	}
	s.metrics.Inc(control.MetricClosed)
	s.log.Info("client disconnected", zap.Int("fd", fd), zap.String("reason", reason))
}
