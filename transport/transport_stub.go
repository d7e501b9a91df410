//go:build !linux
// +build !linux

// File: transport/transport_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package transport

import (
	"net/netip"

	"github.com/momentics/ncrelay/api"
)

func Listen(addr netip.AddrPort, backlog int) (int, netip.AddrPort, error) {
	return -1, netip.AddrPort{}, api.ErrNotSupported
}

func Accept(lfd int) (int, netip.AddrPort, error) {
	return -1, netip.AddrPort{}, api.ErrNotSupported
}

func Recv(fd int, p []byte) (int, error) { return 0, api.ErrNotSupported }

func Send(fd int, p []byte) (int, error) { return 0, api.ErrNotSupported }

func SetNonblock(fd int) (int, error) { return 0, api.ErrNotSupported }

func RestoreFlags(fd, flags int) error { return api.ErrNotSupported }

func Close(fd int) error { return api.ErrNotSupported }

// Waker is unavailable on this platform.
type Waker struct{}

func NewWaker() (*Waker, error) { return nil, api.ErrNotSupported }

func (w *Waker) FD() int { return -1 }

func (w *Waker) Wake() error { return api.ErrNotSupported }

func (w *Waker) Drain() {}

func (w *Waker) Close() error { return api.ErrNotSupported }
