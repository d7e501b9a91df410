//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import "github.com/momentics/ncrelay/api"

// DefaultMaxEvents bounds the events collected by one Poll call.
const DefaultMaxEvents = 20

// New returns an error for unsupported platforms.
func New(maxEvents int) (Reactor, error) {
	return nil, api.ErrNotSupported
}
