// File: transport/transport.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "errors"

// ErrWouldBlock reports that a non-blocking operation has nothing to do right now.
var ErrWouldBlock = errors.New("transport: operation would block")

// Sender writes a payload to a descriptor without blocking.
type Sender interface {
	Send(fd int, p []byte) (int, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(fd int, p []byte) (int, error)

// Send calls f.
func (f SenderFunc) Send(fd int, p []byte) (int, error) { return f(fd, p) }
