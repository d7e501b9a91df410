// File: transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw non-blocking descriptor primitives for the relay loop: listening TCP
// sockets, accept, receive, best-effort send, descriptor flag management and
// an eventfd based waker. Linux only; other platforms get ErrNotSupported.

package transport
