// Package pool
// Author: momentics <momentics@gmail.com>
//
// Memory layer for ncrelay.
// Provides a generic sync.Pool wrapper and the fixed-capacity byte pool that
// backs every connection's receive buffer.
// See objpool.go and bytepool.go for implementation details.
package pool
