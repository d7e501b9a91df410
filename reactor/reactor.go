// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral event reactor interface for descriptor readiness multiplexing.

package reactor

// FDEventType is a bitmask of readiness conditions.
type FDEventType uint32

const (
	EventRead FDEventType = 1 << iota
	EventWrite
	EventError
)

// FDCallback handles readiness of one descriptor. It runs on the goroutine
// that called Poll.
type FDCallback func(fd int, events FDEventType)

// Reactor watches descriptors and dispatches readiness to callbacks.
// A Reactor is driven by a single goroutine and is not safe for concurrent use.
type Reactor interface {
	// Register adds fd in edge-triggered mode.
	Register(fd int, events FDEventType, cb FDCallback) error

	// Unregister removes fd. Callbacks for fd still pending in the current
	// Poll pass are skipped.
	Unregister(fd int) error

	// Poll waits for readiness and dispatches callbacks.
	// timeoutMs < 0 blocks indefinitely. It returns the number of events handled.
	Poll(timeoutMs int) (int, error)

	// Registered returns the number of watched descriptors.
	Registered() int

	// Close releases the multiplexer descriptor.
	Close() error
}
