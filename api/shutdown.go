// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by components that own OS resources.
type GracefulShutdown interface {
	// Shutdown releases every descriptor and buffer owned by the component.
	// Calling it more than once is safe.
	Shutdown() error
}
