// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"io"
	"net/netip"
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/ncrelay/api"
	"github.com/momentics/ncrelay/control"
	"github.com/momentics/ncrelay/pool"
	"github.com/momentics/ncrelay/reactor"
	"github.com/momentics/ncrelay/registry"
	"github.com/momentics/ncrelay/transport"
)

// ErrAlreadyRunning is returned by a second concurrent Run.
var ErrAlreadyRunning = errors.New("server already running")

// DefaultPort is the TCP port used when none is configured.
const DefaultPort = 8888

// DefaultBacklog is the listen queue length.
const DefaultBacklog = 20

// Config holds the relay's socket and loop settings.
type Config struct {
	BindAddr   netip.AddrPort // listen address; port 0 picks a free one
	Backlog    int            // listen backlog
	BufferSize int            // per-connection turn buffer
	MaxEvents  int            // events collected per wait
	ControlFD  int            // operator console descriptor, -1 disables
	CPU        int            // pin the loop thread to this CPU, -1 leaves it floating
}

// DefaultConfig returns the stock settings: all IPv4 interfaces on port 8888
// with stdin as the console.
func DefaultConfig() *Config {
	return &Config{
		BindAddr:   netip.AddrPortFrom(netip.IPv4Unspecified(), DefaultPort),
		Backlog:    DefaultBacklog,
		BufferSize: pool.DefaultBufferSize,
		MaxEvents:  reactor.DefaultMaxEvents,
		ControlFD:  0,
		CPU:        -1,
	}
}

// turn is one prompt waiting for the provider. Console turns have no fd.
type turn struct {
	fd      int
	prompt  string
	console bool
	more    bool // the buffer filled up before the socket drained
}

// Server is the single-threaded relay: one reactor, one registry, one
// provider call in flight.
type Server struct {
	cfg       *Config
	completer api.Completer
	log       *zap.Logger
	out       io.Writer
	metrics   *control.MetricsRegistry
	params    api.Params
	sender    transport.Sender

	state   *control.State
	conns   *registry.Connections
	console *control.Console
	bufs    *pool.BytePool
	scratch []byte
	pending *queue.Queue

	reactor  reactor.Reactor
	lfd      int
	addr     netip.AddrPort
	waker    *transport.Waker
	ctlFlags int
	ctlSaved bool

	stop bool // loop-owned

	mu       sync.Mutex
	running  bool
	closed   bool
	tornDown bool
}
