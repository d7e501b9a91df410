// File: registry/connections.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Connection bookkeeping on top of the generic List.

package registry

import (
	"fmt"
	"time"

	"github.com/momentics/ncrelay/api"
	"github.com/momentics/ncrelay/pool"
)

// ConnState is the per-connection position in the receive/reply cycle.
type ConnState int

const (
	StateIdle ConnState = iota
	StateReceiving
	StateTurnReady
	StateDispatching
	StateReplying
	StateClosing
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReceiving:
		return "receiving"
	case StateTurnReady:
		return "turn-ready"
	case StateDispatching:
		return "dispatching"
	case StateReplying:
		return "replying"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Connection is one accepted client and its partially received turn.
type Connection struct {
	FD         int
	Peer       string
	AcceptedAt time.Time
	State      ConnState

	buf []byte
	n   int
}

// Buffered returns the bytes received so far. The slice aliases the buffer.
func (c *Connection) Buffered() []byte { return c.buf[:c.n] }

// Len returns the number of buffered bytes.
func (c *Connection) Len() int { return c.n }

// Cap returns the buffer capacity.
func (c *Connection) Cap() int { return len(c.buf) }

// Full reports whether no more bytes fit.
func (c *Connection) Full() bool { return c.n >= len(c.buf) }

func (c *Connection) write(p []byte) int {
	n := copy(c.buf[c.n:], p)
	c.n += n
	return n
}

func (c *Connection) reset() {
	clear(c.buf[:c.n])
	c.n = 0
}

func sameFD(elem, key *Connection) bool { return elem.FD == key.FD }

// Connections tracks live connections in accept order. Descriptors are unique.
// Not safe for concurrent use; the reactor loop owns it.
type Connections struct {
	list *List[*Connection]
	bufs *pool.BytePool
}

// NewConnections builds an empty registry drawing buffers from bufs.
func NewConnections(bufs *pool.BytePool) *Connections {
	if bufs == nil {
		bufs = pool.NewBytePool(pool.DefaultBufferSize)
	}
	c := &Connections{bufs: bufs}
	c.list = NewList(WithRelease(c.releaseConn))
	return c
}

func (cs *Connections) releaseConn(c *Connection) {
	if c.buf != nil {
		cs.bufs.PutBuffer(c.buf)
		c.buf = nil
		c.n = 0
	}
}

// Register adds a connection for fd.
func (cs *Connections) Register(fd int, peer string) (*Connection, error) {
	if cs.list.Locate(&Connection{FD: fd}, sameFD) >= 0 {
		return nil, fmt.Errorf("register fd %d: %w", fd, api.ErrAlreadyExists)
	}
	c := &Connection{
		FD:         fd,
		Peer:       peer,
		AcceptedAt: time.Now(),
		State:      StateIdle,
		buf:        cs.bufs.GetBuffer(),
	}
	cs.list.Append(c)
	return c, nil
}

// Find returns the connection for fd.
func (cs *Connections) Find(fd int) (*Connection, error) {
	i := cs.list.Locate(&Connection{FD: fd}, sameFD)
	if i < 0 {
		return nil, fmt.Errorf("find fd %d: %w", fd, api.ErrNotFound)
	}
	return cs.list.Get(i)
}

// UpdateBuffer appends p to the connection's buffer, up to its capacity, and
// returns how many bytes were taken.
func (cs *Connections) UpdateBuffer(fd int, p []byte) (int, error) {
	c, err := cs.Find(fd)
	if err != nil {
		return 0, err
	}
	n := c.write(p)
	if c.n > 0 && c.State == StateIdle {
		c.State = StateReceiving
	}
	return n, nil
}

// ResetBuffer discards buffered bytes and returns the connection to Idle.
func (cs *Connections) ResetBuffer(fd int) error {
	c, err := cs.Find(fd)
	if err != nil {
		return err
	}
	c.reset()
	c.State = StateIdle
	return nil
}

// Unregister removes fd and releases its buffer. Closing fd is up to the caller.
func (cs *Connections) Unregister(fd int) error {
	if cs.list.Remove(&Connection{FD: fd}, sameFD) < 0 {
		return fmt.Errorf("unregister fd %d: %w", fd, api.ErrNotFound)
	}
	return nil
}

// ForEach visits connections in accept order until fn returns false.
func (cs *Connections) ForEach(fn func(c *Connection) bool) {
	cs.list.Each(func(_ int, c *Connection) bool {
		return fn(c)
	})
}

// Descriptors returns the registered descriptors in accept order.
func (cs *Connections) Descriptors() []int {
	fds := make([]int, 0, cs.list.Len())
	cs.ForEach(func(c *Connection) bool {
		fds = append(fds, c.FD)
		return true
	})
	return fds
}

// Len returns the number of live connections.
func (cs *Connections) Len() int { return cs.list.Len() }

// Clear unregisters everything, releasing every buffer.
func (cs *Connections) Clear() { cs.list.Clear() }
