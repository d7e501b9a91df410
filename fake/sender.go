// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"errors"
	"sync"
)

// ErrBrokenPipe is returned for descriptors marked with Fail.
var ErrBrokenPipe = errors.New("fake: broken pipe")

// Sender records payloads per descriptor instead of writing them.
type Sender struct {
	mu   sync.Mutex
	sent map[int][]string
	fail map[int]bool
}

// NewSender returns an empty recorder.
func NewSender() *Sender {
	return &Sender{sent: make(map[int][]string), fail: make(map[int]bool)}
}

// Fail makes every later send to fd fail.
func (s *Sender) Fail(fd int) {
	s.mu.Lock()
	s.fail[fd] = true
	s.mu.Unlock()
}

// Send implements transport.Sender.
func (s *Sender) Send(fd int, p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[fd] {
		return 0, ErrBrokenPipe
	}
	s.sent[fd] = append(s.sent[fd], string(p))
	return len(p), nil
}

// Sent returns what was written to fd.
func (s *Sender) Sent(fd int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent[fd]...)
}
