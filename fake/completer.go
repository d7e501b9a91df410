// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides in-memory doubles for the relay's provider and socket writers.
package fake

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/ncrelay/api"
)

// ErrProvider is what Completer returns for prompts starting with FailPrefix.
var ErrProvider = errors.New("fake: provider down")

// FailPrefix makes Completer fail the call.
const FailPrefix = "fail"

// Completer answers "echo:" + trimmed prompt and records every call.
// It tracks the highest number of calls seen in flight at once.
type Completer struct {
	Delay time.Duration

	mu       sync.Mutex
	prompts  []string
	params   []api.Params
	inflight atomic.Int32
	peak     atomic.Int32
}

// Complete implements api.Completer.
func (c *Completer) Complete(_ context.Context, prompt string, params api.Params) (string, error) {
	n := c.inflight.Add(1)
	defer c.inflight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}

	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.params = append(c.params, params)
	c.mu.Unlock()
	if c.Delay > 0 {
		time.Sleep(c.Delay)
	}

	if strings.HasPrefix(prompt, FailPrefix) {
		return "", api.NewCompletionError(api.CompletionNetwork, ErrProvider)
	}
	return "echo:" + strings.TrimSpace(prompt), nil
}

// Prompts returns the prompts received so far.
func (c *Completer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// LastParams returns the parameters of the latest call.
func (c *Completer) LastParams() api.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.params) == 0 {
		return api.Params{}
	}
	return c.params[len(c.params)-1]
}

// Peak returns the most calls ever in flight together.
func (c *Completer) Peak() int { return int(c.peak.Load()) }
