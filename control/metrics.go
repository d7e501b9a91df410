// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime counters and debug probes for the relay.
// Thread-safe; the loop writes, anyone may read.

package control

import (
	"sort"
	"sync"
	"time"
)

// Metric names recorded by the relay.
const (
	MetricAccepted         = "connections.accepted"
	MetricClosed           = "connections.closed"
	MetricTurns            = "turns.total"
	MetricEmptyTurns       = "turns.empty"
	MetricCompletions      = "completions.ok"
	MetricCompletionErrors = "completions.failed"
	MetricNoticesSent      = "notices.sent"
	MetricNoticeFailures   = "notices.failed"
	MetricSendFailures     = "send.failed"
	MetricParamUpdates     = "params.updates"
)

// Sample is one reported value.
type Sample struct {
	Name  string
	Value any
}

// MetricsRegistry holds counters and named probes.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]uint64
	probes   map[string]func() any
	updated  time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]uint64),
		probes:   make(map[string]func() any),
	}
}

// Add increments a counter.
func (mr *MetricsRegistry) Add(key string, delta uint64) {
	mr.mu.Lock()
	mr.counters[key] += delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Inc increments a counter by one.
func (mr *MetricsRegistry) Inc(key string) { mr.Add(key, 1) }

// Get returns a counter value.
func (mr *MetricsRegistry) Get(key string) uint64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.counters[key]
}

// RegisterProbe inserts a named hook evaluated on every snapshot.
func (mr *MetricsRegistry) RegisterProbe(name string, fn func() any) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.probes[name] = fn
}

// Updated returns the time of the last counter change.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// Snapshot returns counters and probe results sorted by name.
func (mr *MetricsRegistry) Snapshot() []Sample {
	mr.mu.RLock()
	out := make([]Sample, 0, len(mr.counters)+len(mr.probes))
	for k, v := range mr.counters {
		out = append(out, Sample{Name: k, Value: v})
	}
	probes := make(map[string]func() any, len(mr.probes))
	for k, fn := range mr.probes {
		probes[k] = fn
	}
	mr.mu.RUnlock()

	// Probes run unlocked; they may read state owned by the caller.
	for k, fn := range probes {
		out = append(out, Sample{Name: k, Value: fn()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
