// Package counts maintains the per-document running counters: one per
// monitored event type plus the global interaction counter.
//
// Counters only increase for the lifetime of the document and reset with it.
// Reads are atomic snapshots that may lag records still in the pending
// table; no synchronization with in-flight finalizations is promised.
package counts

import (
	"sync"
	"sync/atomic"

	"github.com/lagtrace/lagtrace/pkg/metrics"
)

// Table holds the monotonic counters for one document.
type Table struct {
	mu      sync.RWMutex
	byType  map[string]int64
	interac atomic.Int64
}

// NewTable creates an empty count table.
func NewTable() *Table {
	return &Table{
		byType: make(map[string]int64),
	}
}

// Increment bumps the counter for an event type.
func (t *Table) Increment(eventType string) {
	t.mu.Lock()
	t.byType[eventType]++
	t.mu.Unlock()
	metrics.RecordFinalizedByType(eventType)
}

// IncrementInteractions bumps the global interaction counter.
func (t *Table) IncrementInteractions() {
	t.interac.Add(1)
}

// Count returns the current count for an event type.
func (t *Table) Count(eventType string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byType[eventType]
}

// Interactions returns the global interaction count.
func (t *Table) Interactions() int64 {
	return t.interac.Load()
}

// Snapshot returns a copy of all per-type counters. Safe to call from any
// goroutine; the copy is consistent per counter, not across counters.
func (t *Table) Snapshot() map[string]int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]int64, len(t.byType))
	for k, v := range t.byType {
		out[k] = v
	}
	return out
}
