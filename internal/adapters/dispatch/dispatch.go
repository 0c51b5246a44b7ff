// Package dispatch holds finalized records that cleared the exposure policy
// until the host's observer surface drains them.
//
// The queue is the only hand-off point to code outside the engine, so the
// threshold policy lives here: slow records with real handler work pass,
// first-input records always pass, everything else is dropped.
package dispatch

import (
	"sync"
	"time"

	"github.com/lagtrace/lagtrace/internal/domain/model"
	"github.com/lagtrace/lagtrace/pkg/metrics"
)

// Default queue configuration constants.
const (
	// DefaultDurationThreshold is the canonical 50 time-unit exposure
	// threshold. Treat as configuration, not law; the proposals moved it
	// between revisions.
	DefaultDurationThreshold = 50 * time.Millisecond

	defaultCapacity = 4096
)

// Option applies a configuration option to the Queue.
type Option func(*Queue)

// WithCapacity bounds the number of undelivered records.
func WithCapacity(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// WithDurationThreshold sets the minimum rounded duration for exposure.
func WithDurationThreshold(d time.Duration) Option {
	return func(q *Queue) {
		if d >= 0 {
			q.threshold = d
		}
	}
}

// WithZeroHandlerRecords opportunistically exposes records whose handlers
// never ran. Host discretion either way.
func WithZeroHandlerRecords(enabled bool) Option {
	return func(q *Queue) {
		q.emitZeroHandler = enabled
	}
}

// Queue is a bounded FIFO of finalized, policy-cleared records.
type Queue struct {
	mu              sync.Mutex
	records         []model.TimingRecord
	capacity        int
	threshold       time.Duration
	emitZeroHandler bool
}

// NewQueue creates a dispatch queue with configuration options.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		capacity:  defaultCapacity,
		threshold: DefaultDurationThreshold,
	}
	for _, opt := range opts {
		opt(q)
	}
	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Offer applies the exposure policy and enqueues the record if it passes.
// Returns whether the record was queued. When the queue is full the oldest
// undelivered record is dropped to make room; the engine must stay
// available even if the observer never drains.
func (q *Queue) Offer(rec model.TimingRecord) bool {
	if !q.admits(rec) {
		metrics.RecordBelowThreshold()
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.records) >= q.capacity {
		q.records = q.records[1:]
		metrics.RecordQueueOverflow()
	}
	q.records = append(q.records, rec)
	metrics.RecordQueued()
	metrics.UpdateQueueSize(len(q.records))
	return true
}

// admits applies the threshold policy.
func (q *Queue) admits(rec model.TimingRecord) bool {
	if rec.EntryKind == model.KindFirstInput {
		// First input is about presence and delay, not noise filtering.
		return true
	}
	if rec.Duration <= q.threshold {
		return false
	}
	return rec.HandlersRan() || q.emitZeroHandler
}

// Drain empties the queue and returns the records in FIFO order.
// Non-blocking; an empty queue drains to nil.
func (q *Queue) Drain() []model.TimingRecord {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.records) == 0 {
		return nil
	}
	out := q.records
	q.records = nil
	metrics.RecordDrain(len(out))
	metrics.UpdateQueueSize(0)
	return out
}

// Len returns the number of undelivered records.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

// Clear drops all undelivered records. Document teardown only.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = nil
	metrics.UpdateQueueSize(0)
}
