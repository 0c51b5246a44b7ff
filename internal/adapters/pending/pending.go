// Package pending holds the per-document table of in-flight timing records
// awaiting finalization at the next render checkpoint.
//
// The table is owned by a single document context and is not safe for
// concurrent use; the engine serializes access (see internal/app).
package pending

import (
	"time"

	"github.com/lagtrace/lagtrace/internal/domain/clock"
	"github.com/lagtrace/lagtrace/internal/domain/model"
	"github.com/lagtrace/lagtrace/internal/domain/rounding"
	"github.com/lagtrace/lagtrace/pkg/metrics"
)

// DefaultFallbackDeadline bounds how long a record may wait for a render
// checkpoint before processingEnd is used as the checkpoint instead.
const DefaultFallbackDeadline = 500 * time.Millisecond

// Option applies a configuration option to the Table.
type Option func(*Table)

// WithFallbackDeadline sets the bounded wait for a render checkpoint.
// Non-positive values are ignored.
func WithFallbackDeadline(d time.Duration) Option {
	return func(t *Table) {
		if d > 0 {
			t.fallback = d
		}
	}
}

// Table maps dispatch handles to not-yet-finalized timing records.
type Table struct {
	clock    clock.Clock
	filter   *rounding.Filter
	fallback time.Duration

	next    model.Handle
	entries map[model.Handle]*model.TimingRecord
	order   []model.Handle // handles in creation order
}

// NewTable creates an empty pending table.
func NewTable(c clock.Clock, f *rounding.Filter, opts ...Option) *Table {
	t := &Table{
		clock:    c,
		filter:   f,
		fallback: DefaultFallbackDeadline,
		entries:  make(map[model.Handle]*model.TimingRecord),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Begin creates a pending record for a monitored event and returns its
// handle. Event types outside the monitored families are silently rejected
// with the zero handle; trust filtering happens before Begin, in the engine.
func (t *Table) Begin(eventType string, startTime time.Duration, cancelable bool, sourceID string) model.Handle {
	if !model.IsMonitored(eventType) {
		metrics.RecordIgnoredEvent("unmonitored")
		return model.ZeroHandle
	}

	now := t.clock.Now()
	t.next++
	h := t.next
	t.entries[h] = &model.TimingRecord{
		EventType:       eventType,
		StartTime:       startTime,
		ProcessingStart: now,
		ProcessingEnd:   now, // equal until handlers are reported
		Cancelable:      cancelable,
		EntryKind:       model.KindEvent,
		SourceID:        sourceID,
	}
	t.order = append(t.order, h)
	metrics.UpdatePendingSize(len(t.entries))
	return h
}

// MarkProcessingEnd records that synchronous handler execution finished.
// An unknown or already-finalized handle is a no-op.
func (t *Table) MarkProcessingEnd(h model.Handle) bool {
	rec, ok := t.entries[h]
	if !ok {
		metrics.RecordOrphanHandle()
		return false
	}
	rec.ProcessingEnd = t.clock.Now()
	return true
}

// FinalizeAll finalizes every pending record against the render checkpoint
// and empties the table. Records come back immutable, in dispatch order,
// with Duration rounded exactly once.
//
// A record whose processing finished more than the fallback deadline before
// the checkpoint is finalized against its own processingEnd instead, so a
// stalled rendering pipeline cannot inflate durations without bound.
func (t *Table) FinalizeAll(checkpoint time.Duration) []model.TimingRecord {
	if len(t.entries) == 0 {
		return nil
	}

	out := make([]model.TimingRecord, 0, len(t.entries))
	for _, h := range t.order {
		rec, ok := t.entries[h]
		if !ok {
			continue
		}
		effective := checkpoint
		if checkpoint > rec.ProcessingEnd+t.fallback {
			effective = rec.ProcessingEnd
		}
		rec.Duration = t.filter.Round(effective - rec.StartTime)
		out = append(out, *rec)
	}

	t.entries = make(map[model.Handle]*model.TimingRecord)
	t.order = t.order[:0]
	metrics.UpdatePendingSize(0)
	return out
}

// Len returns the number of in-flight records.
func (t *Table) Len() int {
	return len(t.entries)
}

// Clear drops all in-flight records without finalizing them. Used at
// document teardown so a replaced document never leaks pending state.
func (t *Table) Clear() {
	t.entries = make(map[model.Handle]*model.TimingRecord)
	t.order = t.order[:0]
	metrics.UpdatePendingSize(0)
}
