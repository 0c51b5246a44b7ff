// Package model contains domain models passed between layers.
package model

import "time"

// Handle identifies one in-flight event dispatch inside the pending table.
// The zero handle means the dispatch was rejected and nothing is tracked.
type Handle uint64

// ZeroHandle is returned for dispatches that do not produce a record.
const ZeroHandle Handle = 0

// EntryKind distinguishes ordinary timing records from the synthesized
// first-input record.
type EntryKind string

// Entry kinds exposed on finalized records.
const (
	KindEvent      EntryKind = "event"
	KindFirstInput EntryKind = "first-input"
)

// NoInteraction is the interaction id carried by records that are not part
// of a tracked interaction.
const NoInteraction uint64 = 0

// TimingRecord is one timing entry for a dispatched input event.
//
// Timestamps are monotonic offsets from the document's navigation start.
// Duration is always the rounded value; the raw high-resolution delta is
// never stored on a finalized record.
type TimingRecord struct {
	EventType       string
	StartTime       time.Duration // hardware/input timestamp
	ProcessingStart time.Duration // first handler began
	ProcessingEnd   time.Duration // last handler returned
	Duration        time.Duration // rounded startTime -> render checkpoint
	Cancelable      bool
	InteractionID   uint64 // 0 = not part of a tracked interaction
	EntryKind       EntryKind
	SourceID        string // input source (pointer id, keyboard), opaque
}

// HandlersRan reports whether any handler executed for this event.
// Zero-duration handler work is indistinguishable from no handler at all;
// that ambiguity is inherent to the timestamps.
func (r TimingRecord) HandlersRan() bool {
	return r.ProcessingEnd != r.ProcessingStart
}

// Clone returns a copy of the record with the given entry kind.
func (r TimingRecord) Clone(kind EntryKind) TimingRecord {
	c := r
	c.EntryKind = kind
	return c
}
