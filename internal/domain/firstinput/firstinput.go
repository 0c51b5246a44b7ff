// Package firstinput detects the single first qualifying interaction of a
// document and emits its synthesized first-input record.
//
// The tracker is a one-shot state machine. A pointerdown cannot become first
// input on its own: if the gesture turns into a scroll the press is revoked,
// so the candidate is held until its session commits. The commit/revoke
// signal is the interaction tracker's session event stream, consumed here
// without any direct reference between the two components.
package firstinput

import (
	"github.com/lagtrace/lagtrace/internal/domain/interaction"
	"github.com/lagtrace/lagtrace/internal/domain/model"
)

// State of the first-input machine.
type State int

// Machine states.
const (
	StateWaiting State = iota
	StatePendingPointerDown
	StateDone
)

// qualifying lists the event types that can become first input.
var qualifying = map[string]bool{
	"keydown":     true,
	"mousedown":   true,
	"click":       true,
	"pointerdown": true,
}

// EmitFunc receives the synthesized first-input record.
type EmitFunc func(model.TimingRecord)

// Tracker emits at most one first-input record per document lifetime.
type Tracker struct {
	state  State
	held   model.TimingRecord
	heldID uint64
	emit   EmitFunc
}

// NewTracker creates a tracker in the waiting state.
func NewTracker(emit EmitFunc) *Tracker {
	return &Tracker{emit: emit}
}

// State returns the current machine state.
func (t *Tracker) State() State {
	return t.state
}

// Observe considers a finalized record as the first-input candidate.
// Records are observed with their (possibly provisional) interaction id
// already assigned.
func (t *Tracker) Observe(rec model.TimingRecord) {
	if t.state != StateWaiting || !qualifying[rec.EventType] {
		return
	}

	if rec.EventType == "pointerdown" {
		// Hold until the session commits; a scroll would revoke it.
		t.held = rec
		t.heldID = rec.InteractionID
		t.state = StatePendingPointerDown
		return
	}

	t.fire(rec)
}

// OnSessionEvent resolves a held pointerdown candidate. A commit emits it;
// a revoke discards it and a later event may still become first input.
func (t *Tracker) OnSessionEvent(ev interaction.SessionEvent) {
	if t.state != StatePendingPointerDown || ev.ID != t.heldID {
		return
	}

	switch ev.State {
	case interaction.StateCommitted:
		t.fire(t.held)
	case interaction.StateRevoked:
		t.held = model.TimingRecord{}
		t.heldID = 0
		t.state = StateWaiting
	}
}

func (t *Tracker) fire(rec model.TimingRecord) {
	t.state = StateDone
	t.held = model.TimingRecord{}
	t.heldID = 0
	if t.emit != nil {
		t.emit(rec.Clone(model.KindFirstInput))
	}
}
