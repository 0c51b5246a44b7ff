// Package interaction groups finalized input records into user-perceived
// interactions and assigns each group its shared interaction id.
//
// Pointer sessions are provisional when opened: a pointerdown may later turn
// out to be the start of a scroll, in which case the session is revoked and
// its records keep id 0. Commit/revoke outcomes are published as session
// events so downstream consumers (dispatch holdback, first-input detection)
// never reference this package's internals directly.
package interaction

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/lagtrace/lagtrace/internal/domain/model"
)

// DefaultIdleWindow force-closes sessions with no activity for this long.
// Swept lazily at render checkpoints; the tracker manages no timers.
const DefaultIdleWindow = time.Second

// maxIDStride bounds the random gap between consecutively allocated ids.
const maxIDStride = 7

// SessionState tags the outcome published for a session.
type SessionState int

// Session outcomes. A session that has published neither is still pending.
const (
	StateCommitted SessionState = iota + 1
	StateRevoked
)

// SessionEvent is published exactly once per resolved session.
type SessionEvent struct {
	ID       uint64
	SourceID string
	State    SessionState
}

// Listener receives session events synchronously, in resolution order.
type Listener func(SessionEvent)

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithIdleWindow sets the idle window after which sessions are force-closed.
func WithIdleWindow(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.idleWindow = d
		}
	}
}

// WithIDSeed makes id allocation deterministic. Tests only; production
// trackers draw their seed from crypto randomness so ids are not orderable
// across documents.
func WithIDSeed(seed int64) Option {
	return func(t *Tracker) {
		t.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic ids are the point here
	}
}

// Tracker owns all live sessions for one document.
type Tracker struct {
	idleWindow time.Duration

	rng    *rand.Rand
	nextID uint64

	pointer     map[string]*session // keyed by input source id
	composition *session            // at most one IME composition at a time

	listeners []Listener
}

// NewTracker creates a tracker for a fresh document.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		idleWindow: DefaultIdleWindow,
		pointer:    make(map[string]*session),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		// uuid.New is backed by crypto/rand; the resulting id sequence is
		// unique per document and not orderable across documents.
		seed := int64(uuid.New().ID())<<32 ^ int64(uuid.New().ID())
		t.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // non-cryptographic stride source is fine once seeded randomly
	}
	t.nextID = uint64(t.rng.Uint32())
	return t
}

// Subscribe registers a listener for session commit/revoke events.
func (t *Tracker) Subscribe(fn Listener) {
	if fn != nil {
		t.listeners = append(t.listeners, fn)
	}
}

// Assign sets the interaction id on a finalized record and returns whether
// the assignment is still provisional (the record's session has neither
// committed nor revoked yet). Records outside the grouping allow-list keep
// id 0. Malformed input is a silent no-op.
func (t *Tracker) Assign(rec *model.TimingRecord, at time.Duration) bool {
	rec.InteractionID = model.NoInteraction

	switch rec.EventType {
	case "pointerdown", "touchstart":
		return t.assignPointerDown(rec, at)
	case "pointerup", "touchend":
		t.assignPointerUp(rec, at)
	case "click":
		t.assignClick(rec, at)
	case "pointercancel", "touchcancel":
		// The platform reported the gesture became something else.
		t.RevokeSource(rec.SourceID, at)
	case "keydown", "keyup":
		t.assignKey(rec, at)
	case "compositionstart":
		t.openComposition(rec.SourceID, at)
	case "compositionend":
		t.closeComposition()
	case "input":
		t.assignInput(rec, at)
	}
	return false
}

// RevokeSource discards the open session for an input source. An uncommitted
// session publishes StateRevoked so provisionally assigned ids can be reset
// to 0; a committed session is simply retired, its interaction already
// counted. Unknown sources are a no-op.
func (t *Tracker) RevokeSource(sourceID string, _ time.Duration) {
	s, ok := t.pointer[sourceID]
	if !ok {
		return
	}
	delete(t.pointer, sourceID)
	if !s.committed {
		t.publish(SessionEvent{ID: s.id, SourceID: s.sourceID, State: StateRevoked})
	}
}

// Sweep force-closes sessions idle past the configured window. Committed
// sessions retire quietly; uncommitted ones are discarded as revoked.
func (t *Tracker) Sweep(at time.Duration) {
	for src, s := range t.pointer {
		if s.idleSince(at) <= t.idleWindow {
			continue
		}
		delete(t.pointer, src)
		if !s.committed {
			t.publish(SessionEvent{ID: s.id, SourceID: s.sourceID, State: StateRevoked})
		}
	}
	if s := t.composition; s != nil && s.idleSince(at) > t.idleWindow {
		t.composition = nil
		if !s.committed {
			t.publish(SessionEvent{ID: s.id, SourceID: s.sourceID, State: StateRevoked})
		}
	}
}

// OpenSessions returns the number of live sessions.
func (t *Tracker) OpenSessions() int {
	n := len(t.pointer)
	if t.composition != nil {
		n++
	}
	return n
}

// Close discards all live sessions without publishing events. Document
// teardown only.
func (t *Tracker) Close() {
	t.pointer = make(map[string]*session)
	t.composition = nil
}

func (t *Tracker) assignPointerDown(rec *model.TimingRecord, at time.Duration) bool {
	if s, ok := t.pointer[rec.SourceID]; ok {
		if !s.committed {
			// Same source pressed again while the previous press is still
			// unresolved: the record joins the open session.
			s.touch(rec.EventType, at)
			rec.InteractionID = s.id
			return true
		}
		// A committed session lingers only to absorb its trailing click;
		// a fresh press retires it.
		delete(t.pointer, rec.SourceID)
	}

	s := newSession(t.allocID(), rec.SourceID, at)
	s.touch(rec.EventType, at)
	t.pointer[rec.SourceID] = s
	rec.InteractionID = s.id
	return true
}

func (t *Tracker) assignPointerUp(rec *model.TimingRecord, at time.Duration) {
	s, ok := t.pointer[rec.SourceID]
	if !ok {
		return
	}
	s.touch(rec.EventType, at)
	rec.InteractionID = s.id
	t.commit(s)
}

func (t *Tracker) assignClick(rec *model.TimingRecord, at time.Duration) {
	if s, ok := t.pointer[rec.SourceID]; ok {
		s.touch(rec.EventType, at)
		rec.InteractionID = s.id
		t.commit(s)
		// click is the terminating event; the session becomes history.
		delete(t.pointer, rec.SourceID)
		return
	}
	// No pointer lineage (e.g. keyboard activation of a button): the click
	// is a discrete interaction of its own.
	id := t.allocID()
	rec.InteractionID = id
	t.publish(SessionEvent{ID: id, SourceID: rec.SourceID, State: StateCommitted})
}

func (t *Tracker) assignKey(rec *model.TimingRecord, at time.Duration) {
	if t.composition != nil {
		// Key events inside IME composition are not standalone interactions.
		return
	}
	// Standalone key events open and immediately close a single-record
	// committed session, one per event type.
	id := t.allocID()
	rec.InteractionID = id
	t.publish(SessionEvent{ID: id, SourceID: rec.SourceID, State: StateCommitted})
}

func (t *Tracker) openComposition(sourceID string, at time.Duration) {
	if s := t.composition; s != nil && !s.committed {
		t.publish(SessionEvent{ID: s.id, SourceID: s.sourceID, State: StateRevoked})
	}
	t.composition = newSession(t.allocID(), sourceID, at)
}

func (t *Tracker) closeComposition() {
	s := t.composition
	t.composition = nil
	if s != nil && !s.committed {
		// Composition ended without any input event; nothing was typed.
		t.publish(SessionEvent{ID: s.id, SourceID: s.sourceID, State: StateRevoked})
	}
}

func (t *Tracker) assignInput(rec *model.TimingRecord, at time.Duration) {
	s := t.composition
	if s == nil {
		return
	}
	s.touch(rec.EventType, at)
	rec.InteractionID = s.id
	t.commit(s)
}

// commit marks a session committed and publishes StateCommitted exactly
// once, regardless of how many records join afterwards.
func (t *Tracker) commit(s *session) {
	if s.committed {
		return
	}
	s.committed = true
	t.publish(SessionEvent{ID: s.id, SourceID: s.sourceID, State: StateCommitted})
}

// allocID draws the next interaction id: monotonically increasing within
// the document with a random stride, never zero, never reused.
func (t *Tracker) allocID() uint64 {
	t.nextID += uint64(1 + t.rng.Intn(maxIDStride))
	if t.nextID == model.NoInteraction {
		t.nextID++
	}
	return t.nextID
}

func (t *Tracker) publish(ev SessionEvent) {
	for _, fn := range t.listeners {
		fn(ev)
	}
}
