// Package engine wires the per-document components into the host-facing
// event-latency engine.
//
// One Engine exists per document: constructed at navigation, Close()d at
// document replacement. There is no cross-document state; every frame gets
// an independent instance so nothing leaks across the privacy boundary.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lagtrace/lagtrace/internal/adapters/counts"
	"github.com/lagtrace/lagtrace/internal/adapters/dispatch"
	"github.com/lagtrace/lagtrace/internal/adapters/pending"
	"github.com/lagtrace/lagtrace/internal/domain/clock"
	"github.com/lagtrace/lagtrace/internal/domain/firstinput"
	"github.com/lagtrace/lagtrace/internal/domain/interaction"
	"github.com/lagtrace/lagtrace/internal/domain/model"
	"github.com/lagtrace/lagtrace/internal/domain/rounding"
	"github.com/lagtrace/lagtrace/pkg/logger"
	"github.com/lagtrace/lagtrace/pkg/metrics"
)

const msPerDuration = float64(time.Millisecond)

// Engine is the per-document event-latency aggregation engine.
//
// All notify methods are serialized by a mutex; the host's dispatch
// pipeline drives them from one logical context, while DrainQueue and the
// count readers may be called from anywhere.
type Engine struct {
	mu sync.Mutex

	// Core components
	clock      clock.Clock
	filter     *rounding.Filter
	pending    *pending.Table
	tracker    *interaction.Tracker
	firstInput *firstinput.Tracker
	counts     *counts.Table
	queue      *dispatch.Queue

	// Records provisionally assigned to an uncommitted session, held back
	// from the dispatch queue until the session resolves.
	held map[uint64][]model.TimingRecord

	// Configuration
	granularity      time.Duration
	threshold        time.Duration
	idleWindow       time.Duration
	fallbackDeadline time.Duration
	queueCapacity    int
	emitZeroHandler  bool
	idSeed           *int64

	docID  string
	closed bool

	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock sets the timestamp source. Defaults to a monotonic clock
// anchored at construction (navigation start).
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithGranularity sets the duration rounding grid.
func WithGranularity(g time.Duration) Option {
	return func(e *Engine) {
		if g > 0 {
			e.granularity = g
		}
	}
}

// WithDurationThreshold sets the exposure threshold.
func WithDurationThreshold(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.threshold = d
		}
	}
}

// WithIdleWindow sets the interaction session idle window.
func WithIdleWindow(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.idleWindow = d
		}
	}
}

// WithFallbackDeadline bounds the wait for a render checkpoint.
func WithFallbackDeadline(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.fallbackDeadline = d
		}
	}
}

// WithQueueCapacity bounds the dispatch queue.
func WithQueueCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.queueCapacity = n
		}
	}
}

// WithZeroHandlerRecords opportunistically exposes records whose handlers
// never ran.
func WithZeroHandlerRecords(enabled bool) Option {
	return func(e *Engine) {
		e.emitZeroHandler = enabled
	}
}

// WithIDSeed makes interaction id allocation deterministic. Tests only.
func WithIDSeed(seed int64) Option {
	return func(e *Engine) {
		e.idSeed = &seed
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New constructs an engine for a fresh document.
func New(opts ...Option) *Engine {
	e := &Engine{
		granularity:      rounding.DefaultGranularity,
		threshold:        dispatch.DefaultDurationThreshold,
		idleWindow:       interaction.DefaultIdleWindow,
		fallbackDeadline: pending.DefaultFallbackDeadline,
		held:             make(map[uint64][]model.TimingRecord),
		docID:            uuid.New().String(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.clock == nil {
		e.clock = clock.NewMonotonic()
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}

	e.filter = rounding.NewFilter(rounding.WithGranularity(e.granularity))
	e.pending = pending.NewTable(e.clock, e.filter,
		pending.WithFallbackDeadline(e.fallbackDeadline),
	)
	e.counts = counts.NewTable()

	trackerOpts := []interaction.Option{interaction.WithIdleWindow(e.idleWindow)}
	if e.idSeed != nil {
		trackerOpts = append(trackerOpts, interaction.WithIDSeed(*e.idSeed))
	}
	e.tracker = interaction.NewTracker(trackerOpts...)

	queueOpts := []dispatch.Option{
		dispatch.WithDurationThreshold(e.threshold),
		dispatch.WithZeroHandlerRecords(e.emitZeroHandler),
	}
	if e.queueCapacity > 0 {
		queueOpts = append(queueOpts, dispatch.WithCapacity(e.queueCapacity))
	}
	e.queue = dispatch.NewQueue(queueOpts...)

	e.firstInput = firstinput.NewTracker(e.emitFirstInput)
	e.tracker.Subscribe(e.onSessionEvent)

	return e
}

// DocumentID returns the engine's document identity, for logging only.
func (e *Engine) DocumentID() string {
	return e.docID
}

// NotifyDispatchBegin reports that an event is about to be processed and
// returns the handle for follow-up notifications. Untrusted events and
// types outside the monitored families return the zero handle: synthetic
// input must never produce a record.
func (e *Engine) NotifyDispatchBegin(eventType string, timestamp time.Duration, cancelable, isTrusted bool, sourceID string) model.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return model.ZeroHandle
	}
	if !isTrusted {
		metrics.RecordIgnoredEvent("untrusted")
		return model.ZeroHandle
	}
	return e.pending.Begin(eventType, timestamp, cancelable, sourceID)
}

// NotifyHandlersRan reports that synchronous handlers finished for the
// dispatch identified by handle. Orphan handles are a silent no-op.
func (e *Engine) NotifyHandlersRan(h model.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || h == model.ZeroHandle {
		return
	}
	e.pending.MarkProcessingEnd(h)
}

// NotifyRenderCheckpoint reports that the document's rendering was brought
// up to date at the given timestamp. Every pending record is finalized,
// grouped, counted, and offered to the dispatch queue; idle sessions are
// swept.
func (e *Engine) NotifyRenderCheckpoint(timestamp time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	for _, rec := range e.pending.FinalizeAll(timestamp) {
		e.counts.Increment(rec.EventType)
		metrics.RecordFinalized(
			float64(rec.Duration)/msPerDuration,
			float64(rec.ProcessingEnd-rec.ProcessingStart)/msPerDuration,
		)

		provisional := e.tracker.Assign(&rec, timestamp)

		// First input observes candidates with their provisional id; a held
		// pointerdown resolves through the session event stream below.
		e.firstInput.Observe(rec)

		if provisional {
			e.held[rec.InteractionID] = append(e.held[rec.InteractionID], rec)
			continue
		}
		e.queue.Offer(rec)
	}

	e.tracker.Sweep(timestamp)
}

// NotifyInteractionCanceled reports that the platform re-interpreted the
// gesture for an input source (e.g. the press became a scroll). Any
// provisional session for that source is revoked.
func (e *Engine) NotifyInteractionCanceled(sourceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.tracker.RevokeSource(sourceID, e.clock.Now())
}

// DrainQueue empties the dispatch queue and returns its records FIFO.
func (e *Engine) DrainQueue() []model.TimingRecord {
	return e.queue.Drain()
}

// ReadCounts returns a snapshot of the per-event-type counters.
func (e *Engine) ReadCounts() map[string]int64 {
	return e.counts.Snapshot()
}

// ReadInteractionCount returns the global interaction counter.
func (e *Engine) ReadInteractionCount() int64 {
	return e.counts.Interactions()
}

// PendingLen returns the number of in-flight records, for host diagnostics.
func (e *Engine) PendingLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Len()
}

// Close tears the document down: all in-flight and undelivered state is
// discarded. The engine must not be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.pending.Clear()
	e.tracker.Close()
	e.queue.Clear()
	e.held = make(map[uint64][]model.TimingRecord)

	e.logger.Debug(context.Background(), "document torn down",
		logger.String("doc", e.docID),
	)
}

// onSessionEvent resolves held-back provisional records once their session
// commits or revokes, keeps the interaction counter, and forwards the
// outcome to first-input detection.
func (e *Engine) onSessionEvent(ev interaction.SessionEvent) {
	held := e.held[ev.ID]
	delete(e.held, ev.ID)

	switch ev.State {
	case interaction.StateCommitted:
		e.counts.IncrementInteractions()
		metrics.RecordInteractionCommitted()
	case interaction.StateRevoked:
		metrics.RecordInteractionRevoked()
		for i := range held {
			held[i].InteractionID = model.NoInteraction
		}
	}

	for _, rec := range held {
		e.queue.Offer(rec)
	}

	e.firstInput.OnSessionEvent(ev)
}

// emitFirstInput routes the synthesized first-input record to the queue,
// bypassing the duration threshold by entry kind.
func (e *Engine) emitFirstInput(rec model.TimingRecord) {
	metrics.RecordFirstInput()
	e.queue.Offer(rec)
}
