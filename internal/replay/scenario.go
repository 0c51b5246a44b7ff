package replay

import "time"

// stepKind selects which host notification a step drives.
type stepKind int

const (
	stepEvent stepKind = iota
	stepCheckpoint
	stepCancel
)

// step is one host notification in a scripted scenario. Offsets are
// relative to the scenario start on the simulated document timeline.
type step struct {
	kind        stepKind
	eventType   string
	sourceID    string
	at          time.Duration
	handlerCost time.Duration
	cancelable  bool
}

// Scenario is a scripted burst of input against one document.
type Scenario struct {
	Name  string
	Steps []step

	// Length is how far the document timeline advances while the
	// scenario plays.
	Length time.Duration

	// WantInteractions is how many committed interactions the scenario
	// should add to the document's interaction counter.
	WantInteractions int64
}

func event(eventType, sourceID string, at, cost time.Duration, cancelable bool) step {
	return step{
		kind:        stepEvent,
		eventType:   eventType,
		sourceID:    sourceID,
		at:          at,
		handlerCost: cost,
		cancelable:  cancelable,
	}
}

func checkpoint(at time.Duration) step {
	return step{kind: stepCheckpoint, at: at}
}

func cancel(sourceID string, at time.Duration) step {
	return step{kind: stepCancel, sourceID: sourceID, at: at}
}
