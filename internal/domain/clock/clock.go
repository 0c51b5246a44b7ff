// Package clock supplies monotonic timestamps relative to a navigation-start
// epoch. The engine never reads wall time directly so that tests and replay
// harnesses can drive it with a manual clock.
package clock

import "time"

// Clock returns the elapsed monotonic time since the document's navigation
// start.
type Clock interface {
	Now() time.Duration
}

// monotonic wraps the host high-resolution timer.
type monotonic struct {
	epoch time.Time
}

// NewMonotonic creates a clock whose epoch is the moment of the call,
// i.e. navigation start for a freshly constructed document.
func NewMonotonic() Clock {
	return &monotonic{epoch: time.Now()}
}

// NewMonotonicAt creates a clock anchored at an explicit navigation start.
func NewMonotonicAt(epoch time.Time) Clock {
	return &monotonic{epoch: epoch}
}

func (c *monotonic) Now() time.Duration {
	return time.Since(c.epoch)
}

// Manual is a hand-driven clock for tests and deterministic replay.
type Manual struct {
	now time.Duration
}

// NewManual creates a manual clock starting at zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the current manual time.
func (c *Manual) Now() time.Duration {
	return c.now
}

// Set moves the clock to an absolute offset. Moving backwards is ignored so
// the clock stays monotonic.
func (c *Manual) Set(at time.Duration) {
	if at > c.now {
		c.now = at
	}
}

// Advance moves the clock forward by d.
func (c *Manual) Advance(d time.Duration) {
	if d > 0 {
		c.now += d
	}
}
