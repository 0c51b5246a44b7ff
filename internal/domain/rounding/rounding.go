// Package rounding quantizes exposed durations to a coarse grid.
//
// The grid exists purely to keep the timing output from doubling as a
// high-resolution side channel: every externally visible duration is the
// smallest grid multiple that is >= the raw value, and the raw value is
// discarded at finalization.
package rounding

import "time"

// DefaultGranularity is the canonical 8 time-unit grid.
const DefaultGranularity = 8 * time.Millisecond

// Option applies a configuration option to the Filter.
type Option func(*Filter)

// WithGranularity sets the rounding grid. Non-positive values are ignored.
func WithGranularity(g time.Duration) Option {
	return func(f *Filter) {
		if g > 0 {
			f.granularity = g
		}
	}
}

// Filter rounds raw durations up to the configured grid.
type Filter struct {
	granularity time.Duration
}

// NewFilter creates a rounding filter with configuration options.
func NewFilter(opts ...Option) *Filter {
	f := &Filter{
		granularity: DefaultGranularity,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Granularity returns the configured grid.
func (f *Filter) Granularity() time.Duration {
	return f.granularity
}

// Round maps a non-negative duration to the smallest grid multiple >= d.
// Negative inputs clamp to zero. Round is idempotent: a value already on
// the grid is returned unchanged.
func (f *Filter) Round(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	rem := d % f.granularity
	if rem == 0 {
		return d
	}
	return d + f.granularity - rem
}
