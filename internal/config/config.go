// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Keep defaults in New and let Load layer file/env on top.
// - Durations are configured in milliseconds to match the time-unit grid
//   the proposals talk about.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for /metrics and /stats.
	Addr string `koanf:"addr"`

	// DurationThresholdMS is the minimum rounded duration (exclusive) for a
	// record to reach the dispatch queue. First-input records are exempt.
	DurationThresholdMS int `koanf:"duration_threshold_ms"`

	// GranularityMS is the rounding grid applied to every exposed duration.
	GranularityMS int `koanf:"granularity_ms"`

	// IdleWindowMS force-closes interaction sessions with no activity.
	IdleWindowMS int `koanf:"idle_window_ms"`

	// FallbackDeadlineMS bounds how long a record waits for a render
	// checkpoint before processingEnd is used instead.
	FallbackDeadlineMS int `koanf:"fallback_deadline_ms"`

	// QueueCapacity bounds the undelivered dispatch queue.
	QueueCapacity int `koanf:"queue_capacity"`

	// EmitZeroHandlerRecords opportunistically exposes slow records whose
	// handlers never ran.
	EmitZeroHandlerRecords bool `koanf:"emit_zero_handler_records"`

	// ReplayDocuments is how many simulated documents the demo daemon
	// replays per cycle.
	ReplayDocuments int `koanf:"replay_documents"`

	// ReplayIntervalMS is the pause between replay cycles in the demo daemon.
	ReplayIntervalMS int `koanf:"replay_interval_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9280",
		DurationThresholdMS: 50,
		GranularityMS:       8,
		IdleWindowMS:        1000,
		FallbackDeadlineMS:  500,
		QueueCapacity:       4096,
		ReplayDocuments:     4,
		ReplayIntervalMS:    2000,
	}
}

// DurationThreshold returns the threshold as a duration.
func (c *Config) DurationThreshold() time.Duration {
	return time.Duration(c.DurationThresholdMS) * time.Millisecond
}

// Granularity returns the rounding grid as a duration.
func (c *Config) Granularity() time.Duration {
	return time.Duration(c.GranularityMS) * time.Millisecond
}

// IdleWindow returns the session idle window as a duration.
func (c *Config) IdleWindow() time.Duration {
	return time.Duration(c.IdleWindowMS) * time.Millisecond
}

// FallbackDeadline returns the checkpoint fallback deadline as a duration.
func (c *Config) FallbackDeadline() time.Duration {
	return time.Duration(c.FallbackDeadlineMS) * time.Millisecond
}

// ReplayInterval returns the demo replay interval as a duration.
func (c *Config) ReplayInterval() time.Duration {
	return time.Duration(c.ReplayIntervalMS) * time.Millisecond
}
