package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrEmptyAddr            = errors.New("addr must not be empty")
	ErrInvalidGranularity   = errors.New("granularity must be positive")
	ErrInvalidThreshold     = errors.New("duration threshold must not be negative")
	ErrInvalidQueueCapacity = errors.New("queue capacity must be positive")
)
