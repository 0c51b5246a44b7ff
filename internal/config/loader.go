package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if LAGTRACE_CONFIG is set
//  3. env (prefix LAGTRACE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("LAGTRACE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: LAGTRACE_ADDR, LAGTRACE_GRANULARITY_MS, ...
	// Map env keys like LAGTRACE_QUEUE_CAPACITY -> queue_capacity (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("LAGTRACE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "lagtrace_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Config) validate() error {
	if c.Addr == "" {
		return ErrEmptyAddr
	}
	if c.GranularityMS <= 0 {
		return fmt.Errorf("%w: granularity_ms=%d", ErrInvalidGranularity, c.GranularityMS)
	}
	if c.DurationThresholdMS < 0 {
		return fmt.Errorf("%w: duration_threshold_ms=%d", ErrInvalidThreshold, c.DurationThresholdMS)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("%w: queue_capacity=%d", ErrInvalidQueueCapacity, c.QueueCapacity)
	}
	return nil
}
