// Package config defines process configuration and its loading.
package config

import (
	"fmt"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address of the serve command.
	Addr string `koanf:"addr"`

	// Step is the frame step in seconds for frame-level metrics.
	Step float64 `koanf:"step"`

	// Collar is the DER forgiveness collar in seconds.
	Collar float64 `koanf:"collar"`

	// IgnoreOverlaps excludes overlapped reference speech from DER.
	IgnoreOverlaps bool `koanf:"ignore_overlaps"`

	// Nats reports information metrics in nats instead of bits.
	Nats bool `koanf:"nats"`

	// WorkerCount sets the number of batch scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory batch job queue.
	QueueSize int `koanf:"queue_size"`

	// MDEvalPath is the md-eval script used for DER.
	MDEvalPath string `koanf:"md_eval_path"`

	// DedupeSize is the initial capacity of the batch file id deduper.
	DedupeSize int `koanf:"dedupe_size"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		Step:           0.010,
		Collar:         0.250,
		IgnoreOverlaps: true,
		Nats:           false,
		WorkerCount:    runtime.NumCPU(),
		QueueSize:      1024,
		MDEvalPath:     "md-eval-22.pl",
		DedupeSize:     100_000,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case !(c.Step > 0):
		return fmt.Errorf("%w: step must be positive, got %v", ErrInvalidConfig, c.Step)
	case c.Collar < 0:
		return fmt.Errorf("%w: collar must not be negative, got %v", ErrInvalidConfig, c.Collar)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MDEvalPath == "":
		return fmt.Errorf("%w: md_eval_path must not be empty", ErrInvalidConfig)
	}
	return nil
}
