package reliability

import (
	"runtime"

	"github.com/gatcore/gat/gatconfig"
)

// Option configures a Run call via the functional-options pattern shared
// across the core (powerflow.Option, opf.Option).
type Option func(cfg *Config)

// Config holds every knob Run accepts.
type Config struct {
	NScenarios  int
	Seed        uint64
	ThresholdMW float64
	MaxWorkers  int
	Deadline    gatconfig.Deadline
	Cancel      *gatconfig.CancelToken
}

// DefaultScenarioCount is the default Monte Carlo sample size.
const DefaultScenarioCount = 1000

// DefaultThresholdMW is the default per-scenario unserved-load threshold
// below which a scenario is not counted as a loss event.
const DefaultThresholdMW = 0.0

func newConfig(opts ...Option) Config {
	cfg := Config{
		NScenarios:  DefaultScenarioCount,
		ThresholdMW: DefaultThresholdMW,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	return cfg
}

// WithScenarioCount overrides DefaultScenarioCount.
func WithScenarioCount(n int) Option {
	return func(cfg *Config) { cfg.NScenarios = n }
}

// WithSeed sets the base RNG seed; each scenario draws its own stream
// from seed XOR scenario index, per spec §4.5's "split deterministically
// per scenario" requirement.
func WithSeed(seed uint64) Option {
	return func(cfg *Config) { cfg.Seed = seed }
}

// WithThresholdMW overrides DefaultThresholdMW.
func WithThresholdMW(mw float64) Option {
	return func(cfg *Config) { cfg.ThresholdMW = mw }
}

// WithMaxWorkers bounds the scenario worker pool size. A non-positive
// value falls back to runtime.GOMAXPROCS(0).
func WithMaxWorkers(n int) Option {
	return func(cfg *Config) { cfg.MaxWorkers = n }
}

// WithDeadline attaches a wall-clock cutoff, polled at scenario
// boundaries.
func WithDeadline(d gatconfig.Deadline) Option {
	return func(cfg *Config) { cfg.Deadline = d }
}

// WithCancelToken attaches a cooperative cancellation token, polled at
// scenario boundaries.
func WithCancelToken(tok *gatconfig.CancelToken) Option {
	return func(cfg *Config) { cfg.Cancel = tok }
}
