package sensitivity

import (
	"runtime"

	"github.com/gatcore/gat/gatconfig"
)

// Option configures ScreenContingencies via the functional-options pattern
// shared across the core (powerflow.Option, opf.Option, reliability.Option).
type Option func(cfg *Config)

// Config holds every knob ScreenContingencies accepts.
type Config struct {
	// SeverityFactor is the fraction of a branch's rating above which a
	// linear-estimate violation is escalated to a full AC recheck, since
	// LODF is only ~5% accurate near the rating boundary (spec §4.6).
	SeverityFactor float64
	MaxWorkers     int
	Deadline       gatconfig.Deadline
	Cancel         *gatconfig.CancelToken
}

// DefaultSeverityFactor escalates any linear-estimate violation exceeding
// 110% of a branch's rating to a full AC recheck.
const DefaultSeverityFactor = 1.10

func newConfig(opts ...Option) Config {
	cfg := Config{SeverityFactor: DefaultSeverityFactor}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	return cfg
}

// WithSeverityFactor overrides DefaultSeverityFactor.
func WithSeverityFactor(f float64) Option {
	return func(cfg *Config) {
		if f > 1.0 {
			cfg.SeverityFactor = f
		}
	}
}

// WithMaxWorkers bounds the contingency worker pool size. A non-positive
// value falls back to runtime.GOMAXPROCS(0).
func WithMaxWorkers(n int) Option {
	return func(cfg *Config) { cfg.MaxWorkers = n }
}

// WithDeadline attaches a wall-clock cutoff, polled between contingencies.
func WithDeadline(d gatconfig.Deadline) Option {
	return func(cfg *Config) { cfg.Deadline = d }
}

// WithCancelToken attaches a cooperative cancellation token, polled
// between contingencies.
func WithCancelToken(tok *gatconfig.CancelToken) Option {
	return func(cfg *Config) { cfg.Cancel = tok }
}
