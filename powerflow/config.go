package powerflow

import (
	"github.com/gatcore/gat/gatconfig"
)

// Option customizes a solve's Config, following the teacher's
// functional-options pattern (builder.BuilderOption, matrix.Option).
type Option func(cfg *Config)

// Config holds the parameters spec §4.3 names for every power-flow mode:
// tolerance, iteration bound, optional Q-limit enforcement, and the
// cooperative cancellation primitives shared across the core
// (gatconfig.Deadline, gatconfig.CancelToken).
type Config struct {
	Tolerance     float64
	MaxIterations int
	QLimits       bool
	Deadline      gatconfig.Deadline
	Cancel        *gatconfig.CancelToken
}

// DefaultTolerance is the default mismatch tolerance, in per-unit.
const DefaultTolerance = 1e-8

// DefaultMaxIterations is the default Newton/Fast-Decoupled iteration bound.
const DefaultMaxIterations = 30

func newConfig(opts ...Option) Config {
	cfg := Config{
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTolerance sets the mismatch convergence tolerance, in per-unit. A
// non-positive value is ignored.
func WithTolerance(tol float64) Option {
	return func(cfg *Config) {
		if tol > 0 {
			cfg.Tolerance = tol
		}
	}
}

// WithMaxIterations sets the iteration bound. A non-positive value is
// ignored.
func WithMaxIterations(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxIterations = n
		}
	}
}

// WithQLimits enables PV→PQ bus-type switching when a generator's
// reactive output would exceed its limits.
func WithQLimits(enabled bool) Option {
	return func(cfg *Config) { cfg.QLimits = enabled }
}

// WithDeadline attaches a wall-clock cutoff.
func WithDeadline(d gatconfig.Deadline) Option {
	return func(cfg *Config) { cfg.Deadline = d }
}

// WithCancelToken attaches a cooperative cancellation token.
func WithCancelToken(tok *gatconfig.CancelToken) Option {
	return func(cfg *Config) { cfg.Cancel = tok }
}
