package tep

import "github.com/gatcore/gat/gatconfig"

// Option configures BuildProblem via the functional-options pattern
// shared across the core (powerflow.Option, opf.Option, reliability.Option).
type Option func(cfg *Config)

// Config holds every knob BuildProblem accepts.
type Config struct {
	// BigMMultiplier scales the pre-expansion peak branch flow to
	// produce BigM. Spec fixes this at 10 as a documented Open Question
	// ("production systems often tune per-instance"); exposed here so a
	// caller can override it without forking the builder, but BuildProblem
	// still defaults to the spec's fixed value.
	BigMMultiplier float64
	// MaxBuilds caps how many candidates may be built simultaneously, 0
	// meaning unconstrained. Adds a single cardinality constraint
	// Sum(x_k) <= MaxBuilds.
	MaxBuilds int
	Deadline  gatconfig.Deadline
	Cancel    *gatconfig.CancelToken
}

// DefaultBigMMultiplier is spec's fixed Big-M sizing heuristic.
const DefaultBigMMultiplier = 10.0

func newConfig(opts ...Option) Config {
	cfg := Config{BigMMultiplier: DefaultBigMMultiplier}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithBigMMultiplier overrides DefaultBigMMultiplier.
func WithBigMMultiplier(m float64) Option {
	return func(cfg *Config) { cfg.BigMMultiplier = m }
}

// WithMaxBuilds caps the number of candidates that may be built at once.
func WithMaxBuilds(n int) Option {
	return func(cfg *Config) { cfg.MaxBuilds = n }
}

// WithDeadline attaches a wall-clock cutoff, polled while assembling
// per-candidate constraint rows.
func WithDeadline(d gatconfig.Deadline) Option {
	return func(cfg *Config) { cfg.Deadline = d }
}

// WithCancelToken attaches a cooperative cancellation token, polled
// while assembling per-candidate constraint rows.
func WithCancelToken(tok *gatconfig.CancelToken) Option {
	return func(cfg *Config) { cfg.Cancel = tok }
}
