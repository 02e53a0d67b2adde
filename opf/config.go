package opf

import "github.com/gatcore/gat/gatconfig"

// Option configures a solve via the functional-options pattern shared
// across the core (powerflow.Option, builder.Option).
type Option func(cfg *Config)

// Config holds every knob the four formulations accept. Not every field
// applies to every formulation (SolveEconomicDispatch ignores Tolerance
// and MaxIterations entirely; it always converges in one pass).
type Config struct {
	Tolerance     float64
	MaxIterations int
	WarmStart     *WarmStart
	Deadline      gatconfig.Deadline
	Cancel        *gatconfig.CancelToken
}

// DefaultTolerance is the default feasibility tolerance, in the
// formulation's native units (MW for DC/SOCP balance residuals, p.u. for
// AC mismatch).
const DefaultTolerance = 1e-6

// DefaultMaxIterations bounds both the active-set outer loop (DC, SOCP)
// and the penalty-method outer loop (AC).
const DefaultMaxIterations = 50

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

// WithTolerance overrides DefaultTolerance.
func WithTolerance(tol float64) Option {
	return func(cfg *Config) { cfg.Tolerance = tol }
}

// WithMaxIterations overrides DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(cfg *Config) { cfg.MaxIterations = n }
}

// WithWarmStart seeds the solve's initial point.
func WithWarmStart(ws *WarmStart) Option {
	return func(cfg *Config) { cfg.WarmStart = ws }
}

// WithDeadline sets a wall-clock cutoff checked at outer-iteration
// boundaries.
func WithDeadline(d gatconfig.Deadline) Option {
	return func(cfg *Config) { cfg.Deadline = d }
}

// WithCancelToken sets a token polled at outer-iteration boundaries.
func WithCancelToken(tok *gatconfig.CancelToken) Option {
	return func(cfg *Config) { cfg.Cancel = tok }
}
