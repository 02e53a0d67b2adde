package gatconfig

import "sync/atomic"

// CancelToken is an opaque, concurrency-safe cancellation flag polled at
// iteration boundaries by long-running solvers (outer penalty iteration,
// Newton iteration, scenario boundary). Firing it never panics a running
// solve; the solver observes it at its next poll point and returns a
// cancelled result with partial state preserved.
type CancelToken struct {
	fired atomic.Bool
}

// NewCancelToken returns a token in the not-fired state.
func NewCancelToken() *CancelToken { return &CancelToken{} }

// Cancel fires the token. Safe to call from any goroutine, any number of
// times; only the first call has an effect.
func (c *CancelToken) Cancel() {
	if c == nil {
		return
	}
	c.fired.Store(true)
}

// Cancelled reports whether Cancel has been called. A nil token is never
// cancelled, so callers may pass a nil *CancelToken to mean "no cancellation
// requested" without a separate existence check.
func (c *CancelToken) Cancelled() bool {
	if c == nil {
		return false
	}
	return c.fired.Load()
}
