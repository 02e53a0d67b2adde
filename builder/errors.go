// SPDX-License-Identifier: MIT
// Package: lvlath/builder
//
// errors.go — sentinel errors for the builder package.
//
// Error policy (explicit and strict):
//   • Only sentinel variables (package-level) are exposed.
//   • Callers MUST use errors.Is(err, ErrX) to branch on semantics.
//   • Sentinels are NEVER wrapped with formatted strings at definition site.
//   • Implementations SHOULD attach context using `%w`.
//   • Algorithms MUST NOT panic at runtime.

package builder

import (
	"errors"
)

// ErrTooFewVertices indicates that a numeric parameter (rows, cols, n, ...)
// is smaller than the allowed minimum for the requested constructor.
// Usage: if errors.Is(err, ErrTooFewVertices) { /* report invalid size */ }.
var ErrTooFewVertices = errors.New("builder: parameter too small")

// ErrConstructFailed indicates that BuildGraph could not apply a constructor
// (nil constructor in the chain, or a constructor's own internal failure).
// Usage: if errors.Is(err, ErrConstructFailed) { /* inspect wrapped cause */ }.
var ErrConstructFailed = errors.New("builder: construction failed")
