// SPDX-License-Identifier: MIT
// Package matrix - public API facades.
//
// Purpose:
//   - Provide thin, well-documented entry points for common tasks across the package.
//   - Avoid any logic duplication - each facade delegates to the canonical implementation.
//   - Keep function names explicit and intention-revealing to improve discoverability.
//
// Determinism & Policy:
//   - Facades never change the loop orders or numeric policy of underlying kernels.
//   - Validation is performed in the kernels; facades only compose or forward.

package matrix

import "math"

const (
	opNewZeros    = "NewZeros"
	opNewIdentity = "NewIdentity"
)

// ---------- Constructors (O(1) alloc + O(rc) zeroing by runtime) ----------

// NewZeros allocates an r×c zero matrix. Thin alias to NewDense kept for API
// discoverability alongside NewIdentity.
//
// Errors:
//   - ErrInvalidDimensions: on non-positive dimensions.
func NewZeros(rows, cols int) (*Dense, error) {
	d, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opNewZeros, err)
	}

	return d, nil
}

// NewIdentity allocates an n×n identity matrix (ones on the diagonal, zeros elsewhere).
// Used to seed the DC power-flow B' matrices' solve scratch and Newton's Jacobian factor
// preconditioning where an explicit identity baseline is needed.
func NewIdentity(n int) (*Dense, error) {
	I, err := NewZeros(n, n)
	if err != nil {
		return nil, matrixErrorf(opNewIdentity, err)
	}
	for i := 0; i < n; i++ {
		_ = I.Set(i, i, 1.0)
	}

	return I, nil
}

// AllClose checks element-wise |a-b| <= atol + rtol*|b| for identical shapes.
// Returns (true,nil) if every element satisfies the relation; (false,nil) otherwise.
// NaN never compares close to anything, including itself; +Inf equals +Inf; -Inf equals -Inf.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return false, matrixErrorf("AllClose", ErrDimensionMismatch)
	}
	rtol = math.Abs(rtol)
	atol = math.Abs(atol)

	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			av, err := a.At(i, j)
			if err != nil {
				return false, matrixErrorf("AllClose", err)
			}
			bv, err := b.At(i, j)
			if err != nil {
				return false, matrixErrorf("AllClose", err)
			}
			if math.IsNaN(av) || math.IsNaN(bv) {
				return false, nil
			}
			if math.IsInf(av, 1) && math.IsInf(bv, 1) {
				continue
			}
			if math.IsInf(av, -1) && math.IsInf(bv, -1) {
				continue
			}
			if math.Abs(av-bv) > atol+rtol*math.Abs(bv) {
				return false, nil
			}
		}
	}

	return true, nil
}
