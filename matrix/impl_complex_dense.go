// Package matrix: ComplexDense is the complex128-valued sibling of Dense,
// used by the ybus and powerflow packages for admittance matrices and their
// LU factorizations. No library in the retrieved pack offers a complex
// linear-algebra type (no gonum, no BLAS binding), so it follows Dense's own
// row-major layout and method shapes rather than falling back to bare
// []complex128 slices scattered through caller code.
package matrix

import "fmt"

// complexDenseErrorf mirrors denseErrorf's message shape for the complex sibling.
func complexDenseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf(" ComplexDense.%s(%d,%d): %w", method, row, col, err)
}

// ComplexDense is a row-major complex128 matrix, structurally identical to
// Dense but over the complex field. It does not implement the real-valued
// Matrix interface; it is a parallel, purpose-built type.
type ComplexDense struct {
	r, c int
	data []complex128
}

// NewComplexDense creates an r×c ComplexDense initialized to zero.
func NewComplexDense(rows, cols int) (*ComplexDense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &ComplexDense{r: rows, c: cols, data: make([]complex128, rows*cols)}, nil
}

// Rows returns the number of rows.
func (m *ComplexDense) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *ComplexDense) Cols() int { return m.c }

func (m *ComplexDense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, complexDenseErrorf("At", row, col, ErrOutOfRange)
	}
	return row*m.c + col, nil
}

// At retrieves the element at (row, col).
func (m *ComplexDense) At(row, col int) (complex128, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, err
	}
	return m.data[off], nil
}

// Set writes v at (row, col).
func (m *ComplexDense) Set(row, col int, v complex128) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return err
	}
	m.data[off] = v
	return nil
}

// Add accumulates delta into the existing entry at (row, col); the
// accumulation pattern ybus.Build relies on for Y_ii/Y_jj/Y_ij/Y_ji, since
// every incident branch contributes independently to the same cell.
func (m *ComplexDense) Add(row, col int, delta complex128) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return err
	}
	m.data[off] += delta
	return nil
}

// Clone returns a deep copy.
func (m *ComplexDense) Clone() *ComplexDense {
	cp := make([]complex128, len(m.data))
	copy(cp, m.data)
	return &ComplexDense{r: m.r, c: m.c, data: cp}
}

// IsSymmetric reports whether m equals its own transpose within eps, used to
// assert the no-phase-shifter Y-bus symmetry invariant.
func (m *ComplexDense) IsSymmetric(eps float64) bool {
	if m.r != m.c {
		return false
	}
	for i := 0; i < m.r; i++ {
		for j := i + 1; j < m.c; j++ {
			a := m.data[i*m.c+j]
			b := m.data[j*m.c+i]
			d := a - b
			if real(d)*real(d)+imag(d)*imag(d) > eps*eps {
				return false
			}
		}
	}
	return true
}
