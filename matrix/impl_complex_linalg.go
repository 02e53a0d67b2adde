package matrix

// LUComplex decomposes a square ComplexDense m = L*U via Doolittle's method
// with unit diagonal on L, no pivoting — the complex analogue of LU,
// trading pivoting stability for the same deterministic accumulation order.
func LUComplex(m *ComplexDense) (*ComplexDense, *ComplexDense, error) {
	if m == nil {
		return nil, nil, ErrNilMatrix
	}
	if m.r != m.c {
		return nil, nil, ErrNonSquare
	}

	n := m.r
	L, err := NewComplexDense(n, n)
	if err != nil {
		return nil, nil, err
	}
	U, err := NewComplexDense(n, n)
	if err != nil {
		return nil, nil, err
	}
	for i := 0; i < n; i++ {
		L.data[i*n+i] = 1
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var sum complex128
			for k := 0; k < i; k++ {
				sum += L.data[i*n+k] * U.data[k*n+j]
			}
			U.data[i*n+j] = m.data[i*n+j] - sum
		}
		pivot := U.data[i*n+i]
		if pivot == 0 {
			return nil, nil, ErrSingular
		}
		for j := i + 1; j < n; j++ {
			var sum complex128
			for k := 0; k < i; k++ {
				sum += L.data[j*n+k] * U.data[k*n+i]
			}
			L.data[j*n+i] = (m.data[j*n+i] - sum) / pivot
		}
	}

	return L, U, nil
}

// SolveComplex solves m*x = b for a square ComplexDense m via LUComplex
// followed by forward/backward substitution. Used by powerflow's linear
// solves over admittance submatrices.
func SolveComplex(m *ComplexDense, b []complex128) ([]complex128, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	if m.r != m.c {
		return nil, ErrNonSquare
	}
	if len(b) != m.r {
		return nil, ErrDimensionMismatch
	}

	L, U, err := LUComplex(m)
	if err != nil {
		return nil, err
	}

	n := m.r
	y := make([]complex128, n)
	for i := 0; i < n; i++ {
		var sum complex128
		for k := 0; k < i; k++ {
			sum += L.data[i*n+k] * y[k]
		}
		y[i] = b[i] - sum
	}

	x := make([]complex128, n)
	for i := n - 1; i >= 0; i-- {
		var sum complex128
		for k := i + 1; k < n; k++ {
			sum += U.data[i*n+k] * x[k]
		}
		pivot := U.data[i*n+i]
		if pivot == 0 {
			return nil, ErrSingular
		}
		x[i] = (y[i] - sum) / pivot
	}

	return x, nil
}
