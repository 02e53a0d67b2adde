// Package matrix provides the dense real and complex linear-algebra kernels
// that back Y-bus construction, Newton-Raphson's Jacobian factorization, DC
// and fast-decoupled power flow, and the KKT systems solved by opf.
//
// The package provides:
//
//   - Dense, a row-major real matrix with Add/Sub/Mul/Hadamard/Transpose/Scale,
//     MatVec, Inverse (via LU), Eigen (Jacobi, symmetric), LU, and QR.
//   - ComplexDense, the same surface over complex128 for admittance matrices
//     and AC power-flow quantities.
//
// See the examples in this package for usage patterns.
package matrix
