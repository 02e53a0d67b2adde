// Package ybus builds a network's bus admittance matrix (Y-bus): the dense
// complex128 matrix every power-flow and OPF formulation in this module
// solves against. Construction is deterministic and pure — the same
// Network always yields a bit-identical Y up to floating-point
// associativity, because branches and shunts are visited in a fixed,
// documented order (see Build).
package ybus
