// Package opf solves for an economically optimal operating point rather
// than just a feasible one. Four formulations share one OpfSolution shape
// and one entry convention (validate once, never panic, return a
// best-effort result with converged=false rather than discard work):
//
//   - SolveEconomicDispatch: merit-order dispatch ignoring network
//     constraints, the cheapest fallback.
//   - SolveDCOPF: linear(ized) generator dispatch plus bus angles, convex
//     quadratic cost, solved as an equality-constrained QP over an
//     active set of generator and branch bounds.
//   - SolveSOCP: the DistFlow branch-flow relaxation of AC OPF, convex by
//     construction, solved the same active-set way over its own variables.
//   - SolveACOPF: the full nonlinear AC balance, solved by an outer
//     penalty loop around an L-BFGS inner solve.
//
// None of these delegate to an external solver process; solverreg treats
// them as the in-process backend for the LinearProgram, ConicProgram, and
// NonlinearProgram problem classes. MixedInteger (tep) has no in-process
// backend and always requires an external one.
package opf
