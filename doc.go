// Package gat is a power-system analysis core: network modeling, Y-bus
// construction, AC/DC/fast-decoupled power flow, optimal power flow
// (economic dispatch, DC, SOCP relaxation, full AC), N-1 contingency
// screening, reliability Monte Carlo, and transmission expansion
// planning, with a solver-dispatch registry routing each formulation to
// an in-process or external backend.
//
// The module is organized by concern, one package per pipeline stage:
//
//	network/     — Bus/Generator/Load/Branch catalog and topology
//	ybus/        — admittance matrix construction
//	powerflow/   — Newton-Raphson AC, DC, and fast-decoupled solves
//	opf/         — economic dispatch, DC OPF, SOCP relaxation, full AC OPF
//	sensitivity/ — LODF-based N-1 screening with AC recheck escalation
//	reliability/ — Monte Carlo LOLE/EUE estimation
//	tep/         — transmission expansion planning problem construction
//	solverreg/   — formulation-to-backend dispatch registry
//	ipc/         — wire protocol and subprocess harness for external solvers
//	arena/       — bump allocator for solve-loop scratch state
//	units/       — per-unit/physical unit conversions
//	core/        — underlying graph primitives backing network's topology
//	matrix/      — dense real/complex linear-algebra kernels behind Y-bus,
//	               Jacobian factorization, and KKT solves
//	builder/     — deterministic grid-topology fixture builder (cmd/gatbench)
//	cmd/gatbench/ — internal benchmark/smoke CLI exercising the public API
package gat
