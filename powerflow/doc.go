// Package powerflow solves a network's steady-state operating point:
// Newton-Raphson AC, Fast-Decoupled, and DC power flow, each sharing the
// same Solution shape and entry conventions (Validate the network once,
// build Y-bus once, iterate to a tolerance or an iteration bound, never
// panic).
package powerflow
