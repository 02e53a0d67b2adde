// Package gaterrors defines the shared error-kind taxonomy used across every
// solver package in the module: data validation, infeasibility, unbounded
// objectives, numerical trouble, convergence failure, timeouts, missing
// backends, IPC protocol mismatches, and cancellation.
//
// Each kind is a distinct exported type implementing error, so callers can
// branch on the failure with errors.As instead of string matching. Solvers
// never panic on a user-triggered condition; every failure mode here is a
// value returned from the public API, per the propagation policy: data
// validation is checked once at a solver's entry and never relied upon
// downstream.
package gaterrors
