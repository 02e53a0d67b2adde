package gaterrors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel markers usable with errors.Is against the typed kinds below.
var (
	// ErrUnbounded marks an LP/QP/SOCP backend reporting an unbounded objective.
	ErrUnbounded = errors.New("gaterrors: unbounded objective")

	// ErrCancelled marks a cancel token that fired mid-solve.
	ErrCancelled = errors.New("gaterrors: cancelled")
)

// DataValidation reports a Network whose structure is invalid: a missing
// bus reference, negative impedance, non-positive base voltage, and so on.
// Raised once at a solver's entry, before any numerical work begins.
type DataValidation struct{ Detail string }

func (e *DataValidation) Error() string { return "gaterrors: data validation: " + e.Detail }

// NewDataValidation wraps detail as a *DataValidation.
func NewDataValidation(detail string) error { return &DataValidation{Detail: detail} }

// Infeasible reports a solver proving no feasible point exists (demand
// exceeds capacity, an infeasible LP, etc).
type Infeasible struct{ Detail string }

func (e *Infeasible) Error() string { return "gaterrors: infeasible: " + e.Detail }

// NewInfeasible wraps detail as an *Infeasible.
func NewInfeasible(detail string) error { return &Infeasible{Detail: detail} }

// Unbounded reports an LP/QP/SOCP backend whose objective is unbounded.
type Unbounded struct{}

func (e *Unbounded) Error() string { return ErrUnbounded.Error() }

func (e *Unbounded) Unwrap() error { return ErrUnbounded }

// NewUnbounded builds an *Unbounded.
func NewUnbounded() error { return &Unbounded{} }

// NumericalIssue reports a singular matrix, ill-conditioning, or NaN
// propagation, with enough context (bus, iteration) to debug.
type NumericalIssue struct{ Detail string }

func (e *NumericalIssue) Error() string { return "gaterrors: numerical issue: " + e.Detail }

// NewNumericalIssue wraps detail as a *NumericalIssue.
func NewNumericalIssue(detail string) error { return &NumericalIssue{Detail: detail} }

// ConvergenceFailure reports a solver that ran out of iterations with a
// finite residual. Callers still receive the best-effort partial solution;
// this error is informational context for that solution's converged=false.
type ConvergenceFailure struct {
	Iterations int
	Residual   float64
}

func (e *ConvergenceFailure) Error() string {
	return fmt.Sprintf("gaterrors: convergence failure after %d iterations (residual %.3e)", e.Iterations, e.Residual)
}

// NewConvergenceFailure builds a *ConvergenceFailure.
func NewConvergenceFailure(iterations int, residual float64) error {
	return &ConvergenceFailure{Iterations: iterations, Residual: residual}
}

// Timeout reports a deadline expiring mid-solve.
type Timeout struct{ Elapsed time.Duration }

func (e *Timeout) Error() string { return fmt.Sprintf("gaterrors: timeout after %s", e.Elapsed) }

// NewTimeout builds a *Timeout.
func NewTimeout(elapsed time.Duration) error { return &Timeout{Elapsed: elapsed} }

// BackendUnavailable reports a required external solver that is not
// installed or not matched by the registry for a problem class.
type BackendUnavailable struct{ ID string }

func (e *BackendUnavailable) Error() string {
	return "gaterrors: backend unavailable: " + e.ID
}

// NewBackendUnavailable builds a *BackendUnavailable.
func NewBackendUnavailable(id string) error { return &BackendUnavailable{ID: id} }

// ProtocolMismatch reports a subprocess IPC version disagreement.
type ProtocolMismatch struct {
	Expected int
	Got      int
}

func (e *ProtocolMismatch) Error() string {
	return fmt.Sprintf("gaterrors: protocol mismatch: expected %d, got %d", e.Expected, e.Got)
}

// NewProtocolMismatch builds a *ProtocolMismatch.
func NewProtocolMismatch(expected, got int) error {
	return &ProtocolMismatch{Expected: expected, Got: got}
}

// Cancelled reports a cancel token that fired; iterations and best-so-far
// state are preserved by the caller's partial solution, not by this error.
type Cancelled struct{}

func (e *Cancelled) Error() string { return ErrCancelled.Error() }

func (e *Cancelled) Unwrap() error { return ErrCancelled }

// NewCancelled builds a *Cancelled.
func NewCancelled() error { return &Cancelled{} }
