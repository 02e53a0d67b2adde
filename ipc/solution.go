package ipc

import (
	"strconv"

	"github.com/google/uuid"
)

// SolutionStatus reports a solved ProblemBatch's outcome, mirroring
// gat-solver-common's SolutionStatus exactly.
type SolutionStatus int

const (
	StatusOptimal SolutionStatus = iota
	StatusInfeasible
	StatusUnbounded
	StatusTimeout
	StatusIterationLimit
	StatusNumericalError
	StatusError
	StatusUnknown
)

func (s SolutionStatus) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusTimeout:
		return "timeout"
	case StatusIterationLimit:
		return "iteration_limit"
	case StatusNumericalError:
		return "numerical_error"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// IsSuccess reports whether the status represents a usable optimum.
func (s SolutionStatus) IsSuccess() bool { return s == StatusOptimal }

// IsFailure reports whether the status is a definite non-success (as
// opposed to StatusUnknown, which means "undetermined", not "failed").
func (s SolutionStatus) IsFailure() bool { return !s.IsSuccess() && s != StatusUnknown }

// SolutionBatch is the data an external solver subprocess writes back:
// solve status plus index-aligned bus, generator, and branch result
// arrays, matching the ProblemBatch that produced it. Field names and
// grouping mirror gat-solver-common/src/solution.rs's SolutionBatch.
type SolutionBatch struct {
	ID           uuid.UUID
	Status       SolutionStatus
	Objective    float64
	Iterations   int
	SolveTimeMS  int64
	ErrorMessage *string

	BusID   []int64
	BusVMag []float64
	BusVAng []float64
	BusLMP  []float64

	GenID []int64
	GenP  []float64
	GenQ  []float64

	BranchID     []int64
	BranchPFrom  []float64
	BranchQFrom  []float64
	BranchPTo    []float64
	BranchQTo    []float64
}

// ErrorSolution builds a StatusError batch carrying message as its
// ErrorMessage, the objective set to NaN-equivalent (left at the status's
// natural default of 0, since Go has no silent-NaN-in-a-struct-literal
// idiom worth fighting — callers check Status, not Objective, on failure).
func ErrorSolution(message string) *SolutionBatch {
	return &SolutionBatch{Status: StatusError, ErrorMessage: &message}
}

// InfeasibleSolution builds a StatusInfeasible batch.
func InfeasibleSolution(message string) *SolutionBatch {
	s := ErrorSolution(message)
	s.Status = StatusInfeasible
	return s
}

// TimeoutSolution builds a StatusTimeout batch with a formatted message.
func TimeoutSolution(seconds uint64) *SolutionBatch {
	s := ErrorSolution("")
	s.Status = StatusTimeout
	msg := timeoutMessage(seconds)
	s.ErrorMessage = &msg
	return s
}

func timeoutMessage(seconds uint64) string {
	if seconds == 1 {
		return "solver timed out after 1 second"
	}
	return "solver timed out after " + strconv.FormatUint(seconds, 10) + " seconds"
}

// IsOptimal reports whether the solution's status is StatusOptimal.
func (s *SolutionBatch) IsOptimal() bool { return s.Status.IsSuccess() }

// NumBuses, NumGenerators, and NumBranches report each result group's size.
func (s *SolutionBatch) NumBuses() int      { return len(s.BusID) }
func (s *SolutionBatch) NumGenerators() int { return len(s.GenID) }
func (s *SolutionBatch) NumBranches() int   { return len(s.BranchID) }
