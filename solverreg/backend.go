package solverreg

import (
	"github.com/gatcore/gat/network"
	"github.com/gatcore/gat/opf"
)

// Formulation names used by the in-process backend and by Default.
const (
	FormulationEconomicDispatch = "economic"
	FormulationDCOPF            = "dc"
	FormulationSOCP             = "socp"
	FormulationACOPF            = "ac"
	FormulationTEP              = "tep"
)

// InProcessBackend solves LinearProgram, ConicProgram and NonlinearProgram
// formulations directly in this process by calling opf's solve functions.
// It never supports MixedInteger: that class needs an external MIP solver
// (spec §4.4.5, §4.7), and no such backend is registered by Default.
type InProcessBackend struct{}

// ID identifies this backend in PreferBackend calls.
func (InProcessBackend) ID() string { return "in-process" }

// Supports reports true for every class opf itself can solve.
func (InProcessBackend) Supports(class ProblemClass) bool {
	switch class {
	case LinearProgram, ConicProgram, NonlinearProgram:
		return true
	default:
		return false
	}
}

// Available is always true: opf has no external dependency to be missing.
func (InProcessBackend) Available() bool { return true }

// SolveOPF runs the opf solve function matching the named formulation.
// name must be one of the Formulation* constants this backend supports;
// ErrUnknownFormulation is returned otherwise.
func (InProcessBackend) SolveOPF(name string, n *network.Network, opts ...opf.Option) (*opf.OpfSolution, error) {
	switch name {
	case FormulationEconomicDispatch:
		return opf.SolveEconomicDispatch(n, opts...)
	case FormulationDCOPF:
		return opf.SolveDCOPF(n, opts...)
	case FormulationSOCP:
		return opf.SolveSOCP(n, opts...)
	case FormulationACOPF:
		return opf.SolveACOPF(n, opts...)
	default:
		return nil, ErrUnknownFormulation
	}
}

// Default returns a registry pre-loaded with the four in-process OPF
// formulations plus a transmission-expansion MixedInteger formulation that
// has no registered backend, reflecting that tep's MILP always needs an
// external solver process (see ipc) and is never satisfiable in-process.
func Default() *Registry {
	r := NewRegistry()
	r.RegisterFormulation(Formulation{Name: FormulationEconomicDispatch, Class: LinearProgram})
	r.RegisterFormulation(Formulation{Name: FormulationDCOPF, Class: LinearProgram})
	r.RegisterFormulation(Formulation{Name: FormulationSOCP, Class: ConicProgram})
	r.RegisterFormulation(Formulation{Name: FormulationACOPF, Class: NonlinearProgram})
	r.RegisterFormulation(Formulation{Name: FormulationTEP, Class: MixedInteger})
	r.RegisterBackend(InProcessBackend{})
	return r
}
