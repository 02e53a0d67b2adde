package opf

// Method identifies which of the four formulations produced a Solution.
type Method int

const (
	MethodEconomic Method = iota
	MethodDC
	MethodSOCP
	MethodAC
)

func (m Method) String() string {
	switch m {
	case MethodEconomic:
		return "economic"
	case MethodDC:
		return "dc"
	case MethodSOCP:
		return "socp"
	case MethodAC:
		return "ac"
	default:
		return "unknown"
	}
}

// WarmStartKind identifies which of the three warm-start variants a
// WarmStart carries. Not every formulation accepts every kind; SolveACOPF
// accepts all three, SolveDCOPF and SolveSOCP accept only Flat in this
// implementation (their own QP solves are cheap enough not to need one).
type WarmStartKind int

const (
	WarmStartFlat WarmStartKind = iota
	WarmStartDC
	WarmStartSOCP
)

func (k WarmStartKind) String() string {
	switch k {
	case WarmStartFlat:
		return "flat"
	case WarmStartDC:
		return "dc"
	case WarmStartSOCP:
		return "socp"
	default:
		return "unknown"
	}
}

// WarmStart seeds an iterative formulation's initial point. Flat leaves
// every field nil (callers get V=1, θ=0, P_g=(pmin+pmax)/2 by
// construction). DC carries angles and generator active power from a
// prior SolveDCOPF. SOCP carries the full V/θ/P/Q point from a prior
// SolveSOCP.
type WarmStart struct {
	Kind       WarmStartKind
	BusVMag    map[int]float64
	BusVAng    map[int]float64
	GeneratorP map[string]float64
	GeneratorQ map[string]float64
}

// OpfSolution is the common result shape every formulation returns.
type OpfSolution struct {
	Converged   bool
	Method      Method
	Iterations  int
	SolveTimeMS float64
	Objective   float64

	GeneratorP map[string]float64
	GeneratorQ map[string]float64

	BusVMag map[int]float64
	BusVAng map[int]float64

	BranchPFlow map[string]float64
	BranchQFlow map[string]float64

	BusLMP map[int]float64

	TotalLossesMW float64

	// BindingConstraints names every generator or branch bound active at
	// the returned point ("generator:NAME@pmax", "branch:NAME@thermal",
	// "bus:ID@vmax", ...), for callers inspecting why the dispatch landed
	// where it did.
	BindingConstraints []string
}
