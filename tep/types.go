package tep

import "fmt"

// CandidateLine is a line not yet built, available for construction at
// Cost. Its electrical parameters mirror network.Branch, since once
// built it behaves exactly like an ordinary line.
type CandidateLine struct {
	Name      string
	From, To  int // bus IDs
	X         float64 // series reactance, p.u.
	RatingMVA float64
	Cost      float64 // investment cost, same currency unit as generator cost
}

// Sense identifies a linear constraint's comparison operator.
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "=="
	default:
		return "?"
	}
}

// Constraint is one row of the assembled MILP: Sum(Coeffs[v]*v) Sense RHS.
type Constraint struct {
	Name    string
	Coeffs  map[string]float64
	Sense   Sense
	RHS     float64
}

// Bounds is a variable's feasible box, []float64{lower, upper}. A binary
// variable always carries Bounds{0, 1}.
type Bounds struct {
	Lower, Upper float64
}

// Problem is the solver-agnostic mixed-integer DC transmission expansion
// problem assembled by BuildProblem, per spec §4.7:
//
//	min  Sum(c_k * x_k) + Sum(c_g * P_g)
//	s.t. DC power balance at every bus
//	     disjunctive Big-M flow equation per candidate
//	     |P_k| <= rating_k * x_k per candidate
//	     |P_branch| <= rating_branch per existing branch
//	     x_k in {0, 1}
//
// Variables are named strings so a constraint's Coeffs map is readable
// without a side table: "theta:<busID>" for bus angles (slack excluded),
// "gen:<name>" for generator active power, "flow:<candidate>" for a
// candidate's free continuous flow variable, and "build:<candidate>" for
// its binary build decision.
type Problem struct {
	Objective   map[string]float64
	Bounds      map[string]Bounds
	BinaryVars  []string
	Constraints []Constraint

	// BigM is the constant used to relax each candidate's disjunctive
	// flow constraint when it is not built, per spec's fixed heuristic
	// M = 10 * max pre-expansion branch flow (see BuildProblem).
	BigM float64

	// Candidates is the candidate set this problem was built from, in
	// the same order BuildProblem received them — Evaluate and solution
	// formatting both walk it in this order.
	Candidates []CandidateLine

	baseMVA float64
}

// VariableNameTheta, VariableNameGen, VariableNameFlow, and
// VariableNameBuild format a Problem's variable names consistently
// between BuildProblem and any code reading back a solver's assignment.
func VariableNameTheta(busID int) string       { return fmt.Sprintf("theta:%d", busID) }
func VariableNameGen(name string) string       { return fmt.Sprintf("gen:%s", name) }
func VariableNameFlow(candidate string) string { return fmt.Sprintf("flow:%s", candidate) }
func VariableNameBuild(candidate string) string { return fmt.Sprintf("build:%s", candidate) }

// LineBuildDecision records one candidate's outcome in an Assignment.
// The core's formulation is purely binary (build or don't); a decoded
// decision never represents partial or multi-circuit construction.
type LineBuildDecision struct {
	CandidateName  string
	Built          bool
	InvestmentCost float64
	FlowMW         float64
}

// Solution is a candidate assignment decoded against a Problem, produced
// by Evaluate once an external MIP backend returns variable values.
type Solution struct {
	Optimal           bool
	TotalCost         float64
	InvestmentCost    float64
	OperatingCost     float64
	BuildDecisions    []LineBuildDecision
	GeneratorDispatch map[string]float64
	BusAngles         map[int]float64
	ExistingFlowMW    map[string]float64
	StatusMessage     string
}
