package ipc

import "github.com/google/uuid"

// ProblemType identifies which formulation a ProblemBatch carries,
// mirroring gat-solver-common's ProblemType exactly.
type ProblemType int

const (
	ProblemACOPF ProblemType = iota
	ProblemDCOPF
	ProblemLP
	ProblemSOCP
	ProblemMIP
	ProblemMINLP
)

func (t ProblemType) String() string {
	switch t {
	case ProblemACOPF:
		return "AC-OPF"
	case ProblemDCOPF:
		return "DC-OPF"
	case ProblemLP:
		return "LP"
	case ProblemSOCP:
		return "SOCP"
	case ProblemMIP:
		return "MIP"
	case ProblemMINLP:
		return "MINLP"
	default:
		return "unknown"
	}
}

// ProblemBatch is the data sent to an external solver subprocess: one
// network's worth of bus, generator, and branch arrays, index-aligned
// within each group, plus the problem type and solve knobs. Field names
// and grouping mirror gat-solver-common/src/problem.rs's ProblemBatch.
type ProblemBatch struct {
	ID              uuid.UUID
	Type            ProblemType
	ProtocolVersion int
	BaseMVA         float64
	Tolerance       float64
	MaxIterations   int
	TimeoutSeconds  uint64

	BusID    []int64
	BusName  []string
	BusVMin  []float64
	BusVMax  []float64
	BusPLoad []float64
	BusQLoad []float64
	BusType  []int32 // 1=PQ, 2=PV, 3=Slack
	BusVMag  []float64
	BusVAng  []float64

	GenID         []int64
	GenBusID      []int64
	GenPMin       []float64
	GenPMax       []float64
	GenQMin       []float64
	GenQMax       []float64
	GenCostC0     []float64
	GenCostC1     []float64
	GenCostC2     []float64
	GenVSetpoint  []float64
	GenStatus     []int32 // 1=on, 0=off

	BranchID     []int64
	BranchFrom   []int64
	BranchTo     []int64
	BranchR      []float64
	BranchX      []float64
	BranchB      []float64
	BranchRate   []float64
	BranchTap    []float64
	BranchShift  []float64
	BranchStatus []int32 // 1=on, 0=off
}

// NewProblemBatch returns an empty batch of the given type, stamped with
// a fresh ID and this package's PROTOCOL_VERSION, and the same default
// tolerance/iteration/base-MVA knobs gat-solver-common's ProblemBatch::new
// carries.
func NewProblemBatch(problemType ProblemType) *ProblemBatch {
	return &ProblemBatch{
		ID:              uuid.New(),
		Type:            problemType,
		ProtocolVersion: ProtocolVersion,
		BaseMVA:         100.0,
		Tolerance:       1e-6,
		MaxIterations:   100,
	}
}

// NumBuses, NumGenerators, and NumBranches report each group's size.
func (p *ProblemBatch) NumBuses() int      { return len(p.BusID) }
func (p *ProblemBatch) NumGenerators() int { return len(p.GenID) }
func (p *ProblemBatch) NumBranches() int   { return len(p.BranchID) }
