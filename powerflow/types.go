package powerflow

// Solution is the common result shape every power-flow mode (Newton AC,
// Fast-Decoupled, DC) returns.
type Solution struct {
	// Converged reports whether the mismatch fell under the configured
	// tolerance before the iteration bound. An unconverged Solution still
	// carries the best-effort state reached so far (spec §7).
	Converged bool
	// Iterations is the number of iterations actually performed.
	Iterations int
	// Residual is the largest absolute mismatch at the final iterate, in
	// per-unit.
	Residual float64

	// BusVMag is voltage magnitude per bus ID, in per-unit.
	BusVMag map[int]float64
	// BusVAng is voltage angle per bus ID, in radians.
	BusVAng map[int]float64

	// BranchPFlow is the from-end active power flow per branch name, in MW.
	BranchPFlow map[string]float64
	// BranchQFlow is the from-end reactive power flow per branch name, in
	// Mvar. DC power flow leaves this empty: spec §4.3 defines DC flow as
	// |V|=1 with reactive power ignored entirely.
	BranchQFlow map[string]float64

	// SwitchedPVToPQ lists generator names whose bus was converted from PV
	// to PQ by Q-limit enforcement during this solve (Newton AC only).
	SwitchedPVToPQ []string
}
