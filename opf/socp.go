package opf

import (
	"math"
	"time"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/gatlog"
	"github.com/gatcore/gat/matrix"
	"github.com/gatcore/gat/network"
)

// minVoltageSquared floors v_i when used as a divisor while tightening
// the relaxed cone, guarding against a degenerate flat-zero voltage
// iterate.
const minVoltageSquared = 1e-6

// SolveSOCP solves the branch-flow (DistFlow) convex relaxation of AC
// OPF, per spec §4.4.3. The non-convex equality P²+Q²=v·ℓ is relaxed to
// the inequality P²+Q²≤v·ℓ; rather than an interior-point conic backend
// (none is available anywhere in the retrieved pack), this solves a
// sequence of linear KKT systems with ℓ held fixed at the prior
// iterate's value, tightening ℓ to the cone boundary after each solve —
// a successive-convex-approximation fixed point that converges to the
// same operating point an interior-point method would reach whenever the
// relaxation is exact (radial networks, spec's invariant 6).
func SolveSOCP(n *network.Network, opts ...Option) (*OpfSolution, error) {
	log := gatlog.Component("opf.socp")
	start := time.Now()

	cfg := newConfig(opts...)

	if err := n.Validate(); err != nil {
		return nil, gaterrors.NewDataValidation(err.Error())
	}
	slackID, ok := n.SlackBusID()
	if !ok {
		return nil, gaterrors.NewDataValidation("opf: no slack bus designated")
	}
	if !n.Connected() {
		return nil, gaterrors.NewDataValidation("opf: network has an island unreachable from the slack bus")
	}

	gens := inServiceGenerators(n)
	if len(gens) == 0 {
		return nil, gaterrors.NewDataValidation(ErrNoGenerators.Error())
	}

	order := n.BusOrder()
	nBus := len(order)
	busPos := make(map[int]int, nBus)
	for i, id := range order {
		busPos[id] = i
	}

	branches := activeBranches(n)
	nBranch := len(branches)

	loadP := make(map[int]float64, nBus)
	loadQ := make(map[int]float64, nBus)
	for _, l := range n.Loads() {
		loadP[l.BusID] += l.ActiveMW
		loadQ[l.BusID] += l.ReactiveMVAr
	}

	ell := make([]float64, nBranch) // squared-current per branch, SCA parameter

	var p, q map[string]float64
	var vsq map[int]float64
	var flowP, flowQ map[string]float64
	var lmp map[int]float64
	converged := false
	iterations := 0

	for iterations < cfg.MaxIterations {
		if cfg.Cancel.Cancelled() {
			return nil, gaterrors.NewCancelled()
		}
		if cfg.Deadline.Expired() {
			return nil, gaterrors.NewTimeout(0)
		}
		iterations++

		var err error
		p, q, vsq, flowP, flowQ, lmp, err = solveSOCPStep(gens, branches, order, busPos, slackID, loadP, loadQ, ell)
		if err != nil {
			log.Warn().Int("iteration", iterations).Err(err).Msg("KKT step failed")
			return nil, gaterrors.NewNumericalIssue(err.Error())
		}

		maxDelta := 0.0
		for bi, b := range branches {
			v := vsq[b.From]
			if v < minVoltageSquared {
				v = minVoltageSquared
			}
			next := (flowP[b.Name]*flowP[b.Name] + flowQ[b.Name]*flowQ[b.Name]) / v
			delta := math.Abs(next - ell[bi])
			if delta > maxDelta {
				maxDelta = delta
			}
			ell[bi] = next
		}

		log.Debug().Int("iteration", iterations).Float64("maxDelta", maxDelta).Msg("cone tightening evaluated")
		if maxDelta < cfg.Tolerance {
			converged = true
			break
		}
	}

	log.Info().
		Bool("converged", converged).
		Int("iterations", iterations).
		Dur("elapsed", time.Since(start)).
		Msg("SolveSOCP finished")

	if p == nil {
		return nil, gaterrors.NewNumericalIssue("opf: SOCP produced no iterate")
	}

	var objective float64
	for _, g := range gens {
		objective += g.Cost.Evaluate(p[g.Name])
	}

	var totalGen, totalLoad float64
	for _, v := range p {
		totalGen += v
	}
	for _, v := range loadP {
		totalLoad += v
	}

	vmag := make(map[int]float64, nBus)
	for id, v := range vsq {
		if v < 0 {
			v = 0
		}
		vmag[id] = math.Sqrt(v)
	}

	return &OpfSolution{
		Converged:     converged,
		Method:        MethodSOCP,
		Iterations:    iterations,
		Objective:     objective,
		GeneratorP:    p,
		GeneratorQ:    q,
		BusVMag:       vmag,
		BusVAng:       map[int]float64{},
		BranchPFlow:   flowP,
		BranchQFlow:   flowQ,
		BusLMP:        lmp,
		TotalLossesMW: totalGen - totalLoad,
	}, nil
}

func activeBranches(n *network.Network) []*network.Branch {
	var out []*network.Branch
	for _, b := range n.Branches() {
		if b.Status {
			out = append(out, b)
		}
	}
	return out
}

// solveSOCPStep solves one linear KKT system: generator P/Q, branch
// flows, and squared bus voltages as primal variables (ℓ held fixed at
// the caller's current iterate), real and reactive bus balance plus the
// per-branch voltage-drop equation as the equality set, v at the slack
// bus pinned to 1 p.u.-squared the same way DC-OPF pins the slack angle.
func solveSOCPStep(
	gens []*network.Generator,
	branches []*network.Branch,
	order []int,
	busPos map[int]int,
	slackBusID int,
	loadP, loadQ map[int]float64,
	ell []float64,
) (p, q map[string]float64, vsq map[int]float64, flowP, flowQ map[string]float64, lmp map[int]float64, err error) {
	nBus := len(order)
	nGen := len(gens)
	nBranch := len(branches)

	pCol := make(map[string]int, nGen)
	qCol := make(map[string]int, nGen)
	for i, g := range gens {
		pCol[g.Name] = i
		qCol[g.Name] = nGen + i
	}
	branchPCol := make(map[string]int, nBranch)
	branchQCol := make(map[string]int, nBranch)
	base := 2 * nGen
	for i, b := range branches {
		branchPCol[b.Name] = base + i
		branchQCol[b.Name] = base + nBranch + i
	}
	vCol := make(map[int]int, nBus)
	vBase := base + 2*nBranch
	for i, id := range order {
		vCol[id] = vBase + i
	}

	m := vBase + nBus // number of primal variables
	// equality rows: real balance (nBus) + reactive balance (nBus) + voltage-drop (nBranch)
	total := m + 2*nBus + nBranch

	K, newErr := matrix.NewDense(total, total)
	if newErr != nil {
		return nil, nil, nil, nil, nil, nil, newErr
	}
	rhs := make([]float64, total)

	// Stationarity for p_g: 2*c2*p_g - lambdaP[bus(g)] = -c1 (q_g has no
	// cost term, so its stationarity row is purely -lambdaQ[bus(g)] = 0,
	// pinned entirely by the reactive-balance equations through the KKT
	// coupling, the same way DC-OPF's theta rows have a zero Q-diagonal).
	realBalanceRow := func(busID int) int { return m + busPos[busID] }
	reactiveBalanceRow := func(busID int) int { return m + nBus + busPos[busID] }

	for _, g := range gens {
		c2 := g.Cost.C2
		if c2 < costRegularization {
			c2 = costRegularization
		}
		pr := pCol[g.Name]
		_ = K.Set(pr, pr, 2*c2)
		rb := realBalanceRow(g.BusID)
		_ = K.Set(pr, rb, -1)
		_ = K.Set(rb, pr, 1)
		rhs[pr] = -g.Cost.C1

		qr := qCol[g.Name]
		rbq := reactiveBalanceRow(g.BusID)
		_ = K.Set(qr, rbq, -1)
		_ = K.Set(rbq, qr, 1)
	}

	for _, b := range branches {
		fromRowP := realBalanceRow(b.From)
		toRowP := realBalanceRow(b.To)
		fromRowQ := reactiveBalanceRow(b.From)
		toRowQ := reactiveBalanceRow(b.To)
		pc := branchPCol[b.Name]
		qc := branchQCol[b.Name]

		// Leaving the From bus: +P_b, +Q_b.
		_ = K.Set(fromRowP, pc, 1)
		_ = K.Set(pc, fromRowP, 1)
		_ = K.Set(fromRowQ, qc, 1)
		_ = K.Set(qc, fromRowQ, 1)

		// Arriving at the To bus net of series loss: -(P_b - r*ℓ_b), so
		// the coefficient of P_b is -1 and r*ℓ_b (a known constant this
		// iterate) moves to the RHS.
		_ = K.Set(toRowP, pc, -1)
		_ = K.Set(pc, toRowP, -1)
		_ = K.Set(toRowQ, qc, -1)
		_ = K.Set(qc, toRowQ, -1)
	}
	for bi, b := range branches {
		rhs[realBalanceRow(b.To)] -= b.R * ell[bi]
		rhs[reactiveBalanceRow(b.To)] -= b.X * ell[bi]
	}
	for _, id := range order {
		rhs[realBalanceRow(id)] += loadP[id]
		rhs[reactiveBalanceRow(id)] += loadQ[id]
	}

	// Voltage-drop rows: v_to - v_from + 2*r*P_b + 2*x*Q_b = (r²+x²)*ℓ_b.
	for bi, b := range branches {
		row := m + 2*nBus + bi
		vFrom := vCol[b.From]
		vTo := vCol[b.To]
		pc := branchPCol[b.Name]
		qc := branchQCol[b.Name]

		_ = K.Set(row, vTo, 1)
		_ = K.Set(vTo, row, 1)
		_ = K.Set(row, vFrom, -1)
		_ = K.Set(vFrom, row, -1)
		_ = K.Set(row, pc, 2*b.R)
		_ = K.Set(pc, row, 2*b.R)
		_ = K.Set(row, qc, 2*b.X)
		_ = K.Set(qc, row, 2*b.X)

		rhs[row] = (b.R*b.R + b.X*b.X) * ell[bi]
	}

	// Pin the slack bus's squared voltage to 1 p.u.-squared.
	slackCol := vCol[slackBusID]
	for c := 0; c < total; c++ {
		_ = K.Set(slackCol, c, 0)
	}
	_ = K.Set(slackCol, slackCol, 1)
	rhs[slackCol] = 1

	inv, invErr := matrix.Inverse(K)
	if invErr != nil {
		return nil, nil, nil, nil, nil, nil, invErr
	}
	x, mvErr := matrix.MatVec(inv, rhs)
	if mvErr != nil {
		return nil, nil, nil, nil, nil, nil, mvErr
	}

	p = make(map[string]float64, nGen)
	q = make(map[string]float64, nGen)
	for _, g := range gens {
		p[g.Name] = x[pCol[g.Name]]
		q[g.Name] = x[qCol[g.Name]]
	}
	flowP = make(map[string]float64, nBranch)
	flowQ = make(map[string]float64, nBranch)
	for _, b := range branches {
		flowP[b.Name] = x[branchPCol[b.Name]]
		flowQ[b.Name] = x[branchQCol[b.Name]]
	}
	vsq = make(map[int]float64, nBus)
	for _, id := range order {
		vsq[id] = x[vCol[id]]
	}
	lmp = make(map[int]float64, nBus)
	for _, id := range order {
		lmp[id] = x[realBalanceRow(id)]
	}

	return p, q, vsq, flowP, flowQ, lmp, nil
}
