package opf

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/gatlog"
	"github.com/gatcore/gat/matrix"
	"github.com/gatcore/gat/network"
)

// costRegularization floors a generator's quadratic cost coefficient so
// its KKT stationarity row never has a zero diagonal. Purely linear cost
// curves (c2=0) are common in practice; without one, the QP below
// degenerates to an LP that this solver's equality-constrained KKT
// system cannot represent (no simplex backend is available anywhere in
// the retrieved pack — see DESIGN.md). The regularization is small enough
// not to perturb the optimum of any genuinely quadratic generator.
const costRegularization = 1e-6

// busIdx maps a network's ascending bus order to row/column position,
// local to this package the same way powerflow keeps its own copy.
type busIdx struct {
	order []int
	pos   map[int]int
}

func newBusIdx(order []int) busIdx {
	pos := make(map[int]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	return busIdx{order: order, pos: pos}
}

// SolveDCOPF dispatches generator active power and bus angles to minimize
// quadratic generation cost subject to DC power balance, generator boxes,
// and branch thermal limits, per spec §4.4.2. Solved as a sequence of
// equality-constrained QPs over a growing active set of generator and
// branch bounds — the KKT system [Q A^T; A 0] inverted once per outer
// iteration — rather than dispatched to an external LP/conic backend,
// since none is available anywhere in the retrieved pack.
func SolveDCOPF(n *network.Network, opts ...Option) (*OpfSolution, error) {
	log := gatlog.Component("opf.dcopf")
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
	bi := newBusIdx(order)
	nBus := len(order)
	baseMVA := n.BaseMVA

	bmw := buildSusceptanceMW(n, bi, baseMVA)

	loadByBus := make(map[int]float64, nBus)
	for _, l := range n.Loads() {
		loadByBus[l.BusID] += l.ActiveMW
	}

	fixedGen := make(map[string]float64)
	for _, g := range gens {
		if g.PMin == g.PMax {
			fixedGen[g.Name] = g.PMin
		}
	}
	var fixedBranchNames []string
	fixedBranchDiff := make(map[string]float64)

	branches := n.Branches()

	var p map[string]float64
	var theta map[int]float64
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
		p, theta, lmp, err = solveDCKKT(gens, branches, order, slackID, bmw, loadByBus, fixedGen, fixedBranchNames, fixedBranchDiff)
		if err != nil {
			return nil, gaterrors.NewNumericalIssue(err.Error())
		}

		violatedAny := false
		for _, g := range gens {
			if _, fixed := fixedGen[g.Name]; fixed {
				continue
			}
			v := p[g.Name]
			switch {
			case v > g.PMax+cfg.Tolerance:
				fixedGen[g.Name] = g.PMax
				violatedAny = true
			case v < g.PMin-cfg.Tolerance:
				fixedGen[g.Name] = g.PMin
				violatedAny = true
			}
		}
		for _, b := range branches {
			if !b.Status || b.RatingMVA <= 0 {
				continue
			}
			if _, fixed := fixedBranchDiff[b.Name]; fixed {
				continue
			}
			flow := baseMVA * (theta[b.From] - theta[b.To]) / b.X
			if math.Abs(flow) > b.RatingMVA+cfg.Tolerance {
				sign := 1.0
				if flow < 0 {
					sign = -1.0
				}
				fixedBranchDiff[b.Name] = sign * b.RatingMVA * b.X / baseMVA
				fixedBranchNames = append(fixedBranchNames, b.Name)
				violatedAny = true
			}
		}

		log.Debug().
			Int("iteration", iterations).
			Int("activeSetSize", len(fixedGen)+len(fixedBranchNames)).
			Bool("violatedAny", violatedAny).
			Msg("active-set KKT solve evaluated")

		if !violatedAny {
			converged = true
			break
		}
	}

	if p == nil {
		return nil, gaterrors.NewNumericalIssue("opf: DC-OPF produced no iterate")
	}
	log.Info().
		Bool("converged", converged).
		Int("iterations", iterations).
		Dur("elapsed", time.Since(start)).
		Msg("SolveDCOPF finished")

	var objective float64
	for _, g := range gens {
		objective += g.Cost.Evaluate(p[g.Name])
	}

	var totalGen, totalLoad float64
	for _, v := range p {
		totalGen += v
	}
	for _, v := range loadByBus {
		totalLoad += v
	}

	branchFlow := make(map[string]float64, len(branches))
	for _, b := range branches {
		if !b.Status {
			continue
		}
		branchFlow[b.Name] = baseMVA * (theta[b.From] - theta[b.To]) / b.X
	}

	var binding []string
	bindingGenNames := make([]string, 0, len(fixedGen))
	for name := range fixedGen {
		bindingGenNames = append(bindingGenNames, name)
	}
	sort.Strings(bindingGenNames)
	for _, name := range bindingGenNames {
		side := "pmin"
		for _, g := range gens {
			if g.Name == name && fixedGen[name] == g.PMax {
				side = "pmax"
			}
		}
		binding = append(binding, fmt.Sprintf("generator:%s@%s", name, side))
	}
	for _, name := range fixedBranchNames {
		binding = append(binding, fmt.Sprintf("branch:%s@thermal", name))
	}

	sol := &OpfSolution{
		Converged:     converged,
		Method:        MethodDC,
		Iterations:    iterations,
		Objective:     objective,
		GeneratorP:    p,
		GeneratorQ:    map[string]float64{},
		BusVMag:       make(map[int]float64, nBus),
		BusVAng:       theta,
		BranchPFlow:   branchFlow,
		BranchQFlow:   map[string]float64{},
		BusLMP:        lmp,
		TotalLossesMW: totalGen - totalLoad,
		BindingConstraints: binding,
	}
	for _, id := range order {
		sol.BusVMag[id] = 1.0
	}

	return sol, nil
}

// buildSusceptanceMW assembles the full (non-reduced) bus susceptance
// matrix scaled by baseMVA, so that flow_MW = (B·θ)_i directly rather
// than needing a separate per-unit conversion of generation and load.
func buildSusceptanceMW(n *network.Network, bi busIdx, baseMVA float64) [][]float64 {
	dim := len(bi.order)
	b := make([][]float64, dim)
	for i := range b {
		b[i] = make([]float64, dim)
	}
	for _, br := range n.Branches() {
		if !br.Status {
			continue
		}
		i, j := bi.pos[br.From], bi.pos[br.To]
		bij := baseMVA / br.X
		b[i][i] += bij
		b[j][j] += bij
		b[i][j] -= bij
		b[j][i] -= bij
	}
	return b
}

// solveDCKKT solves one equality-constrained QP instance: free
// generators and all bus angles (slack fixed at 0) as primal variables,
// one dual per bus-balance row plus one dual per active branch-thermal
// row. Returns full generator dispatch (including fixed ones), bus
// angles, and bus LMPs (the balance-row duals).
func solveDCKKT(
	gens []*network.Generator,
	branches []*network.Branch,
	order []int,
	slackBusID int,
	bmw [][]float64,
	loadByBus map[int]float64,
	fixedGen map[string]float64,
	fixedBranchNames []string,
	fixedBranchDiff map[string]float64,
) (p map[string]float64, theta map[int]float64, lmp map[int]float64, err error) {
	nBus := len(order)

	var freeGens []*network.Generator
	for _, g := range gens {
		if _, fixed := fixedGen[g.Name]; !fixed {
			freeGens = append(freeGens, g)
		}
	}
	k := len(freeGens)
	genCol := make(map[string]int, k)
	for i, g := range freeGens {
		genCol[g.Name] = i
	}

	// theta columns: every bus has a column (slack's is simply never
	// referenced with a nonzero value, since its angle is the constant
	// 0 — equivalent to dropping the column but simpler to index).
	thetaCol := make(map[int]int, nBus)
	for i, id := range order {
		thetaCol[id] = k + i
	}

	m := k + nBus
	extraRows := len(fixedBranchNames)
	total := m + nBus + extraRows

	K, newErr := matrix.NewDense(total, total)
	if newErr != nil {
		return nil, nil, nil, newErr
	}
	rhs := make([]float64, total)

	// Stationarity rows for free generators: 2*c2*p_g - lambda[bus(g)] = -c1.
	for _, g := range freeGens {
		row := genCol[g.Name]
		c2 := g.Cost.C2
		if c2 < costRegularization {
			c2 = costRegularization
		}
		_ = K.Set(row, row, 2*c2)
		lambdaRow := m + busRowIndex(order, g.BusID)
		_ = K.Set(row, lambdaRow, -1)
		_ = K.Set(lambdaRow, row, 1) // A block: +1 coefficient of p_g in its bus balance row
		rhs[row] = -g.Cost.C1
	}

	// Balance rows (one per bus): sum(free p_g at bus) - (B*theta)_bus = load - sum(fixed p_g at bus).
	for i, id := range order {
		lambdaRow := m + i
		for j, jd := range order {
			if jd == id {
				continue
			}
			thetaColJ := thetaCol[jd]
			_ = K.Set(lambdaRow, thetaColJ, -bmw[i][j])
			_ = K.Set(thetaColJ, lambdaRow, bmw[i][j])
		}
		rhs[lambdaRow] += loadByBus[id]
	}
	for name, v := range fixedGen {
		var busID int
		for _, g := range gens {
			if g.Name == name {
				busID = g.BusID
				break
			}
		}
		rhs[m+busRowIndex(order, busID)] -= v
	}

	// Branch thermal rows: theta_from - theta_to = fixedDiff.
	for r, name := range fixedBranchNames {
		var br *network.Branch
		for _, b := range branches {
			if b.Name == name {
				br = b
				break
			}
		}
		row := m + nBus + r
		colFrom := thetaCol[br.From]
		colTo := thetaCol[br.To]
		_ = K.Set(row, colFrom, 1)
		_ = K.Set(colFrom, row, 1)
		_ = K.Set(row, colTo, -1)
		_ = K.Set(colTo, row, -1)
		rhs[row] = fixedBranchDiff[name]
	}

	// Pin the slack angle to zero directly: its column/row are otherwise
	// free variables with no stationarity constraint (theta never
	// appears in the objective), which would leave the system singular.
	slackCol := thetaCol[slackBusID]
	for c := 0; c < total; c++ {
		_ = K.Set(slackCol, c, 0)
	}
	_ = K.Set(slackCol, slackCol, 1)
	rhs[slackCol] = 0

	inv, invErr := matrix.Inverse(K)
	if invErr != nil {
		return nil, nil, nil, invErr
	}
	x, mvErr := matrix.MatVec(inv, rhs)
	if mvErr != nil {
		return nil, nil, nil, mvErr
	}

	p = make(map[string]float64, len(gens))
	for name, v := range fixedGen {
		p[name] = v
	}
	for _, g := range freeGens {
		p[g.Name] = x[genCol[g.Name]]
	}

	theta = make(map[int]float64, nBus)
	for _, id := range order {
		theta[id] = x[thetaCol[id]]
	}

	lmp = make(map[int]float64, nBus)
	for i, id := range order {
		lmp[id] = x[m+i]
	}

	return p, theta, lmp, nil
}

func busRowIndex(order []int, busID int) int {
	for i, id := range order {
		if id == busID {
			return i
		}
	}
	return -1
}

