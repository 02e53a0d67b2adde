package opf

import (
	"math"
	"math/cmplx"
	"time"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/gatlog"
	"github.com/gatcore/gat/network"
	"github.com/gatcore/gat/ybus"
)

// penaltyOuterSteps is the number of outer penalty-weight doublings
// (spec §4.4.4: "up to five outer iterations").
const penaltyOuterSteps = 5

// penaltyInitialWeight is the starting penalty weight μ.
const penaltyInitialWeight = 1e3

// penaltyGrowthFactor multiplies μ after each outer step.
const penaltyGrowthFactor = 10.0

// feasibilityToleranceFactor scales cfg.Tolerance into the "practical
// feasibility" bound a solve must satisfy to be accepted (spec: max|g_i|
// < 10·tolerance).
const feasibilityToleranceFactor = 10.0

// SolveACOPF solves the full nonlinear AC optimal power flow by an outer
// penalty-weight loop around an L-BFGS inner solve, per spec §4.4.4. The
// variable vector concatenates non-slack bus angles, all bus voltage
// magnitudes, and per-generator active/reactive dispatch.
func SolveACOPF(n *network.Network, opts ...Option) (*OpfSolution, error) {
	log := gatlog.Component("opf.acopf")
	start := time.Now()

	cfg := newConfig(opts...)

	if err := n.Validate(); err != nil {
		return nil, gaterrors.NewDataValidation(err.Error())
	}
	if _, ok := n.SlackBusID(); !ok {
		return nil, gaterrors.NewDataValidation("opf: no slack bus designated")
	}
	if !n.Connected() {
		return nil, gaterrors.NewDataValidation("opf: network has an island unreachable from the slack bus")
	}

	gens := inServiceGenerators(n)
	if len(gens) == 0 {
		return nil, gaterrors.NewDataValidation(ErrNoGenerators.Error())
	}

	yb, err := ybus.Build(n)
	if err != nil {
		return nil, err
	}

	order := yb.BusOrder
	busPos := make(map[int]int, len(order))
	for i, id := range order {
		busPos[id] = i
	}
	nBus := len(order)
	baseMVA := n.BaseMVA

	slackID, _ := n.SlackBusID()
	var nonSlack []int
	for _, id := range order {
		if id != slackID {
			nonSlack = append(nonSlack, id)
		}
	}
	thetaCol := make(map[int]int, len(nonSlack))
	for i, id := range nonSlack {
		thetaCol[id] = i
	}
	vCol := make(map[int]int, nBus)
	for i, id := range order {
		vCol[id] = len(nonSlack) + i
	}
	pCol := make(map[string]int, len(gens))
	qCol := make(map[string]int, len(gens))
	pqBase := len(nonSlack) + nBus
	for i, g := range gens {
		pCol[g.Name] = pqBase + i
		qCol[g.Name] = pqBase + len(gens) + i
	}
	dim := pqBase + 2*len(gens)

	G := make([][]float64, nBus)
	B := make([][]float64, nBus)
	for i := 0; i < nBus; i++ {
		G[i] = make([]float64, nBus)
		B[i] = make([]float64, nBus)
		for j := 0; j < nBus; j++ {
			v, _ := yb.Y.At(i, j)
			G[i][j] = real(v)
			B[i][j] = imag(v)
		}
	}

	loadP := make(map[int]float64, nBus)
	loadQ := make(map[int]float64, nBus)
	for _, l := range n.Loads() {
		loadP[l.BusID] += l.ActiveMW
		loadQ[l.BusID] += l.ReactiveMVAr
	}

	x0 := acopfInitialPoint(gens, order, nonSlack, thetaCol, vCol, pCol, qCol, dim, cfg.WarmStart)

	branches := activeBranches(n)

	objective := func(x []float64, mu float64) float64 {
		theta := make([]float64, nBus)
		vmag := make([]float64, nBus)
		for i, id := range order {
			if id == slackID {
				theta[i] = 0
			} else {
				theta[i] = x[thetaCol[id]]
			}
			vmag[i] = x[vCol[id]]
		}

		genPAtBus := make(map[int]float64, nBus)
		var cost float64
		for _, g := range gens {
			pg := x[pCol[g.Name]]
			genPAtBus[g.BusID] += pg
			cost += g.Cost.Evaluate(pg)
		}
		genQAtBus := make(map[int]float64, nBus)
		for _, g := range gens {
			genQAtBus[g.BusID] += x[qCol[g.Name]]
		}

		var penalty float64
		for i := 0; i < nBus; i++ {
			var pCalc, qCalc float64
			for j := 0; j < nBus; j++ {
				d := theta[i] - theta[j]
				c, s := math.Cos(d), math.Sin(d)
				pCalc += vmag[j] * (G[i][j]*c + B[i][j]*s)
				qCalc += vmag[j] * (G[i][j]*s - B[i][j]*c)
			}
			pCalc *= vmag[i] * baseMVA
			qCalc *= vmag[i] * baseMVA

			id := order[i]
			mismatchP := pCalc - (genPAtBus[id] - loadP[id])
			mismatchQ := qCalc - (genQAtBus[id] - loadQ[id])
			penalty += mismatchP*mismatchP + mismatchQ*mismatchQ

			bus, _ := n.BusByID(id)
			if h := bus.VMin - vmag[i]; h > 0 {
				penalty += h * h
			}
			if h := vmag[i] - bus.VMax; h > 0 {
				penalty += h * h
			}
		}

		for _, g := range gens {
			qg := x[qCol[g.Name]]
			if h := g.QMin - qg; h > 0 {
				penalty += h * h
			}
			if h := qg - g.QMax; h > 0 {
				penalty += h * h
			}
		}

		for _, b := range branches {
			if b.RatingMVA <= 0 {
				continue
			}
			i, j := busPos[b.From], busPos[b.To]
			s := branchApparentPower(b, vmag[i], theta[i], vmag[j], theta[j])
			if h := s - b.RatingMVA; h > 0 {
				penalty += h * h
			}
		}

		return cost + mu*penalty
	}

	mu := penaltyInitialWeight
	x := x0
	totalIterations := 0
	converged := false

	for step := 0; step < penaltyOuterSteps; step++ {
		if cfg.Cancel.Cancelled() {
			return nil, gaterrors.NewCancelled()
		}
		if cfg.Deadline.Expired() {
			return nil, gaterrors.NewTimeout(0)
		}

		innerBudget := cfg.MaxIterations - totalIterations
		if innerBudget <= 0 {
			break
		}
		muStep := mu
		result := lbfgsMinimize(x, func(v []float64) float64 { return objective(v, muStep) }, innerBudget, cfg.Tolerance, func() bool {
			return cfg.Cancel.Cancelled() || cfg.Deadline.Expired()
		})
		x = result.x
		totalIterations += result.iterations

		maxMismatch := maxEqualityMismatch(x, order, nonSlack, thetaCol, vCol, pCol, qCol, gens, loadP, loadQ, G, B, baseMVA, slackID)
		log.Debug().
			Int("outerStep", step).
			Int("innerIterations", result.iterations).
			Float64("penaltyWeight", muStep).
			Float64("maxMismatch", maxMismatch).
			Msg("penalty step evaluated")
		if maxMismatch < feasibilityToleranceFactor*cfg.Tolerance {
			converged = true
			break
		}

		mu *= penaltyGrowthFactor
	}

	log.Info().
		Bool("converged", converged).
		Int("totalIterations", totalIterations).
		Dur("elapsed", time.Since(start)).
		Msg("SolveACOPF finished")

	var totalLoad float64
	for _, v := range loadP {
		totalLoad += v
	}

	sol := acopfDecodeSolution(x, order, nonSlack, thetaCol, vCol, pCol, qCol, gens, branches, baseMVA, totalLoad, converged, totalIterations)
	return sol, nil
}

func acopfInitialPoint(
	gens []*network.Generator,
	order, nonSlack []int,
	thetaCol, vCol map[int]int,
	pCol, qCol map[string]int,
	dim int,
	ws *WarmStart,
) []float64 {
	x := make([]float64, dim)
	for _, id := range order {
		x[vCol[id]] = 1.0
	}
	for _, g := range gens {
		x[pCol[g.Name]] = (g.PMin + g.PMax) / 2
	}

	if ws == nil {
		return x
	}
	if ws.BusVMag != nil {
		for _, id := range order {
			if v, ok := ws.BusVMag[id]; ok {
				x[vCol[id]] = v
			}
		}
	}
	if ws.BusVAng != nil {
		for _, id := range nonSlack {
			if a, ok := ws.BusVAng[id]; ok {
				x[thetaCol[id]] = a
			}
		}
	}
	if ws.GeneratorP != nil {
		for _, g := range gens {
			if v, ok := ws.GeneratorP[g.Name]; ok {
				x[pCol[g.Name]] = v
			}
		}
	}
	if ws.GeneratorQ != nil {
		for _, g := range gens {
			if v, ok := ws.GeneratorQ[g.Name]; ok {
				x[qCol[g.Name]] = v
			}
		}
	}
	return x
}

func maxEqualityMismatch(
	x []float64,
	order, nonSlack []int,
	thetaCol, vCol map[int]int,
	pCol, qCol map[string]int,
	gens []*network.Generator,
	loadP, loadQ map[int]float64,
	G, B [][]float64,
	baseMVA float64,
	slackID int,
) float64 {
	nBus := len(order)
	theta := make([]float64, nBus)
	vmag := make([]float64, nBus)
	for i, id := range order {
		if id != slackID {
			theta[i] = x[thetaCol[id]]
		}
		vmag[i] = x[vCol[id]]
	}
	genPAtBus := make(map[int]float64, nBus)
	genQAtBus := make(map[int]float64, nBus)
	for _, g := range gens {
		genPAtBus[g.BusID] += x[pCol[g.Name]]
		genQAtBus[g.BusID] += x[qCol[g.Name]]
	}

	var worst float64
	for i := 0; i < nBus; i++ {
		var pCalc, qCalc float64
		for j := 0; j < nBus; j++ {
			d := theta[i] - theta[j]
			c, s := math.Cos(d), math.Sin(d)
			pCalc += vmag[j] * (G[i][j]*c + B[i][j]*s)
			qCalc += vmag[j] * (G[i][j]*s - B[i][j]*c)
		}
		pCalc *= vmag[i] * baseMVA
		qCalc *= vmag[i] * baseMVA

		id := order[i]
		mismatchP := math.Abs(pCalc - (genPAtBus[id] - loadP[id]))
		mismatchQ := math.Abs(qCalc - (genQAtBus[id] - loadQ[id]))
		if mismatchP > worst {
			worst = mismatchP
		}
		if mismatchQ > worst {
			worst = mismatchQ
		}
	}
	return worst
}

func acopfDecodeSolution(
	x []float64,
	order, nonSlack []int,
	thetaCol, vCol map[int]int,
	pCol, qCol map[string]int,
	gens []*network.Generator,
	branches []*network.Branch,
	baseMVA float64,
	totalLoad float64,
	converged bool,
	iterations int,
) *OpfSolution {
	busVMag := make(map[int]float64, len(order))
	busVAng := make(map[int]float64, len(order))
	for _, id := range order {
		busVMag[id] = x[vCol[id]]
	}
	for _, id := range nonSlack {
		busVAng[id] = x[thetaCol[id]]
	}

	genP := make(map[string]float64, len(gens))
	genQ := make(map[string]float64, len(gens))
	var objective float64
	for _, g := range gens {
		genP[g.Name] = x[pCol[g.Name]]
		genQ[g.Name] = x[qCol[g.Name]]
		objective += g.Cost.Evaluate(genP[g.Name])
	}

	flowP := make(map[string]float64, len(branches))
	flowQ := make(map[string]float64, len(branches))
	for _, b := range branches {
		p, q := branchRealReactivePower(b, busVMag[b.From], busVAng[b.From], busVMag[b.To], busVAng[b.To])
		flowP[b.Name] = p * baseMVA
		flowQ[b.Name] = q * baseMVA
	}

	var totalGen float64
	for _, v := range genP {
		totalGen += v
	}

	return &OpfSolution{
		Converged:     converged,
		Method:        MethodAC,
		Iterations:    iterations,
		Objective:     objective,
		GeneratorP:    genP,
		GeneratorQ:    genQ,
		BusVMag:       busVMag,
		BusVAng:       busVAng,
		BranchPFlow:   flowP,
		BranchQFlow:   flowQ,
		BusLMP:        map[int]float64{},
		TotalLossesMW: totalGen - totalLoad,
	}
}

// branchApparentPower returns |S_ij| in MVA-equivalent per-unit terms
// (the same units RatingMVA is expressed in), from the from-end.
func branchApparentPower(b *network.Branch, vi, thetai, vj, thetaj float64) float64 {
	p, q := branchRealReactivePower(b, vi, thetai, vj, thetaj)
	return math.Hypot(p, q)
}

// branchRealReactivePower computes from-end active/reactive flow in
// per-unit, the same formula powerflow.branchFlow uses.
func branchRealReactivePower(b *network.Branch, vi, thetai, vj, thetaj float64) (p, q float64) {
	z := complex(b.R, b.X)
	y := 1 / z
	yc := complex(0, b.BC/2)
	tap := b.Tap
	if tap == 0 {
		tap = 1.0
	}

	Vi := cmplx.Rect(vi, thetai)
	Vj := cmplx.Rect(vj, thetaj)

	yii := y/complex(tap*tap, 0) + yc
	yij := -y * cmplx.Exp(complex(0, b.Shift)) / complex(tap, 0)

	current := yii*Vi + yij*Vj
	s := Vi * cmplx.Conj(current)

	return real(s), imag(s)
}
