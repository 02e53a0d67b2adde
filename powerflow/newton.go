package powerflow

import (
	"math"
	"math/cmplx"
	"time"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/gatlog"
	"github.com/gatcore/gat/matrix"
	"github.com/gatcore/gat/network"
	"github.com/gatcore/gat/ybus"
)

type busKind int

const (
	kindPQ busKind = iota
	kindPV
	kindSlack
)

// SolveAC runs Newton-Raphson AC power flow: classify buses, form the
// mismatch vector and Jacobian, solve and update until convergence or the
// iteration bound, with optional PV→PQ Q-limit switching checked at every
// converged iterate, per spec §4.3.
func SolveAC(n *network.Network, opts ...Option) (*Solution, error) {
	log := gatlog.Component("powerflow.newton")
	start := time.Now()

	cfg := newConfig(opts...)
	if err := validateForSolve(n); err != nil {
		return nil, err
	}

	yb, err := ybus.Build(n)
	if err != nil {
		return nil, err
	}

	order := yb.BusOrder
	bi := newBusIndex(order)
	dim := bi.n()

	kind := make([]busKind, dim)
	genAtBus := make(map[int]*network.Generator, dim)
	for _, g := range n.Generators() {
		if !g.Status {
			continue
		}
		if _, ok := genAtBus[g.BusID]; !ok {
			genAtBus[g.BusID] = g
		}
	}
	for i, id := range order {
		switch n.BusType(id) {
		case network.Slack:
			kind[i] = kindSlack
		case network.PV:
			kind[i] = kindPV
		default:
			kind[i] = kindPQ
		}
	}

	V := make([]float64, dim)
	theta := make([]float64, dim)
	for i, id := range order {
		b, _ := n.BusByID(id)
		V[i] = b.VM
		theta[i] = b.VA
	}

	pSpec, qSpec := injections(n)
	pVec := make([]float64, dim)
	qVec := make([]float64, dim)
	for i, id := range order {
		pVec[i] = pSpec[id]
		qVec[i] = qSpec[id]
	}

	G := make([][]float64, dim)
	B := make([][]float64, dim)
	for i := 0; i < dim; i++ {
		G[i] = make([]float64, dim)
		B[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			v, _ := yb.Y.At(i, j)
			G[i][j] = real(v)
			B[i][j] = imag(v)
		}
	}

	switched := make(map[string]bool)
	var switchedOrder []string

	iterations := 0
	residual := math.Inf(1)
	converged := false

	for iterations < cfg.MaxIterations {
		if cfg.Cancel.Cancelled() {
			return nil, gaterrors.NewCancelled()
		}
		if cfg.Deadline.Expired() {
			return nil, gaterrors.NewTimeout(0)
		}
		iterations++

		pCalc, qCalc := calcPQ(dim, V, theta, G, B)

		var nonSlack, pq []int
		for i := 0; i < dim; i++ {
			if kind[i] != kindSlack {
				nonSlack = append(nonSlack, i)
			}
			if kind[i] == kindPQ {
				pq = append(pq, i)
			}
		}

		m := len(nonSlack) + len(pq)
		mismatch := make([]float64, m)
		maxAbs := 0.0
		for idx, i := range nonSlack {
			d := pVec[i] - pCalc[i]
			mismatch[idx] = d
			if math.Abs(d) > maxAbs {
				maxAbs = math.Abs(d)
			}
		}
		for idx, i := range pq {
			d := qVec[i] - qCalc[i]
			mismatch[len(nonSlack)+idx] = d
			if math.Abs(d) > maxAbs {
				maxAbs = math.Abs(d)
			}
		}
		residual = maxAbs
		log.Debug().Int("iteration", iterations).Float64("residual", residual).Msg("mismatch evaluated")

		if maxAbs < cfg.Tolerance {
			converged = true
			if cfg.QLimits {
				name, limitPU, changedAt := firstQLimitViolation(dim, V, theta, G, B, kind, genAtBus, order, qVec, switched, n.BaseMVA)
				if changedAt >= 0 {
					kind[changedAt] = kindPQ
					qVec[changedAt] += limitPU
					switched[name] = true
					switchedOrder = append(switchedOrder, name)
					converged = false
					log.Debug().Str("generator", name).Int("iteration", iterations).Msg("Q-limit switched PV to PQ")
					continue
				}
			}
			break
		}

		J, err := buildJacobian(dim, V, theta, G, B, pCalc, qCalc, nonSlack, pq)
		if err != nil {
			log.Warn().Int("iteration", iterations).Err(err).Msg("Jacobian assembly failed")
			return nil, gaterrors.NewNumericalIssue(err.Error())
		}
		inv, err := matrix.Inverse(J)
		if err != nil {
			return nil, gaterrors.NewNumericalIssue(err.Error())
		}
		dx, err := matrix.MatVec(inv, mismatch)
		if err != nil {
			return nil, gaterrors.NewNumericalIssue(err.Error())
		}

		for idx, i := range nonSlack {
			theta[i] += dx[idx]
		}
		for idx, i := range pq {
			V[i] += dx[len(nonSlack)+idx]
		}
	}

	log.Info().
		Bool("converged", converged).
		Int("iterations", iterations).
		Float64("residual", residual).
		Dur("elapsed", time.Since(start)).
		Msg("SolveAC finished")

	sol := &Solution{
		Converged:      converged,
		Iterations:     iterations,
		Residual:       residual,
		BusVMag:        make(map[int]float64, dim),
		BusVAng:        make(map[int]float64, dim),
		BranchPFlow:    make(map[string]float64),
		BranchQFlow:    make(map[string]float64),
		SwitchedPVToPQ: switchedOrder,
	}
	for i, id := range order {
		sol.BusVMag[id] = V[i]
		sol.BusVAng[id] = theta[i]
	}
	for _, br := range n.Branches() {
		if !br.Status {
			continue
		}
		p, q := branchFlow(br, V[bi.pos[br.From]], theta[bi.pos[br.From]], V[bi.pos[br.To]], theta[bi.pos[br.To]])
		sol.BranchPFlow[br.Name] = p * n.BaseMVA
		sol.BranchQFlow[br.Name] = q * n.BaseMVA
	}

	return sol, nil
}

// calcPQ computes calculated active/reactive injection at every bus from
// the current voltage state, using the standard polar power-flow
// equations against the Y-bus's G (conductance) and B (susceptance).
func calcPQ(dim int, V, theta []float64, G, B [][]float64) (p, q []float64) {
	p = make([]float64, dim)
	q = make([]float64, dim)
	for i := 0; i < dim; i++ {
		var pi, qi float64
		for j := 0; j < dim; j++ {
			d := theta[i] - theta[j]
			c, s := math.Cos(d), math.Sin(d)
			pi += V[j] * (G[i][j]*c + B[i][j]*s)
			qi += V[j] * (G[i][j]*s - B[i][j]*c)
		}
		p[i] = V[i] * pi
		q[i] = V[i] * qi
	}
	return p, q
}

// buildJacobian assembles J = ∂(Pcalc,Qcalc)/∂(θ,V) over the unknown
// ordering [θ for nonSlack..., V for pq...], the standard polar-form
// power-flow Jacobian (Saadat/Stevenson form): diagonal entries fold in
// -Q_i - B_ii·V_i², P_i/V_i + G_ii·V_i, P_i - G_ii·V_i², Q_i/V_i - B_ii·V_i
// respectively; off-diagonal entries are the plain sin/cos cross terms.
func buildJacobian(dim int, V, theta []float64, G, B [][]float64, pCalc, qCalc []float64, nonSlack, pq []int) (*matrix.Dense, error) {
	m := len(nonSlack) + len(pq)
	J, err := matrix.NewDense(m, m)
	if err != nil {
		return nil, err
	}

	for rowIdx, i := range nonSlack {
		for colIdx, j := range nonSlack {
			var v float64
			if i == j {
				v = -qCalc[i] - B[i][i]*V[i]*V[i]
			} else {
				d := theta[i] - theta[j]
				v = V[i] * V[j] * (G[i][j]*math.Sin(d) - B[i][j]*math.Cos(d))
			}
			_ = J.Set(rowIdx, colIdx, v)
		}
		for colIdx, j := range pq {
			var v float64
			if i == j {
				v = pCalc[i]/V[i] + G[i][i]*V[i]
			} else {
				d := theta[i] - theta[j]
				v = V[i] * (G[i][j]*math.Cos(d) + B[i][j]*math.Sin(d))
			}
			_ = J.Set(rowIdx, len(nonSlack)+colIdx, v)
		}
	}

	for rowIdx, i := range pq {
		for colIdx, j := range nonSlack {
			var v float64
			if i == j {
				v = pCalc[i] - G[i][i]*V[i]*V[i]
			} else {
				d := theta[i] - theta[j]
				v = -V[i] * V[j] * (G[i][j]*math.Cos(d) + B[i][j]*math.Sin(d))
			}
			_ = J.Set(len(nonSlack)+rowIdx, colIdx, v)
		}
		for colIdx, j := range pq {
			var v float64
			if i == j {
				v = qCalc[i]/V[i] - B[i][i]*V[i]
			} else {
				d := theta[i] - theta[j]
				v = V[i] * (G[i][j]*math.Sin(d) - B[i][j]*math.Cos(d))
			}
			_ = J.Set(len(nonSlack)+rowIdx, len(nonSlack)+colIdx, v)
		}
	}

	return J, nil
}

// firstQLimitViolation scans PV buses (in ascending order, skipping
// buses whose sole generator already switched once this solve — spec
// §4.3's "must not oscillate more than once per generator" rule) for a
// reactive-power limit violation, returning the generator name, the
// per-unit Q to pin the bus at, and the bus index; changedAt is -1 if no
// violation was found.
func firstQLimitViolation(dim int, V, theta []float64, G, B [][]float64, kind []busKind, genAtBus map[int]*network.Generator, order []int, qVec []float64, switched map[string]bool, baseMVA float64) (name string, limitPU float64, changedAt int) {
	_, qCalc := calcPQ(dim, V, theta, G, B)
	for i := 0; i < dim; i++ {
		if kind[i] != kindPV {
			continue
		}
		g, ok := genAtBus[order[i]]
		if !ok || switched[g.Name] {
			continue
		}
		qGenPU := qCalc[i] - qVec[i]
		qMaxPU, qMinPU := g.QMax/baseMVA, g.QMin/baseMVA
		switch {
		case qGenPU > qMaxPU:
			return g.Name, qMaxPU, i
		case qGenPU < qMinPU:
			return g.Name, qMinPU, i
		}
	}
	return "", 0, -1
}

// branchFlow computes from-end active/reactive power flow on a branch in
// per-unit, using only that branch's own admittance contribution (not
// the shared bus Y-bus row), per the same y/τ²+y_c, −y·e^{jφ}/τ terms
// ybus.Build accumulates.
func branchFlow(b *network.Branch, vi, thetai, vj, thetaj float64) (p, q float64) {
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
