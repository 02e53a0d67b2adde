package powerflow

import (
	"math"
	"time"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/gatlog"
	"github.com/gatcore/gat/matrix"
	"github.com/gatcore/gat/network"
	"github.com/gatcore/gat/ybus"
)

// SolveFastDecoupled runs the fast-decoupled power flow: two constant
// matrices B′ (ignoring r, for the P-θ update) and B″ (the Y-bus
// susceptance, carrying tap and line-charging effects plus shunts, for
// the Q-V update), each factorized once and reused every iteration,
// trading Newton's quadratic convergence for ~5x less work per
// iteration on well-conditioned transmission networks, per spec §4.3.
func SolveFastDecoupled(n *network.Network, opts ...Option) (*Solution, error) {
	log := gatlog.Component("powerflow.fastdecoupled")
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

	var nonSlack, pq []int
	for i := 0; i < dim; i++ {
		if kind[i] != kindSlack {
			nonSlack = append(nonSlack, i)
		}
		if kind[i] == kindPQ {
			pq = append(pq, i)
		}
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

	bPrimeFull, err := buildBPrime(n, bi)
	if err != nil {
		return nil, err
	}
	bPrimeInv, err := invertSub(bPrimeFull, nonSlack)
	if err != nil {
		return nil, gaterrors.NewNumericalIssue(err.Error())
	}
	bDoublePrime, err := denseFromB(B, dim)
	if err != nil {
		return nil, err
	}
	bDoublePrimeInv, err := invertSub(bDoublePrime, pq)
	if err != nil {
		return nil, gaterrors.NewNumericalIssue(err.Error())
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
		dPoverV := make([]float64, len(nonSlack))
		maxAbs := 0.0
		for idx, i := range nonSlack {
			d := pVec[i] - pCalc[i]
			if math.Abs(d) > maxAbs {
				maxAbs = math.Abs(d)
			}
			dPoverV[idx] = d / V[i]
		}
		dTheta, err := matrix.MatVec(bPrimeInv, dPoverV)
		if err != nil {
			return nil, gaterrors.NewNumericalIssue(err.Error())
		}
		for idx, i := range nonSlack {
			theta[i] += dTheta[idx]
		}

		_, qCalc = calcPQ(dim, V, theta, G, B)
		dQoverV := make([]float64, len(pq))
		for idx, i := range pq {
			d := qVec[i] - qCalc[i]
			if math.Abs(d) > maxAbs {
				maxAbs = math.Abs(d)
			}
			dQoverV[idx] = d / V[i]
		}
		dV, err := matrix.MatVec(bDoublePrimeInv, dQoverV)
		if err != nil {
			return nil, gaterrors.NewNumericalIssue(err.Error())
		}
		for idx, i := range pq {
			V[i] += dV[idx]
		}

		residual = maxAbs
		log.Debug().Int("iteration", iterations).Float64("residual", residual).Msg("P-θ/Q-V sweep evaluated")
		if maxAbs < cfg.Tolerance {
			converged = true
			break
		}
	}

	log.Info().
		Bool("converged", converged).
		Int("iterations", iterations).
		Float64("residual", residual).
		Dur("elapsed", time.Since(start)).
		Msg("SolveFastDecoupled finished")

	sol := &Solution{
		Converged:   converged,
		Iterations:  iterations,
		Residual:    residual,
		BusVMag:     make(map[int]float64, dim),
		BusVAng:     make(map[int]float64, dim),
		BranchPFlow: make(map[string]float64),
		BranchQFlow: make(map[string]float64),
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

// denseFromB builds a real Dense from the Y-bus's susceptance part.
func denseFromB(B [][]float64, dim int) (*matrix.Dense, error) {
	m, err := matrix.NewDense(dim, dim)
	if err != nil {
		return nil, err
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			_ = m.Set(i, j, B[i][j])
		}
	}
	return m, nil
}

// invertSub extracts the submatrix of full at (rows, rows) and returns its
// inverse, used to factor B′/B″ once against their fixed unknown subsets.
func invertSub(full *matrix.Dense, rows []int) (matrix.Matrix, error) {
	k := len(rows)
	sub, err := matrix.NewDense(k, k)
	if err != nil {
		return nil, err
	}
	for ri, i := range rows {
		for rj, j := range rows {
			v, _ := full.At(i, j)
			_ = sub.Set(ri, rj, v)
		}
	}
	return matrix.Inverse(sub)
}
