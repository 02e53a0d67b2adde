package powerflow

import (
	"time"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/gatlog"
	"github.com/gatcore/gat/matrix"
	"github.com/gatcore/gat/network"
)

// SolveDC computes the DC power-flow approximation: |V|=1 everywhere,
// angle differences small, losses and reactive power ignored entirely.
// Solves B'·θ = P_injection with the slack row/column removed, per spec
// §4.3. Always converges in one linear solve; the only failure mode is a
// singular B' from an island not containing the slack bus, which
// validateForSolve already rejects before the solve is attempted.
func SolveDC(n *network.Network, opts ...Option) (*Solution, error) {
	log := gatlog.Component("powerflow.dc")
	start := time.Now()

	_ = newConfig(opts...) // DC has no iteration/tolerance knobs; accepted for API symmetry.

	if err := validateForSolve(n); err != nil {
		return nil, err
	}

	order := n.BusOrder()
	bi := newBusIndex(order)
	dim := bi.n()

	bPrime, err := buildBPrime(n, bi)
	if err != nil {
		return nil, err
	}

	slackID, _ := n.SlackBusID()
	slackPos := bi.pos[slackID]

	p, _ := injections(n)
	pVec := make([]float64, dim)
	for i, id := range order {
		pVec[i] = p[id]
	}

	theta, err := solveReduced(bPrime, pVec, slackPos)
	if err != nil {
		log.Warn().Err(err).Msg("B' solve failed")
		return nil, gaterrors.NewNumericalIssue(err.Error())
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("SolveDC finished")

	sol := &Solution{
		Converged:   true,
		Iterations:  1,
		Residual:    0,
		BusVMag:     make(map[int]float64, dim),
		BusVAng:     make(map[int]float64, dim),
		BranchPFlow: make(map[string]float64),
	}
	for i, id := range order {
		sol.BusVMag[id] = 1.0
		sol.BusVAng[id] = theta[i]
	}

	for _, b := range n.Branches() {
		if !b.Status {
			continue
		}
		i, j := bi.pos[b.From], bi.pos[b.To]
		sol.BranchPFlow[b.Name] = (theta[i] - theta[j]) / b.X * n.BaseMVA
	}

	return sol, nil
}

// buildBPrime assembles the DC susceptance matrix: off-diagonal entries
// −1/x per in-service branch, diagonal the negated row sum, following
// spec §4.3's "B′ uses −1/x per branch (ignoring r)". Tap ratio and
// line-charging are ignored, matching the DC approximation's own stated
// simplifications (|V|=1, no reactive power).
func buildBPrime(n *network.Network, bi busIndex) (*matrix.Dense, error) {
	dim := bi.n()
	m, err := matrix.NewDense(dim, dim)
	if err != nil {
		return nil, err
	}

	for _, b := range n.Branches() {
		if !b.Status {
			continue
		}
		i, j := bi.pos[b.From], bi.pos[b.To]
		bij := 1.0 / b.X

		vii, _ := m.At(i, i)
		_ = m.Set(i, i, vii+bij)
		vjj, _ := m.At(j, j)
		_ = m.Set(j, j, vjj+bij)
		vij, _ := m.At(i, j)
		_ = m.Set(i, j, vij-bij)
		vji, _ := m.At(j, i)
		_ = m.Set(j, i, vji-bij)
	}

	return m, nil
}

// solveReduced solves full·x = b after deleting slackPos's row and
// column (fixing x[slackPos]=0), returning the full-length x.
func solveReduced(full *matrix.Dense, b []float64, slackPos int) ([]float64, error) {
	dim := full.Rows()
	reducedDim := dim - 1
	reduced, err := matrix.NewDense(reducedDim, reducedDim)
	if err != nil {
		return nil, err
	}
	rb := make([]float64, reducedDim)

	ri := 0
	for i := 0; i < dim; i++ {
		if i == slackPos {
			continue
		}
		rj := 0
		for j := 0; j < dim; j++ {
			if j == slackPos {
				continue
			}
			v, _ := full.At(i, j)
			_ = reduced.Set(ri, rj, v)
			rj++
		}
		rb[ri] = b[i]
		ri++
	}

	inv, err := matrix.Inverse(reduced)
	if err != nil {
		return nil, err
	}
	rx, err := matrix.MatVec(inv, rb)
	if err != nil {
		return nil, err
	}

	x := make([]float64, dim)
	ri = 0
	for i := 0; i < dim; i++ {
		if i == slackPos {
			continue
		}
		x[i] = rx[ri]
		ri++
	}

	return x, nil
}
