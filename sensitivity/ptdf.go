package sensitivity

import (
	"errors"
	"math"
	"time"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/gatlog"
	"github.com/gatcore/gat/matrix"
	"github.com/gatcore/gat/network"
)

// minReactance is the spec §4.6 clamp: a branch reactance smaller in
// magnitude than this is numerically degenerate for a 1/x sensitivity and
// is pushed out to this floor, sign preserved.
const minReactance = 1e-6

const eigenTolerance = 1e-10
const eigenMaxIterations = 200

// pseudoInverseEpsilon is the eigenvalue magnitude below which a mode is
// treated as part of the matrix's null space and dropped from the
// Moore-Penrose pseudo-inverse, rather than inverted into a huge number.
const pseudoInverseEpsilon = 1e-9

// PTDF is a built power transfer distribution factor table: for each
// in-service branch k and bus m, Factor(k, m) is the fraction of a 1 MW
// injection at m (withdrawn at the slack) that flows over k.
type PTDF struct {
	BusOrder    []int
	BranchOrder []string

	busPos    map[int]int
	branchPos map[string]int
	factors   [][]float64 // [branch index][bus index]

	// branchFromPos/branchToPos are each branch's endpoint bus positions,
	// indexed the same way as factors — BuildLODF reuses these so it
	// never has to re-resolve bus IDs to matrix positions itself.
	branchFromPos []int
	branchToPos   []int
}

// Factor returns PTDF[branchName, busID], or false if either name is
// unknown to this table.
func (p *PTDF) Factor(branchName string, busID int) (float64, bool) {
	bi, ok := p.branchPos[branchName]
	if !ok {
		return 0, false
	}
	mi, ok := p.busPos[busID]
	if !ok {
		return 0, false
	}
	return p.factors[bi][mi], true
}

// BuildPTDF constructs the PTDF table for n's DC approximation, per spec
// §4.6: X = (B′)⁻¹ with the slack row/column removed (falling back to a
// Moore-Penrose pseudo-inverse when the reduced B′ is singular), and
// PTDF[k,m] = (X[i,m] − X[j,m]) / x for branch k from i to j.
func BuildPTDF(n *network.Network) (*PTDF, error) {
	log := gatlog.Component("sensitivity.ptdf")
	start := time.Now()

	order := n.BusOrder()
	dim := len(order)
	if dim == 0 {
		return nil, gaterrors.NewDataValidation("sensitivity: empty network")
	}
	busPos := make(map[int]int, dim)
	for i, id := range order {
		busPos[id] = i
	}

	slackID, ok := n.SlackBusID()
	if !ok {
		return nil, ErrNoSlack
	}
	slackPos := busPos[slackID]

	bPrime, err := buildBPrime(n, busPos, dim)
	if err != nil {
		return nil, err
	}

	xFull, err := reducedInverseEmbedded(bPrime, slackPos, dim)
	if err != nil {
		return nil, err
	}

	branches := inServiceBranches(n)
	if len(branches) == 0 {
		return nil, ErrNoBranches
	}

	branchOrder := make([]string, len(branches))
	branchPos := make(map[string]int, len(branches))
	factors := make([][]float64, len(branches))
	fromPos := make([]int, len(branches))
	toPos := make([]int, len(branches))
	for k, b := range branches {
		branchOrder[k] = b.Name
		branchPos[b.Name] = k

		i, j := busPos[b.From], busPos[b.To]
		fromPos[k], toPos[k] = i, j
		x := clampReactance(b.X)

		row := make([]float64, dim)
		for m := 0; m < dim; m++ {
			row[m] = (xFull[i][m] - xFull[j][m]) / x
		}
		factors[k] = row
	}

	log.Debug().
		Int("buses", dim).
		Int("branches", len(branches)).
		Dur("elapsed", time.Since(start)).
		Msg("PTDF table built")

	return &PTDF{
		BusOrder:      order,
		BranchOrder:   branchOrder,
		busPos:        busPos,
		branchPos:     branchPos,
		factors:       factors,
		branchFromPos: fromPos,
		branchToPos:   toPos,
	}, nil
}

func clampReactance(x float64) float64 {
	if math.Abs(x) >= minReactance {
		return x
	}
	if x == 0 {
		return minReactance
	}
	return math.Copysign(minReactance, x)
}

func inServiceBranches(n *network.Network) []*network.Branch {
	out := make([]*network.Branch, 0)
	for _, b := range n.Branches() {
		if b.Status {
			out = append(out, b)
		}
	}
	return out
}

// buildBPrime duplicates powerflow's unexported DC susceptance matrix
// assembly (off-diagonal −1/x per in-service branch, diagonal the negated
// row sum) since that helper isn't exported across the package boundary
// and sensitivity must not import powerflow to avoid cycling back through
// solverreg.
func buildBPrime(n *network.Network, busPos map[int]int, dim int) (*matrix.Dense, error) {
	m, err := matrix.NewDense(dim, dim)
	if err != nil {
		return nil, err
	}
	for _, b := range n.Branches() {
		if !b.Status {
			continue
		}
		i, j := busPos[b.From], busPos[b.To]
		bij := 1.0 / clampReactance(b.X)

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

// reducedInverseEmbedded inverts bPrime with slackPos's row/column
// deleted and embeds the result back into a dim×dim matrix with the
// slack row and column left at zero, matching spec §4.6's "X = (B′)⁻¹
// with the slack row/column removed". Falls back to a pseudo-inverse
// when the reduced matrix is singular — an island not containing the
// slack bus, which DC power flow itself rejects outright but PTDF still
// needs a usable (if degenerate) answer for, per spec's "pseudo-inverse
// otherwise".
func reducedInverseEmbedded(bPrime *matrix.Dense, slackPos, dim int) ([][]float64, error) {
	reducedDim := dim - 1
	reduced, err := matrix.NewDense(reducedDim, reducedDim)
	if err != nil {
		return nil, err
	}
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
			v, _ := bPrime.At(i, j)
			_ = reduced.Set(ri, rj, v)
			rj++
		}
		ri++
	}

	invMatrix, err := matrix.Inverse(reduced)
	var inv *matrix.Dense
	if err != nil {
		gatlog.Component("sensitivity.ptdf").Warn().Err(err).Msg("B' singular, falling back to pseudo-inverse")
		inv, err = pseudoInverse(reduced)
		if err != nil {
			return nil, gaterrors.NewNumericalIssue(err.Error())
		}
	} else {
		dense, ok := invMatrix.(*matrix.Dense)
		if !ok {
			return nil, gaterrors.NewNumericalIssue("sensitivity: inverse did not return a dense matrix")
		}
		inv = dense
	}

	full := make([][]float64, dim)
	for i := range full {
		full[i] = make([]float64, dim)
	}
	ri = 0
	for i := 0; i < dim; i++ {
		if i == slackPos {
			continue
		}
		rj := 0
		for j := 0; j < dim; j++ {
			if j == slackPos {
				continue
			}
			v, _ := inv.At(ri, rj)
			full[i][j] = v
			rj++
		}
		ri++
	}
	return full, nil
}

// pseudoInverse computes the Moore-Penrose pseudo-inverse of a symmetric
// matrix via its eigendecomposition: V·diag(1/λ if |λ|>ε else 0)·Vᵀ.
// B′ with any one row/column removed stays symmetric since the teacher's
// DC susceptance assembly never introduces a directional term.
func pseudoInverse(m *matrix.Dense) (*matrix.Dense, error) {
	eigs, vecs, err := matrix.Eigen(m, eigenTolerance, eigenMaxIterations)
	if err != nil {
		return nil, err
	}
	v, ok := vecs.(*matrix.Dense)
	if !ok {
		return nil, errors.New("sensitivity: eigenvectors not dense")
	}

	dim := m.Rows()
	lambdaInv, err := matrix.NewDense(dim, dim)
	if err != nil {
		return nil, err
	}
	for i, lam := range eigs {
		if math.Abs(lam) > pseudoInverseEpsilon {
			_ = lambdaInv.Set(i, i, 1.0/lam)
		}
	}

	vt, err := matrix.Transpose(v)
	if err != nil {
		return nil, err
	}
	tmp, err := matrix.Mul(v, lambdaInv)
	if err != nil {
		return nil, err
	}
	result, err := matrix.Mul(tmp, vt)
	if err != nil {
		return nil, err
	}
	dense, ok := result.(*matrix.Dense)
	if !ok {
		return nil, errors.New("sensitivity: pseudo-inverse result not dense")
	}
	return dense, nil
}
