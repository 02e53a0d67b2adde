package sensitivity

import (
	"math"

	"github.com/gatcore/gat/gatlog"
)

// lodfDenominatorEpsilon guards the classical LODF formula's division by
// (1 − branch-to-branch self factor) when that denominator collapses
// toward zero — a radial branch whose outage would island part of the
// network, which the self factor approaches −∞ for in the idealized
// linear model.
const lodfDenominatorEpsilon = 1e-9

// LODF is a built line-outage distribution factor table: Factor(l, m) is
// the fraction of branch m's pre-contingency flow that redistributes onto
// branch l once m trips.
type LODF struct {
	BranchOrder []string

	branchPos map[string]int
	factors   [][]float64 // [monitored index][outaged index]
}

// Factor returns LODF[monitoredBranch, outagedBranch], or false if either
// name is unknown to this table.
func (l *LODF) Factor(monitoredBranch, outagedBranch string) (float64, bool) {
	li, ok := l.branchPos[monitoredBranch]
	if !ok {
		return 0, false
	}
	mi, ok := l.branchPos[outagedBranch]
	if !ok {
		return 0, false
	}
	return l.factors[li][mi], true
}

// BuildLODF derives the LODF table from a PTDF already built over the
// same network, per spec §4.6's classical formula
//
//	LODF[l,m] = PTDF[l,m]·x_m / (x_m − (X[i_m,i_m] − 2·X[i_m,j_m] + X[j_m,j_m]))
//
// where the "PTDF[l,m]" on the right is the branch-to-branch shift factor
// (flow change on l per unit of m's injection pattern), not the
// bus-indexed PTDF[l, bus] the PTDF type exposes directly: it equals
// PTDF[l, i_m] − PTDF[l, j_m], algebraically identical to (X[i_l,i_m] −
// X[i_l,j_m] − X[j_l,i_m] + X[j_l,j_m]) / x_l. Dividing both the spec's
// numerator and denominator by x_m turns the formula into the equivalent
// PTDF[l,m] / (1 − PTDF[m,m]) used here, which needs only p's own
// bus-indexed rows — no raw X matrix or reactance lookup required.
// LODF[m,m] is fixed at −1 as spec states.
func BuildLODF(p *PTDF) *LODF {
	nb := len(p.BranchOrder)
	branchPos := make(map[string]int, nb)
	for i, name := range p.BranchOrder {
		branchPos[name] = i
	}

	factors := make([][]float64, nb)
	for i := range factors {
		factors[i] = make([]float64, nb)
	}

	for mi := range p.BranchOrder {
		iPos, jPos := p.branchFromPos[mi], p.branchToPos[mi]

		selfFactor := p.factors[mi][iPos] - p.factors[mi][jPos]
		denom := 1 - selfFactor
		if math.Abs(denom) < lodfDenominatorEpsilon {
			denom = math.Copysign(lodfDenominatorEpsilon, denom)
		}

		for li := range p.BranchOrder {
			if li == mi {
				factors[li][mi] = -1
				continue
			}
			shiftFactor := p.factors[li][iPos] - p.factors[li][jPos]
			factors[li][mi] = shiftFactor / denom
		}
	}

	gatlog.Component("sensitivity.lodf").Debug().Int("branches", nb).Msg("LODF table built")

	return &LODF{
		BranchOrder: append([]string(nil), p.BranchOrder...),
		branchPos:   branchPos,
		factors:     factors,
	}
}
