package ybus

import (
	"math/cmplx"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/matrix"
	"github.com/gatcore/gat/network"
)

// minImpedanceMagnitude is the spec §4.2 threshold below which a branch's
// series impedance is rejected as numerically degenerate.
const minImpedanceMagnitude = 1e-12

// YBus is a network's bus admittance matrix together with the row/column
// ordering it was built against.
type YBus struct {
	// Y is the n×n admittance matrix, row/column i corresponding to
	// BusOrder[i].
	Y *matrix.ComplexDense
	// BusOrder is the ascending bus-id ordering used to index Y; the same
	// ordering network.Network.BusOrder returns.
	BusOrder []int

	index map[int]int
}

// IndexOf returns the row/column index of busID in Y, or false if busID is
// not part of this YBus.
func (yb *YBus) IndexOf(busID int) (int, bool) {
	i, ok := yb.index[busID]
	return i, ok
}

// Build constructs the Y-bus for n. Out-of-service branches are skipped.
// For each in-service branch i→j with series admittance y = 1/(r+jx), tap
// ratio τ, phase shift φ, and half line-charging y_c = j·b_c/2:
//
//	Y_ii += y/τ² + y_c
//	Y_jj += y + y_c
//	Y_ij += −y·e^{+jφ}/τ
//	Y_ji += −y·e^{−jφ}/τ
//
// Shunts add g_s + j·b_s to Y at their own bus. Accumulation order is
// fixed: buses in ascending-id order establish the matrix dimension and
// index map first, then branches in network.Network.Branches' ascending
// name order, then shunts in network.Network.Shunts' insertion order —
// this is the documented order a bit-identical rebuild depends on.
func Build(n *network.Network) (*YBus, error) {
	busOrder := n.BusOrder()
	dim := len(busOrder)
	if dim == 0 {
		return nil, gaterrors.NewDataValidation("ybus: empty network")
	}

	index := make(map[int]int, dim)
	for i, id := range busOrder {
		index[id] = i
	}

	Y, err := matrix.NewComplexDense(dim, dim)
	if err != nil {
		return nil, gaterrors.NewDataValidation(err.Error())
	}

	for _, b := range n.Branches() {
		if !b.Status {
			continue
		}
		if err := accumulateBranch(Y, index, b); err != nil {
			return nil, gaterrors.NewDataValidation(err.Error())
		}
	}

	for _, s := range n.Shunts() {
		i, ok := index[s.BusID]
		if !ok {
			return nil, gaterrors.NewDataValidation(ErrUnknownBus.Error())
		}
		if err := Y.Add(i, i, complex(s.Gs, s.Bs)); err != nil {
			return nil, gaterrors.NewDataValidation(err.Error())
		}
	}

	return &YBus{Y: Y, BusOrder: busOrder, index: index}, nil
}

func accumulateBranch(Y *matrix.ComplexDense, index map[int]int, b *network.Branch) error {
	i, ok := index[b.From]
	if !ok {
		return ErrUnknownBus
	}
	j, ok := index[b.To]
	if !ok {
		return ErrUnknownBus
	}

	z := complex(b.R, b.X)
	if cmplx.Abs(z) < minImpedanceMagnitude {
		return ErrTinyImpedance
	}
	y := 1 / z
	yc := complex(0, b.BC/2)
	tap := b.Tap
	if tap == 0 {
		tap = 1.0
	}
	shiftFwd := cmplx.Exp(complex(0, b.Shift))
	shiftRev := cmplx.Exp(complex(0, -b.Shift))

	if err := Y.Add(i, i, y/complex(tap*tap, 0)+yc); err != nil {
		return err
	}
	if err := Y.Add(j, j, y+yc); err != nil {
		return err
	}
	if err := Y.Add(i, j, -y*shiftFwd/complex(tap, 0)); err != nil {
		return err
	}
	if err := Y.Add(j, i, -y*shiftRev/complex(tap, 0)); err != nil {
		return err
	}

	return nil
}

// IsLossless reports whether every diagonal entry of yb.Y has a
// non-negative real part within eps, a coarse sanity check some callers
// use before trusting a constructed Y-bus (a negative real diagonal
// indicates a branch/shunt data error rather than a valid physical
// network).
func (yb *YBus) IsLossless(eps float64) bool {
	for i := 0; i < yb.Y.Rows(); i++ {
		v, err := yb.Y.At(i, i)
		if err != nil {
			return false
		}
		if real(v) < -eps {
			return false
		}
	}
	return true
}

// symmetryEps is the tolerance Symmetric uses to compare Y against its
// transpose.
const symmetryEps = 1e-9

// Symmetric reports whether yb.Y is symmetric within symmetryEps. A
// Y-bus built from branches with no phase shifters (b.Shift == 0
// everywhere) is always symmetric; a nonzero Shift breaks it, since
// Y_ij and Y_ji then carry conjugate-rotated, not equal, phasors.
func (yb *YBus) Symmetric() bool {
	return yb.Y.IsSymmetric(symmetryEps)
}
