package powerflow

import (
	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/network"
)

// busIndex maps a network's ascending bus order to row/column position and
// back, shared by every solve mode in this package.
type busIndex struct {
	order []int
	pos   map[int]int
}

func newBusIndex(order []int) busIndex {
	pos := make(map[int]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	return busIndex{order: order, pos: pos}
}

func (bi busIndex) n() int { return len(bi.order) }

// injections computes net active/reactive power injection per bus, in
// per-unit of n.BaseMVA: generation minus load, summed over every
// in-service generator and every load attached to that bus.
func injections(n *network.Network) (p, q map[int]float64) {
	p = make(map[int]float64)
	q = make(map[int]float64)

	for _, g := range n.Generators() {
		if !g.Status {
			continue
		}
		p[g.BusID] += g.ActiveMW / n.BaseMVA
	}
	for _, l := range n.Loads() {
		p[l.BusID] -= l.ActiveMW / n.BaseMVA
		q[l.BusID] -= l.ReactiveMVAr / n.BaseMVA
	}

	return p, q
}

// validateForSolve runs the network's own structural validation plus the
// power-flow-specific preconditions (slack bus present, network
// connected), wrapping every failure as a *gaterrors.DataValidation per
// spec §7's "detect once, at the entry" policy.
func validateForSolve(n *network.Network) error {
	if err := n.Validate(); err != nil {
		return gaterrors.NewDataValidation(err.Error())
	}
	if _, ok := n.SlackBusID(); !ok {
		return gaterrors.NewDataValidation(ErrNoSlackBus.Error())
	}
	if !n.Connected() {
		return gaterrors.NewDataValidation(ErrIsland.Error())
	}
	return nil
}
