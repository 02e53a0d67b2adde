package opf

import (
	"sort"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/network"
)

// lossEstimateFactor is the flat loss adder applied to total demand
// before merit-order dispatch, standing in for a network solve that
// economic dispatch deliberately skips.
const lossEstimateFactor = 1.01

// SolveEconomicDispatch computes the cheapest fallback dispatch: total
// demand plus a flat 1% loss estimate, filled generator by generator in
// ascending order of marginal cost at pmin, ignoring every network
// constraint (no Y-bus, no branch limits, no voltage). Per spec §4.4.1.
func SolveEconomicDispatch(n *network.Network, opts ...Option) (*OpfSolution, error) {
	_ = newConfig(opts...) // no iteration/tolerance knobs; accepted for API symmetry.

	if err := n.Validate(); err != nil {
		return nil, gaterrors.NewDataValidation(err.Error())
	}

	gens := inServiceGenerators(n)
	if len(gens) == 0 {
		return nil, gaterrors.NewDataValidation(ErrNoGenerators.Error())
	}

	var totalLoad float64
	for _, l := range n.Loads() {
		totalLoad += l.ActiveMW
	}
	demand := totalLoad * lossEstimateFactor

	var sumPMin, sumPMax float64
	for _, g := range gens {
		sumPMin += g.PMin
		sumPMax += g.PMax
	}
	if demand < sumPMin {
		return nil, gaterrors.NewInfeasible(ErrDemandBelowMinimum.Error())
	}
	if demand > sumPMax {
		return nil, gaterrors.NewInfeasible(ErrCapacityInsufficient.Error())
	}

	dispatch := make(map[string]float64, len(gens))
	for _, g := range gens {
		dispatch[g.Name] = g.PMin
	}

	// Merit order: ascending marginal cost at pmin, ties broken by name
	// for determinism (sort.Slice is not stable across equal keys
	// otherwise).
	ordered := make([]*network.Generator, len(gens))
	copy(ordered, gens)
	sort.Slice(ordered, func(i, j int) bool {
		ci, cj := ordered[i].Cost.MarginalCost(ordered[i].PMin), ordered[j].Cost.MarginalCost(ordered[j].PMin)
		if ci != cj {
			return ci < cj
		}
		return ordered[i].Name < ordered[j].Name
	})

	remaining := demand - sumPMin
	marginalCost := ordered[0].Cost.MarginalCost(ordered[0].PMin)
	for _, g := range ordered {
		if remaining <= 0 {
			break
		}
		headroom := g.PMax - g.PMin
		take := headroom
		if remaining < take {
			take = remaining
		}
		dispatch[g.Name] += take
		remaining -= take
		marginalCost = g.Cost.MarginalCost(dispatch[g.Name])
	}

	var objective float64
	for _, g := range gens {
		objective += g.Cost.Evaluate(dispatch[g.Name])
	}

	lmp := make(map[int]float64, len(n.BusOrder()))
	for _, id := range n.BusOrder() {
		lmp[id] = marginalCost
	}

	return &OpfSolution{
		Converged:     true,
		Method:        MethodEconomic,
		Iterations:    1,
		Objective:     objective,
		GeneratorP:    dispatch,
		GeneratorQ:    map[string]float64{},
		BusVMag:       map[int]float64{},
		BusVAng:       map[int]float64{},
		BranchPFlow:   map[string]float64{},
		BranchQFlow:   map[string]float64{},
		BusLMP:        lmp,
		TotalLossesMW: demand - totalLoad,
	}, nil
}

func inServiceGenerators(n *network.Network) []*network.Generator {
	var out []*network.Generator
	for _, g := range n.Generators() {
		if g.Status {
			out = append(out, g)
		}
	}
	return out
}
