package tep

import (
	"math"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/gatlog"
	"github.com/gatcore/gat/network"
)

// buildThreshold is how close a binary variable's returned value must be
// to 1 to count as built. MIP solvers commonly return binaries at
// 1-epsilon or 0+epsilon rather than exact integers.
const buildThreshold = 0.5

// Evaluate decodes a raw variable assignment returned by an external MIP
// backend against p into a Solution, recomputing costs and branch flows
// directly from the assignment rather than trusting the backend's own
// reported objective value. n is the same base network BuildProblem was
// called with (used to look up generator cost models and existing branch
// reactances for flow reporting) and optimal reports whether the backend
// considered the assignment a proven optimum rather than a feasible
// incumbent.
func Evaluate(p *Problem, n *network.Network, assignment map[string]float64, optimal bool, statusMessage string) (*Solution, error) {
	if len(assignment) == 0 {
		return nil, gaterrors.NewDataValidation("tep: empty assignment")
	}

	sol := &Solution{
		Optimal:           optimal,
		GeneratorDispatch: make(map[string]float64),
		BusAngles:         make(map[int]float64),
		ExistingFlowMW:    make(map[string]float64),
		StatusMessage:     statusMessage,
	}

	for _, id := range n.BusOrder() {
		sol.BusAngles[id] = assignment[VariableNameTheta(id)]
	}

	for _, g := range n.Generators() {
		if !g.Status {
			continue
		}
		v := assignment[VariableNameGen(g.Name)]
		sol.GeneratorDispatch[g.Name] = v
		sol.OperatingCost += g.Cost.Evaluate(v)
	}

	for _, b := range n.Branches() {
		if !b.Status {
			continue
		}
		flow := n.BaseMVA / b.X * (sol.BusAngles[b.From] - sol.BusAngles[b.To])
		sol.ExistingFlowMW[b.Name] = flow
	}

	for _, name := range sortedCandidateNames(p.Candidates) {
		var c CandidateLine
		for _, cand := range p.Candidates {
			if cand.Name == name {
				c = cand
				break
			}
		}
		built := assignment[VariableNameBuild(c.Name)] > buildThreshold
		flow := assignment[VariableNameFlow(c.Name)]
		decision := LineBuildDecision{
			CandidateName: c.Name,
			Built:         built,
			FlowMW:        flow,
		}
		if built {
			decision.InvestmentCost = c.Cost
			sol.InvestmentCost += c.Cost
		}
		sol.BuildDecisions = append(sol.BuildDecisions, decision)
	}

	sol.TotalCost = sol.InvestmentCost + sol.OperatingCost

	gatlog.Component("tep.evaluate").Debug().
		Bool("optimal", optimal).
		Float64("investmentCost", sol.InvestmentCost).
		Float64("operatingCost", sol.OperatingCost).
		Msg("MILP assignment decoded")

	return sol, nil
}

// Feasible reports whether assignment satisfies every constraint in p
// within tolerance — a sanity check callers can run on a backend's
// returned point before trusting it, independent of whether the backend
// itself claims optimality.
func Feasible(p *Problem, assignment map[string]float64, tolerance float64) bool {
	for _, c := range p.Constraints {
		lhs := 0.0
		for v, coef := range c.Coeffs {
			lhs += coef * assignment[v]
		}
		switch c.Sense {
		case LessEqual:
			if lhs > c.RHS+tolerance {
				return false
			}
		case GreaterEqual:
			if lhs < c.RHS-tolerance {
				return false
			}
		case Equal:
			if math.Abs(lhs-c.RHS) > tolerance {
				return false
			}
		}
	}
	for v, b := range p.Bounds {
		val := assignment[v]
		if val < b.Lower-tolerance || val > b.Upper+tolerance {
			return false
		}
	}
	return true
}
