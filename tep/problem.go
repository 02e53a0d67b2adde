package tep

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gatcore/gat/gaterrors"
	"github.com/gatcore/gat/gatlog"
	"github.com/gatcore/gat/network"
	"github.com/gatcore/gat/powerflow"
)

// minBigM floors the Big-M constant so a network with every
// pre-expansion branch flow at zero (an islanded or unloaded base case)
// doesn't relax every candidate's disjunctive pair down to 0-width,
// which would force every candidate's flow to exactly match its DC
// equation regardless of x_k and defeat the disjunction's purpose.
const minBigM = 1.0

// BuildProblem assembles the mixed-integer DC transmission expansion
// problem for network n and candidate set candidates, per spec §4.7. The
// base network must already be connected and have a slack bus; the
// candidates are what may additionally connect or reinforce it.
func BuildProblem(n *network.Network, candidates []CandidateLine, opts ...Option) (*Problem, error) {
	log := gatlog.Component("tep.problem")
	start := time.Now()

	cfg := newConfig(opts...)

	if err := n.Validate(); err != nil {
		return nil, gaterrors.NewDataValidation(err.Error())
	}
	slackID, ok := n.SlackBusID()
	if !ok {
		return nil, gaterrors.NewDataValidation(ErrNoSlack.Error())
	}
	if !n.Connected() {
		return nil, gaterrors.NewDataValidation(ErrDisconnected.Error())
	}
	if len(candidates) == 0 {
		return nil, gaterrors.NewDataValidation(ErrNoCandidates.Error())
	}
	if err := validateCandidates(n, candidates); err != nil {
		return nil, err
	}

	baseline, err := powerflow.SolveDC(n)
	if err != nil {
		return nil, err
	}
	bigM := cfg.BigMMultiplier * peakAbsFlow(baseline)
	if bigM < minBigM {
		bigM = minBigM
	}

	p := &Problem{
		Objective:   make(map[string]float64),
		Bounds:      make(map[string]Bounds),
		Constraints: nil,
		BigM:        bigM,
		Candidates:  append([]CandidateLine(nil), candidates...),
		baseMVA:     n.BaseMVA,
	}

	order := n.BusOrder()
	for _, busID := range order {
		v := VariableNameTheta(busID)
		if busID == slackID {
			p.Bounds[v] = Bounds{Lower: 0, Upper: 0}
		} else {
			p.Bounds[v] = Bounds{Lower: -math.Pi, Upper: math.Pi}
		}
	}

	gens := n.Generators()
	for _, g := range gens {
		if !g.Status {
			continue
		}
		v := VariableNameGen(g.Name)
		p.Bounds[v] = Bounds{Lower: g.PMin, Upper: g.PMax}
		p.Objective[v] += g.Cost.C1
	}

	for _, c := range candidates {
		if cfg.Cancel.Cancelled() {
			return nil, gaterrors.NewCancelled()
		}
		if cfg.Deadline.Expired() {
			return nil, gaterrors.NewTimeout(0)
		}
		flowVar := VariableNameFlow(c.Name)
		buildVar := VariableNameBuild(c.Name)

		p.Bounds[flowVar] = Bounds{Lower: -bigM, Upper: bigM}
		p.Bounds[buildVar] = Bounds{Lower: 0, Upper: 1}
		p.BinaryVars = append(p.BinaryVars, buildVar)
		p.Objective[buildVar] += c.Cost

		b := n.BaseMVA / c.X // susceptance-like coefficient, MW per radian
		thetaFrom, thetaTo := VariableNameTheta(c.From), VariableNameTheta(c.To)

		p.Constraints = append(p.Constraints,
			Constraint{
				Name:   fmt.Sprintf("candidate:%s@upper", c.Name),
				Coeffs: map[string]float64{flowVar: 1, thetaFrom: -b, thetaTo: b, buildVar: bigM},
				Sense:  LessEqual,
				RHS:    bigM,
			},
			Constraint{
				Name:   fmt.Sprintf("candidate:%s@lower", c.Name),
				Coeffs: map[string]float64{flowVar: -1, thetaFrom: b, thetaTo: -b, buildVar: bigM},
				Sense:  LessEqual,
				RHS:    bigM,
			},
		)

		if c.RatingMVA > 0 {
			p.Constraints = append(p.Constraints,
				Constraint{
					Name:   fmt.Sprintf("candidate:%s@rate_upper", c.Name),
					Coeffs: map[string]float64{flowVar: 1, buildVar: -c.RatingMVA},
					Sense:  LessEqual,
					RHS:    0,
				},
				Constraint{
					Name:   fmt.Sprintf("candidate:%s@rate_lower", c.Name),
					Coeffs: map[string]float64{flowVar: -1, buildVar: -c.RatingMVA},
					Sense:  LessEqual,
					RHS:    0,
				},
			)
		}
	}

	existing := n.Branches()
	for _, b := range existing {
		if !b.Status || b.RatingMVA <= 0 {
			continue
		}
		coef := n.BaseMVA / b.X
		thetaFrom, thetaTo := VariableNameTheta(b.From), VariableNameTheta(b.To)
		p.Constraints = append(p.Constraints,
			Constraint{
				Name:   fmt.Sprintf("branch:%s@rate_upper", b.Name),
				Coeffs: map[string]float64{thetaFrom: coef, thetaTo: -coef},
				Sense:  LessEqual,
				RHS:    b.RatingMVA,
			},
			Constraint{
				Name:   fmt.Sprintf("branch:%s@rate_lower", b.Name),
				Coeffs: map[string]float64{thetaFrom: -coef, thetaTo: coef},
				Sense:  LessEqual,
				RHS:    b.RatingMVA,
			},
		)
	}

	loadByBus := make(map[int]float64, len(order))
	for _, l := range n.Loads() {
		loadByBus[l.BusID] += l.ActiveMW
	}

	for _, busID := range order {
		row := Constraint{
			Name:   fmt.Sprintf("balance:%d", busID),
			Coeffs: make(map[string]float64),
			Sense:  Equal,
			RHS:    loadByBus[busID],
		}
		for _, g := range gens {
			if g.Status && g.BusID == busID {
				row.Coeffs[VariableNameGen(g.Name)] += 1
			}
		}
		for _, b := range existing {
			if !b.Status {
				continue
			}
			coef := n.BaseMVA / b.X
			thetaFrom, thetaTo := VariableNameTheta(b.From), VariableNameTheta(b.To)
			switch busID {
			case b.From:
				row.Coeffs[thetaFrom] -= coef
				row.Coeffs[thetaTo] += coef
			case b.To:
				row.Coeffs[thetaFrom] += coef
				row.Coeffs[thetaTo] -= coef
			}
		}
		for _, c := range candidates {
			flowVar := VariableNameFlow(c.Name)
			switch busID {
			case c.From:
				row.Coeffs[flowVar] -= 1
			case c.To:
				row.Coeffs[flowVar] += 1
			}
		}
		p.Constraints = append(p.Constraints, row)
	}

	if cfg.MaxBuilds > 0 {
		row := Constraint{
			Name:   "cardinality:max_builds",
			Coeffs: make(map[string]float64, len(candidates)),
			Sense:  LessEqual,
			RHS:    float64(cfg.MaxBuilds),
		}
		for _, c := range candidates {
			row.Coeffs[VariableNameBuild(c.Name)] = 1
		}
		p.Constraints = append(p.Constraints, row)
	}

	log.Debug().
		Int("candidates", len(candidates)).
		Int("constraints", len(p.Constraints)).
		Float64("bigM", bigM).
		Dur("elapsed", time.Since(start)).
		Msg("TEP MILP assembled")

	return p, nil
}

func validateCandidates(n *network.Network, candidates []CandidateLine) error {
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if seen[c.Name] {
			return gaterrors.NewDataValidation(ErrDuplicateCandidate.Error() + ": " + c.Name)
		}
		seen[c.Name] = true
		if _, ok := n.BusByID(c.From); !ok {
			return gaterrors.NewDataValidation(ErrUnknownBus.Error() + ": " + c.Name)
		}
		if _, ok := n.BusByID(c.To); !ok {
			return gaterrors.NewDataValidation(ErrUnknownBus.Error() + ": " + c.Name)
		}
		if c.X == 0 {
			return gaterrors.NewDataValidation("tep: candidate line has zero reactance: " + c.Name)
		}
	}
	return nil
}

func peakAbsFlow(sol *powerflow.Solution) float64 {
	peak := 0.0
	for _, f := range sol.BranchPFlow {
		if math.Abs(f) > peak {
			peak = math.Abs(f)
		}
	}
	return peak
}

// sortedCandidateNames is a small helper kept for deterministic
// iteration in callers that want candidates in name order rather than
// BuildProblem's input order.
func sortedCandidateNames(candidates []CandidateLine) []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names
}
