package network

// Scenario describes a single perturbation of a Network: demand growth or
// decline (LoadScale), renewable-output scaling (RenewableScale), and a
// set of outaged branches/generators. ApplyScenario never mutates its
// receiver; it returns a new, independent clone.
type Scenario struct {
	// LoadScale multiplies every load's active and reactive power. 1.0
	// leaves loads unchanged.
	LoadScale float64
	// RenewableScale multiplies every generator's active and reactive
	// power set point. 1.0 leaves generation unchanged. This applies to
	// every generator uniformly (matching the reference implementation's
	// v1 behavior, not only units flagged renewable).
	RenewableScale float64
	// OutagedBranches names branches to drop from the clone entirely.
	OutagedBranches []string
	// OutagedGenerators names generators to zero out (set ActiveMW,
	// QMin, QMax to 0 and Status to false) without removing them from
	// the clone.
	OutagedGenerators []string
}

// DefaultScenario returns the no-op scenario: LoadScale and
// RenewableScale both 1.0, no outages.
func DefaultScenario() Scenario {
	return Scenario{LoadScale: 1.0, RenewableScale: 1.0}
}

// ApplyScenario returns a clone of n with the scenario applied: outaged
// branches removed, outaged generators zeroed, and the remaining loads
// and generators scaled. The receiver is never mutated (spec §3's
// ownership rule). Applying DefaultScenario() is a no-op round trip: the
// clone is equal in every numeric field to the original.
func (n *Network) ApplyScenario(s Scenario) (*Network, error) {
	loadScale := s.LoadScale
	if loadScale == 0 {
		loadScale = 1.0
	}
	renewableScale := s.RenewableScale
	if renewableScale == 0 {
		renewableScale = 1.0
	}

	out := n.Clone()

	outaged := make(map[string]bool, len(s.OutagedBranches))
	for _, name := range s.OutagedBranches {
		outaged[name] = true
	}
	for name := range outaged {
		if _, ok := out.branches[name]; ok {
			if err := out.RemoveBranch(name); err != nil {
				return nil, err
			}
		}
	}

	outagedGen := make(map[string]bool, len(s.OutagedGenerators))
	for _, name := range s.OutagedGenerators {
		outagedGen[name] = true
	}

	out.mu.Lock()
	for name, g := range out.generators {
		if outagedGen[name] {
			g.ActiveMW = 0
			g.QMin, g.QMax = 0, 0
			g.Status = false
			continue
		}
		g.ActiveMW *= renewableScale
	}
	for _, l := range out.loads {
		l.ActiveMW *= loadScale
		l.ReactiveMVAr *= loadScale
	}
	out.mu.Unlock()

	return out, nil
}
