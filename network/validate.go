package network

// Validate checks every invariant spec §4.1 requires, returning the first
// violation found. Solvers call this once at their entry point and never
// rely on catching a data-validation error deeper in the call stack.
func (n *Network) Validate() error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if len(n.buses) == 0 {
		return ErrEmptyNetwork
	}
	if n.BaseMVA <= 0 {
		return ErrInvalidBaseMVA
	}

	for _, b := range n.buses {
		if b.BaseKV <= 0 {
			return ErrInvalidBaseKV
		}
		if b.VMin > b.VMax {
			return ErrInvalidVoltageBounds
		}
	}

	for _, g := range n.generators {
		if _, ok := n.buses[g.BusID]; !ok {
			return ErrBusNotFound
		}
		if g.PMin > g.PMax || g.QMin > g.QMax {
			return ErrInvalidGenBounds
		}
		if g.Status && g.ActiveMW < 0 {
			return ErrNegativeDispatch
		}
	}

	for _, l := range n.loads {
		if _, ok := n.buses[l.BusID]; !ok {
			return ErrBusNotFound
		}
	}

	for _, s := range n.shunts {
		if _, ok := n.buses[s.BusID]; !ok {
			return ErrBusNotFound
		}
	}

	for _, br := range n.branches {
		if _, ok := n.buses[br.From]; !ok {
			return ErrBusNotFound
		}
		if _, ok := n.buses[br.To]; !ok {
			return ErrBusNotFound
		}
		if br.R < 0 {
			return ErrNegativeImpedance
		}
		if br.R == 0 && br.X == 0 {
			return ErrZeroImpedance
		}
		if br.Tap <= 0 {
			return ErrInvalidTap
		}
		if br.RatingMVA < 0 {
			return ErrNegativeRating
		}
	}

	return nil
}
