package solverreg

import (
	"sort"

	"github.com/gatcore/gat/gaterrors"
)

// Registry holds the formulations and backends known to one process.
// Read-only after construction is complete, concurrent Dispatch calls are
// safe (spec §5's "the solver registry is read-only after construction").
type Registry struct {
	formulations map[string]Formulation
	backends     []Backend
	preferred    map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		formulations: make(map[string]Formulation),
		preferred:    make(map[string]string),
	}
}

// RegisterFormulation adds or replaces a formulation by name.
func (r *Registry) RegisterFormulation(f Formulation) {
	r.formulations[f.Name] = f
}

// RegisterBackend appends a backend to the dispatch search order.
// Registration order is the tie-break when no preference is set and more
// than one backend supports a class.
func (r *Registry) RegisterBackend(b Backend) {
	r.backends = append(r.backends, b)
}

// PreferBackend pins which backend Dispatch should try first for a given
// formulation, ahead of plain registration-order availability scanning.
// The preference is only honored if that backend both supports the
// formulation's class and reports itself Available.
func (r *Registry) PreferBackend(formulationName, backendID string) {
	r.preferred[formulationName] = backendID
}

// Formulations returns every registered formulation, sorted by name.
func (r *Registry) Formulations() []Formulation {
	out := make([]Formulation, 0, len(r.formulations))
	for _, f := range r.formulations {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Backends returns every registered backend in registration order.
func (r *Registry) Backends() []Backend {
	out := make([]Backend, len(r.backends))
	copy(out, r.backends)
	return out
}

// Dispatch returns the backend that should solve the named formulation:
// the preferred backend if one is set and available, otherwise the first
// available backend (in registration order) that supports the
// formulation's problem class. MixedInteger formulations never fall back
// to a different class when no backend is found — spec §4.4.5 — Dispatch
// simply reports BackendUnavailable, same as any other class that finds
// nothing.
func (r *Registry) Dispatch(formulationName string) (Backend, error) {
	f, ok := r.formulations[formulationName]
	if !ok {
		return nil, gaterrors.NewDataValidation(ErrUnknownFormulation.Error() + ": " + formulationName)
	}

	if prefID, ok := r.preferred[formulationName]; ok {
		for _, b := range r.backends {
			if b.ID() == prefID && b.Supports(f.Class) && b.Available() {
				return b, nil
			}
		}
	}

	for _, b := range r.backends {
		if b.Supports(f.Class) && b.Available() {
			return b, nil
		}
	}

	return nil, gaterrors.NewBackendUnavailable(formulationName)
}
