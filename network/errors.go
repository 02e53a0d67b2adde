package network

import "errors"

// Sentinel errors for network construction and mutation. Solvers map these
// (or wrap them) into gaterrors.DataValidation at their entry point, per
// spec §7's propagation policy: validation is detected once, at the top.
var (
	// ErrEmptyNetwork indicates a Network with no buses.
	ErrEmptyNetwork = errors.New("network: empty network")

	// ErrBusNotFound indicates a reference to a bus ID that does not exist.
	ErrBusNotFound = errors.New("network: bus not found")

	// ErrDuplicateBus indicates an attempt to add a bus ID that already exists.
	ErrDuplicateBus = errors.New("network: duplicate bus id")

	// ErrInvalidBaseKV indicates a non-positive base voltage.
	ErrInvalidBaseKV = errors.New("network: base_kv must be positive")

	// ErrInvalidBaseMVA indicates a non-positive network base MVA.
	ErrInvalidBaseMVA = errors.New("network: base_mva must be positive")

	// ErrInvalidVoltageBounds indicates vmin > vmax on a bus.
	ErrInvalidVoltageBounds = errors.New("network: vmin must be <= vmax")

	// ErrInvalidGenBounds indicates pmin > pmax or qmin > qmax on a generator.
	ErrInvalidGenBounds = errors.New("network: generator bounds invalid")

	// ErrNegativeDispatch indicates a dispatchable generator with active_mw < 0.
	ErrNegativeDispatch = errors.New("network: dispatchable generator active power must be >= 0")

	// ErrNegativeImpedance indicates r < 0 on a branch.
	ErrNegativeImpedance = errors.New("network: branch resistance must be >= 0")

	// ErrZeroImpedance indicates |r+jx| == 0 on a branch.
	ErrZeroImpedance = errors.New("network: branch impedance magnitude must be > 0")

	// ErrInvalidTap indicates tap ratio <= 0 on a branch.
	ErrInvalidTap = errors.New("network: branch tap ratio must be > 0")

	// ErrNegativeRating indicates a negative thermal rating on a branch.
	ErrNegativeRating = errors.New("network: branch rating must be >= 0")

	// ErrMultipleSlack indicates more than one bus designated as slack.
	ErrMultipleSlack = errors.New("network: at most one slack bus may be designated")

	// ErrNoSlack indicates no slack bus is designated when one is required.
	ErrNoSlack = errors.New("network: no slack bus designated")
)
