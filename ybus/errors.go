package ybus

import "errors"

// Sentinel errors for Y-bus construction. Wrapped as a
// *gaterrors.DataValidation at the package boundary (Build never returns
// these bare — see the wrapping at the bottom of ybus.go).
var (
	// ErrTinyImpedance indicates a branch's series impedance magnitude
	// |r+jx| is below the 1e-12 threshold spec §4.2 requires.
	ErrTinyImpedance = errors.New("ybus: branch impedance magnitude below 1e-12")

	// ErrUnknownBus indicates a branch or shunt references a bus ID not
	// present in the network's bus set.
	ErrUnknownBus = errors.New("ybus: unknown bus id")
)
