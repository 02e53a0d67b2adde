package solverreg

import "errors"

// ErrUnknownFormulation indicates Dispatch was asked to route a
// formulation name the registry never had registered.
var ErrUnknownFormulation = errors.New("solverreg: unknown formulation")
