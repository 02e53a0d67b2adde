package opf

import "errors"

// ErrNoGenerators indicates a dispatch was requested against a network
// with no in-service generator.
var ErrNoGenerators = errors.New("opf: network has no in-service generators")

// ErrDemandBelowMinimum indicates total demand (plus the loss estimate,
// for economic dispatch) is below the aggregate generator minimum output
// — no feasible dispatch can shed that much generation.
var ErrDemandBelowMinimum = errors.New("opf: demand below aggregate generator minimum output")

// ErrCapacityInsufficient indicates total demand exceeds aggregate
// generator maximum output.
var ErrCapacityInsufficient = errors.New("opf: generator capacity insufficient for demand")
