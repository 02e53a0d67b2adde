package sensitivity

import "errors"

// ErrNoBranches indicates a network with nothing to build sensitivity
// factors over.
var ErrNoBranches = errors.New("sensitivity: network has no branches")

// ErrNoSlack indicates a network with no designated slack bus; PTDF's
// reduced B′ inversion requires one reference bus to remove.
var ErrNoSlack = errors.New("sensitivity: network has no slack bus")
