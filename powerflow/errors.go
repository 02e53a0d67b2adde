package powerflow

import "errors"

// ErrNoSlackBus indicates a solve was requested on a network with no
// designated slack bus.
var ErrNoSlackBus = errors.New("powerflow: no slack bus designated")

// ErrIsland indicates the network is not fully connected to the slack
// bus, so B' or the full Jacobian would be singular by construction.
var ErrIsland = errors.New("powerflow: network has an island unreachable from the slack bus")
