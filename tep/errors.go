package tep

import "errors"

// ErrNoCandidates indicates BuildProblem was called with an empty
// candidate set — there is nothing to plan.
var ErrNoCandidates = errors.New("tep: no candidate lines supplied")

// ErrNoSlack indicates the base network has no designated slack bus.
var ErrNoSlack = errors.New("tep: network has no slack bus designated")

// ErrDisconnected indicates the base network (before any candidate is
// built) has an island unreachable from the slack bus. A disconnected
// base case makes the DC balance constraints of the unreachable part
// unsolvable by construction; candidates are meant to reinforce an
// already-connected system, not to be relied on for first connectivity.
var ErrDisconnected = errors.New("tep: network has an island unreachable from the slack bus")

// ErrDuplicateCandidate indicates two candidate lines share a name.
var ErrDuplicateCandidate = errors.New("tep: duplicate candidate line name")

// ErrUnknownBus indicates a candidate line references a bus ID absent
// from the network.
var ErrUnknownBus = errors.New("tep: candidate line references unknown bus")
