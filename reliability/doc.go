// Package reliability runs a Monte Carlo composite-reliability study over
// a Network: independent two-state outage sampling per branch and
// generator, a degraded power-flow feasibility check per scenario, and
// LOLE/EUE accumulation across scenarios and areas, per spec §4.5.
//
// Scenarios are evaluated by a fixed worker pool (golang.org/x/sync's
// errgroup), each worker owning its own arena.IntArena/arena.Float64Arena
// pair reset between scenarios, per spec §4.8's "per worker thread" arena
// contract.
package reliability
