// Package arena implements the phase-scoped bump allocator spec §4.8
// requires for per-scenario scratch allocations in Monte Carlo and per-
// outage temporaries in N-1 screening.
//
// Go has no destructors and a moving-free GC, so "bump allocator" here
// means: a reusable backing slice per worker, grown geometrically and
// never shrunk, with Reset resetting the length (not the capacity) to
// zero. Allocations handed out between Reset calls never move (slice
// headers into the same backing array stay valid until the next Reset),
// and Reset itself is O(1) exactly as the reference's bumpalo-backed
// ArenaContext documents.
package arena
