// Package gatconfig holds the solve-time primitives shared by every solver
// package: a CancelToken polled at iteration boundaries, and a Deadline
// helper wrapping a wall-clock cutoff. Both follow the sparse-check
// discipline of the teacher's tsp.bbEngine.deadlineCheck: checking a clock
// or an atomic on every inner-loop iteration is wasteful, so callers are
// expected to check at iteration/scenario/outer-loop boundaries only.
package gatconfig
