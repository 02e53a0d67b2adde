// Package ipc implements the wire protocol between this core and an
// external solver subprocess, per spec §6: a ProblemBatch sent to the
// subprocess's stdin, a SolutionBatch read back from its stdout, stderr
// reserved for logs, and the subprocess's exit code carrying coarse
// status (0 success, 1 solver error, 2 protocol error, 3 initialization
// error).
//
// ProblemBatch and SolutionBatch mirror gat-solver-common's Rust
// parallel-array layout field for field; framing uses encoding/gob over
// a length-prefixed stream rather than Arrow IPC, since no Arrow
// implementation exists anywhere in the retrieved pack (see DESIGN.md).
// SolverProcess drives one subprocess round-trip from this side; Plugin
// and RunPlugin let a standalone solver binary implement the other side
// with the same harness shape gat-solver-common's plugin.rs provides.
package ipc
