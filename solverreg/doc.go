// Package solverreg dispatches an OPF formulation to a backend capable of
// solving its problem class, per spec §4.4.5. A Registry holds two
// disjoint sets — formulations (what problem class each one declares) and
// backends (what classes each one supports and whether it's currently
// available) — and Dispatch picks the first available backend for a
// formulation's class, preferring a caller-set choice over plain
// availability order.
//
// opf never imports solverreg (that would cycle, since this package's
// default registry wraps opf's solve functions as the in-process
// backend); callers needing dispatch import solverreg and call opf
// themselves through the Backend it returns.
package solverreg
