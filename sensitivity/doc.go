// Package sensitivity builds linear sensitivity factors — PTDF and LODF —
// over a network's DC approximation and uses them to screen N-1
// contingencies without re-solving power flow for every outage, per
// spec §4.6.
//
// BuildPTDF inverts the reduced B′ susceptance matrix once; BuildLODF
// derives branch-outage distribution factors from that same inverse.
// ScreenContingencies then walks every in-service branch outage in
// parallel (golang.org/x/sync/errgroup, mirroring reliability's worker
// pool), flags thermal violations from the linear estimate, and escalates
// severe cases to a full powerflow.SolveAC recheck since LODF is only an
// approximation.
package sensitivity
