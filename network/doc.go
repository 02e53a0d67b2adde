// Package network is the typed graph of buses, generators, loads,
// branches, and shunts that every solver package borrows immutably for
// the duration of one solve (spec §3, §4.1).
//
// Node identity is two-layered, exactly as the design notes require: a
// dense integer Bus.ID used for matrix indexing and the wire format, and
// an internal core.Graph vertex handle (keyed by strconv.Itoa(Bus.ID))
// used for adjacency traversal. This avoids self-referential pointers
// between buses and their incident branches — the graph recovers
// adjacency through an index built at construction, and mutation removes
// edges in O(log m) without dangling references, the same shape the
// teacher's core.Graph already gives every other package in this module.
//
// A Network owns every Bus, Generator, Load, Branch, and Shunt added to
// it. Solvers borrow an immutable *Network; ApplyScenario never mutates
// the receiver, it returns a deep clone with the scenario applied.
package network
