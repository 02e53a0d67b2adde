// Package builder provides reusable "functional-options"-style building
// blocks for constructing core.Graph fixtures — regular grids for feeder
// topologies, plus ID and edge-weight schemes shared by benchmark and test
// setup code.
//
// The package offers the following key components:
//
//   - Configuration primitives:
//     – BuilderOption:     a function that mutates builderConfig before use.
//     – builderConfig:     holds RNG, ID-scheme, weight function, etc.
//   - Vertex-ID schemes (IDFn implementations):
//     – DefaultIDFn:       decimal strings ("0","1",…).
//     – SymbolIDFn:        single letters ("A","B",…).
//     – ExcelColumnIDFn:   Excel-style columns ("A","Z","AA",…).
//     – AlphanumericIDFn:  base-36 strings ("0"…"z","10",…).
//     – HexIDFn:           lowercase hexadecimal ("0","a","ff",…).
//   - Edge-weight distributions (WeightFn implementations):
//     – DefaultWeightFn:   constant weight DefaultEdgeWeight.
//     – ConstantWeightFn:  fixed user-provided value.
//     – UniformWeightFn:   uniform ∼U[min,max].
//     – NormalWeightFn:    Gaussian ∼N(mean,stddev), clipped.
//     – ExponentialWeightFn: exponential ∼Exp(rate).
//   - Topology constructor:
//     – Grid(rows, cols): 4-neighborhood orthogonal grid, row-major "r,c" IDs.
//
// Guarantees:
//
//   - Idempotent configuration: re-running the same builder on g will not duplicate
//     vertices or edges.
//   - Fast-fail on invalid option parameters via panics in option-constructors.
//   - Fully testable: all IDFn, WeightFn, and BuilderOption branches are
//     covered by unit tests alongside their implementation files.
//
// See individual function documentation for detailed contracts, panic conditions,
// parameter descriptions, and performance notes.
package builder
