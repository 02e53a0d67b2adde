// Package gatlog supplies the structured logger shared by every solver
// package. It wraps github.com/rs/zerolog the way the teacher wraps
// testify for assertions: one small adapter, consistently imported,
// instead of each package inventing its own logging shape.
package gatlog
