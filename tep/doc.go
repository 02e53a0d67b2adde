// Package tep builds transmission expansion planning problems: given a
// network and a set of candidate lines not yet built, it assembles the
// mixed-integer DC formulation that chooses which candidates to build
// and how to dispatch generation, minimizing investment plus operating
// cost subject to a disjunctive Big-M linearization of each candidate's
// power-flow equation, per spec §4.7.
//
// This package only produces the problem; it does not solve it. No
// branch-and-bound or cutting-plane MIP solver exists anywhere in the
// retrieved pack, so BuildProblem returns a Problem for an external
// backend to consume through solverreg's MixedInteger dispatch class
// (registered under FormulationTEP with no in-process backend — see
// solverreg.Default). Callers that need a number instead of a problem
// must supply their own MIP backend and call Problem.Evaluate against
// its returned assignment.
package tep
