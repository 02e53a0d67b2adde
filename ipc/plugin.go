package ipc

import (
	"os"

	"github.com/gatcore/gat/gatlog"
)

// Plugin is implemented by a standalone solver binary's main package,
// mirroring gat-solver-common's SolverPlugin trait.
type Plugin interface {
	// Name identifies the plugin in its own log lines (e.g. "gat-cbc").
	Name() string
	// Solve runs the plugin's underlying solver against problem.
	Solve(problem *ProblemBatch) (*SolutionBatch, error)
}

// Initializer is an optional interface a Plugin may additionally
// implement for setup that should run (and be allowed to fail with
// ExitInitError) before the problem is even read — a license check, a
// native library handle, and so on.
type Initializer interface {
	Init() error
}

// RunPlugin is the harness a solver binary's main calls: it reads one
// ProblemBatch from stdin, calls plugin.Solve, writes the resulting
// SolutionBatch to stdout, and exits with the exit code spec §6 assigns
// to each outcome. It never returns.
func RunPlugin(plugin Plugin) {
	log := gatlog.Component(plugin.Name())
	log.Info().Int("protocol_version", ProtocolVersion).Msg("starting solver plugin")

	if initializer, ok := plugin.(Initializer); ok {
		if err := initializer.Init(); err != nil {
			log.Error().Err(err).Msg("plugin initialization failed")
			os.Exit(int(ExitInitError))
		}
	}

	problem, err := ReadProblemBatch(os.Stdin)
	if err != nil {
		log.Error().Err(err).Msg("failed to read problem from stdin")
		os.Exit(int(ExitProtocolError))
	}
	log.Info().
		Int("buses", problem.NumBuses()).
		Int("generators", problem.NumGenerators()).
		Int("branches", problem.NumBranches()).
		Msg("problem received")

	solution, err := plugin.Solve(problem)
	if err != nil {
		log.Error().Err(err).Msg("solver error")
		os.Exit(int(ExitSolverError))
	}

	if err := WriteSolutionBatch(os.Stdout, solution); err != nil {
		log.Error().Err(err).Msg("failed to write solution to stdout")
		os.Exit(int(ExitProtocolError))
	}
	log.Info().Str("status", solution.Status.String()).Float64("objective", solution.Objective).Msg("solution written")

	os.Exit(int(ExitSuccess))
}
