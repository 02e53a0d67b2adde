package ipc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/gatcore/gat/gatlog"
)

// SolverProcess drives one round-trip with an external solver binary:
// the ProblemBatch is framed to its stdin, its stderr is drained line by
// line to the component logger, and a SolutionBatch is framed back from
// its stdout, per spec §6's subprocess architecture.
type SolverProcess struct {
	// Binary is the executable name or path looked up via exec.LookPath
	// semantics (a bare name resolves against PATH).
	Binary string
}

// NewSolverProcess returns a SolverProcess for the given solver ID's
// well-known binary name.
func NewSolverProcess(id SolverID) *SolverProcess {
	return &SolverProcess{Binary: id.BinaryName()}
}

// Solve launches the subprocess, sends problem, and returns the
// SolutionBatch it writes back. If problem.TimeoutSeconds is nonzero and
// ctx carries no earlier deadline, Solve applies it as the subprocess's
// wall-clock budget.
func (sp *SolverProcess) Solve(ctx context.Context, problem *ProblemBatch) (*SolutionBatch, error) {
	log := gatlog.Component("ipc.subprocess")

	if problem.TimeoutSeconds > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(problem.TimeoutSeconds)*time.Second)
			defer cancel()
		}
	}

	var stdin bytes.Buffer
	if err := WriteProblemBatch(&stdin, problem); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, sp.Binary)
	cmd.Stdin = &stdin

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, NewSubprocessError(sp.Binary, ExitInitError, err.Error())
	}

	var stderrTail bytes.Buffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(stderrPipe)
		for scanner.Scan() {
			line := scanner.Text()
			stderrTail.WriteString(line)
			stderrTail.WriteByte('\n')
			log.Info().Str("solver", sp.Binary).Msg(line)
		}
	}()

	if err := cmd.Start(); err != nil {
		return nil, NewSubprocessError(sp.Binary, ExitInitError, err.Error())
	}
	runErr := cmd.Wait()
	<-done

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, NewSubprocessError(sp.Binary, ExitCode(exitErr.ExitCode()), stderrTail.String())
		}
		if ctx.Err() != nil {
			return nil, NewSubprocessError(sp.Binary, ExitSolverError, "subprocess timed out: "+ctx.Err().Error())
		}
		return nil, NewSubprocessError(sp.Binary, ExitInitError, runErr.Error())
	}

	return ReadSolutionBatch(&stdout)
}
