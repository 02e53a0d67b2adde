package ipc

import "fmt"

// SubprocessError reports an external solver subprocess exiting with a
// non-success exit code, per spec §6's exit-code semantics. Code is the
// ExitCode the subprocess reported (or ExitProtocolError if the process
// could not be started or its exit status could not be determined);
// Stderr is the last portion of its stderr stream, for diagnostics.
type SubprocessError struct {
	Binary string
	Code   ExitCode
	Stderr string
}

func (e *SubprocessError) Error() string {
	msg := fmt.Sprintf("ipc: subprocess %q exited with %s", e.Binary, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// NewSubprocessError builds a *SubprocessError.
func NewSubprocessError(binary string, code ExitCode, stderr string) error {
	return &SubprocessError{Binary: binary, Code: code, Stderr: stderr}
}
