package launcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"syscall"

	"pkaprep/internal/services"
)

// Exit statuses for failures that have no child status of their own. They
// follow the shell conventions.
const (
	ExitFailure     = 1
	ExitTimeout     = 124
	ExitNotRunnable = 126
	ExitNotFound    = 127
	ExitInterrupted = 130
)

// StageError reports the stage that stopped a run.
type StageError struct {
	Stage    string
	Index    int
	ExitCode int
	Err      error
}

func (e *StageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("stage %s failed (exit status %d): %v", e.Stage, e.ExitCode, e.Err)
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExitCode maps a launcher error to a process exit status: 0 for nil, the
// child's own status when it exited, 128+signal when it was killed, 124 for a
// stage timeout, 127 for a missing program, 126 for a program that cannot be
// executed, 130 for an interrupted run, and 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.ExitCode
	}
	return exitCodeFor(err)
}

// IsChildExit reports whether err carries the exit status of a child that ran.
// Such children already reported their own failure on stderr.
func IsChildExit(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

func exitCodeFor(err error) int {
	if errors.Is(err, services.ErrTimeout) {
		return ExitTimeout
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return 128 + int(status.Signal())
		}
		return ExitFailure
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, fs.ErrPermission):
		return ExitNotRunnable
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}

// childExitCode returns the status to record in history, or -1 when the child
// never produced one.
func childExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
