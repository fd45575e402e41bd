package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"pkaprep/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, stdout, stderr io.Writer) error
}

// interruptGrace is how long a cancelled child gets between SIGINT and SIGKILL.
const interruptGrace = 10 * time.Second

type commandExecutor struct{}

// Run starts the program and blocks until it exits. Output is passed through
// unbuffered: an *os.File is inherited by the child (a terminal stays a
// terminal), any other writer receives each chunk as the child writes it.
// Cancelling ctx sends SIGINT, then SIGKILL after interruptGrace.
func (commandExecutor) Run(ctx context.Context, binary string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = interruptGrace

	if err := cmd.Start(); err != nil {
		return classifyStartError(binary, err)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

func classifyStartError(binary string, err error) error {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return services.Wrap(services.ErrNotFound, "", "start command", fmt.Sprintf("program %q not found", binary), err)
	case errors.Is(err, fs.ErrPermission):
		return services.Wrap(services.ErrExternalTool, "", "start command", fmt.Sprintf("program %q is not executable", binary), err)
	default:
		return fmt.Errorf("start command: %w", err)
	}
}
