package launcher

import (
	"fmt"
	"io"

	"github.com/alessio/shellescape"

	"pkaprep/internal/pipeline"
)

// DryRun writes the commands a plan would execute, one shell-quoted line each.
func DryRun(w io.Writer, plan pipeline.Plan) error {
	for _, inv := range plan.Invocations {
		if _, err := fmt.Fprintln(w, ShellJoin(inv.Argv())); err != nil {
			return fmt.Errorf("write dry run: %w", err)
		}
	}
	return nil
}

// ShellJoin quotes argv so it can be pasted into a POSIX shell.
func ShellJoin(argv []string) string {
	return shellescape.QuoteCommand(argv)
}
