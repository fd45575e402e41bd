package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pkaprep/internal/logging"
	"pkaprep/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the newest mirrored log file (requires logging.file = true)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg == nil {
				return ctx.configErr
			}
			out := cmd.OutOrStdout()
			path, err := logs.Latest(cfg.LogDir(), logging.MirrorPattern)
			if err != nil {
				if errors.Is(err, logs.ErrNoLogs) {
					if !cfg.Logging.File {
						fmt.Fprintln(out, "Log mirroring is disabled; set logging.file = true to keep log files")
						return nil
					}
					fmt.Fprintf(out, "No log files in %s yet\n", cfg.LogDir())
					return nil
				}
				return err
			}

			err = logs.Tail(cmd.Context(), path, logs.TailOptions{Lines: lines, Follow: follow}, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	return cmd
}
