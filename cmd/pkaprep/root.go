package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "pkaprep",
		Short:         "Launch the pKa data preparation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if shouldSkipConfig(cmd) {
			return nil
		}
		return ctx.ensureConfig()
	}

	registerGlobalFlags(rootCmd.PersistentFlags(), ctx)

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newPlanCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func registerGlobalFlags(flags *pflag.FlagSet, ctx *commandContext) {
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.overrides.DataPath, "data-path", "", "Directory holding every stage input and output")
	flags.StringVar(&ctx.overrides.DatasetVersion, "dataset-version", "", "Version tag embedded in generated file names")
	flags.StringVar(&ctx.overrides.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&ctx.overrides.LogFormat, "log-format", "", "Log format (console or json)")
}
