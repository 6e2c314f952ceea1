package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "droideval",
		Short: "droideval - evaluate tasks against Android devices",
		Long: `droideval runs natural-language tasks against an Android device over
adb for a configurable number of episodes and reports how reliably the
task succeeds.

When no device is reachable it falls back to a deterministic simulated
backend, so eval specs stay runnable on machines without hardware.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newEvalCommand())
	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
