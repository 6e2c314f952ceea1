package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/droidworld/droideval/internal/models"
	"github.com/droidworld/droideval/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new eval spec",
		Long: `Initialize a new evaluation spec.

Creates an eval.yaml spec file with a starter task configuration.

Use --interactive to run a guided wizard that collects the task,
episode count, and backend instead of writing the defaults.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run guided eval creation wizard")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	// Create the root directory if it doesn't exist
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	specPath := filepath.Join(dir, "eval.yaml")
	if _, err := os.Stat(specPath); err == nil {
		return fmt.Errorf("%s already exists", specPath)
	}

	draft := &wizard.EvalDraft{
		Name:        "my-task-eval",
		Description: "Evaluation of a device task.",
		Task:        "open settings app",
		Episodes:    5,
		TimeoutSec:  30,
		Backend:     models.BackendADB,
	}

	if interactive {
		var err error
		draft, err = wizard.RunEvalWizard(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("wizard failed: %w", err)
		}
	}

	content, err := wizard.GenerateEvalYAML(draft)
	if err != nil {
		return fmt.Errorf("failed to generate eval.yaml: %w", err)
	}

	if err := os.WriteFile(specPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write eval.yaml: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", specPath) //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "Run it with: droideval eval %s\n", specPath) //nolint:errcheck
	return nil
}
