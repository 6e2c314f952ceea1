package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/droidworld/droideval/internal/report"
)

var (
	reportFormat string
	reportOutput string
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <results.json>",
		Short: "Re-render a report from saved results",
		Long: `Re-render a report from a saved results.json file.

Rendering is deterministic: the same results file always produces the
same report bytes, so regenerated reports are diff-friendly.`,
		Args: cobra.ExactArgs(1),
		RunE: reportCommandE,
	}

	cmd.Flags().StringVar(&reportFormat, "format", "markdown", "Output format: markdown, json, junit, html, summary")
	cmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func reportCommandE(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read results: %w", err)
	}

	record, err := report.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse results: %w", err)
	}
	batch := &record.Evaluation

	var out []byte
	switch reportFormat {
	case "markdown":
		_, markdown := report.Render(batch)
		out = []byte(markdown)
	case "json":
		out, err = report.EncodeJSON(record)
		if err != nil {
			return err
		}
	case "junit":
		if reportOutput == "" {
			return fmt.Errorf("junit format requires --output")
		}
		return report.WriteJUnitXML(batch, reportOutput)
	case "html":
		_, markdown := report.Render(batch)
		out, err = report.RenderHTML(markdown)
		if err != nil {
			return err
		}
	case "summary":
		printSummary(cmd.OutOrStdout(), batch)
		fmt.Fprintln(cmd.OutOrStdout(), report.FormatSummaryReport(batch)) //nolint:errcheck
		return nil
	default:
		return fmt.Errorf("unknown format: %s", reportFormat)
	}

	if reportOutput != "" {
		return os.WriteFile(reportOutput, out, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
