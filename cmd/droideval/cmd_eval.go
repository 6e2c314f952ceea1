package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/droidworld/droideval/internal/config"
	"github.com/droidworld/droideval/internal/device"
	"github.com/droidworld/droideval/internal/evaluator"
	"github.com/droidworld/droideval/internal/execution"
	"github.com/droidworld/droideval/internal/models"
	"github.com/droidworld/droideval/internal/observability"
	"github.com/droidworld/droideval/internal/report"
	"github.com/droidworld/droideval/internal/utils"
	"github.com/droidworld/droideval/internal/validation"
)

var (
	evalEpisodes  int
	evalTimeout   int
	evalOutputDir string
	evalParallel  bool
	evalWorkers   int
	evalJUnitPath string
	evalHTMLPath  string
	evalVerbose   bool
	evalInterpret bool
	evalSimulated bool
)

// simulatedLatency is the per-action delay of the simulated backend so
// episode durations are non-zero and the statistics stay meaningful.
const simulatedLatency = 100 * time.Millisecond

func newEvalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <eval.yaml>",
		Short: "Run an evaluation from a spec file",
		Long: `Run an evaluation from a spec file.

The spec file defines the task, the number of episodes, the backend
(adb or simulated), and optional lifecycle hooks. Results are written
to the output directory as results.json and report.md, along with
traces.json and metrics.json from the observability collector.`,
		Args: cobra.ExactArgs(1),
		RunE: evalCommandE,
	}

	cmd.Flags().IntVar(&evalEpisodes, "episodes", 0, "Number of episodes (overrides spec config)")
	cmd.Flags().IntVar(&evalTimeout, "timeout", 0, "Per-episode timeout in seconds (overrides spec config)")
	cmd.Flags().StringVarP(&evalOutputDir, "output", "o", "results", "Output directory for results and reports")
	cmd.Flags().BoolVar(&evalParallel, "parallel", false, "Run episodes concurrently")
	cmd.Flags().IntVar(&evalWorkers, "workers", 0, "Number of concurrent workers (default: 4, requires --parallel)")
	cmd.Flags().StringVar(&evalJUnitPath, "junit", "", "Write a JUnit XML report to this path")
	cmd.Flags().StringVar(&evalHTMLPath, "html", "", "Write an HTML report to this path")
	cmd.Flags().BoolVarP(&evalVerbose, "verbose", "v", false, "Verbose output with per-episode progress")
	cmd.Flags().BoolVar(&evalInterpret, "interpret", false, "Print a plain-language interpretation of the results")
	cmd.Flags().BoolVar(&evalSimulated, "simulated", false, "Force the simulated backend (overrides spec config)")

	return cmd
}

func evalCommandE(cmd *cobra.Command, args []string) error {
	specPath := args[0]

	// Schema validation first, so a malformed spec fails with every
	// violation listed instead of the first YAML decode error.
	schemaErrs, err := validation.ValidateEvalFile(specPath)
	if err != nil {
		return fmt.Errorf("failed to read spec: %w", err)
	}
	if len(schemaErrs) > 0 {
		for _, e := range schemaErrs {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", e) //nolint:errcheck
		}
		return fmt.Errorf("spec %s failed schema validation with %d error(s)", specPath, len(schemaErrs))
	}

	spec, err := models.LoadEvalSpec(specPath)
	if err != nil {
		return fmt.Errorf("failed to load spec: %w", err)
	}

	// CLI flags override spec config
	if evalEpisodes > 0 {
		spec.Config.Episodes = evalEpisodes
	}
	if evalTimeout > 0 {
		spec.Config.TimeoutSec = evalTimeout
	}
	if evalParallel {
		spec.Config.Concurrent = true
	}
	if evalWorkers > 0 {
		spec.Config.Workers = evalWorkers
	}
	if evalSimulated {
		spec.Config.Backend = models.BackendSimulated
	}

	specDir, err := filepath.Abs(filepath.Dir(specPath))
	if err != nil {
		return fmt.Errorf("failed to resolve spec directory: %w", err)
	}

	// Relative output paths resolve against the spec directory so eval
	// suites stay self-contained regardless of the invocation cwd.
	resolved := utils.ResolvePaths([]string{evalOutputDir}, specDir)
	outputDir := resolved[0]
	junitPath, htmlPath := evalJUnitPath, evalHTMLPath
	if junitPath != "" {
		junitPath = utils.ResolvePaths([]string{junitPath}, specDir)[0]
	}
	if htmlPath != "" {
		htmlPath = utils.ResolvePaths([]string{htmlPath}, specDir)[0]
	}

	executor, err := newExecutor(spec)
	if err != nil {
		return err
	}

	cfg := config.NewEvalConfig(spec,
		config.WithSpecDir(specDir),
		config.WithOutputDir(outputDir),
		config.WithJUnitPath(junitPath),
		config.WithHTMLPath(htmlPath),
		config.WithVerbose(evalVerbose),
	)

	collector := observability.NewCollector("droideval")
	ev := evaluator.New(cfg, executor, evaluator.WithRecorder(collector))

	if evalVerbose {
		ev.OnProgress(verboseProgressListener)
	} else {
		ev.OnProgress(simpleProgressListener)
	}

	fmt.Printf("Eval: %s\n", spec.Name)
	fmt.Printf("Task: %s\n", spec.Task)
	fmt.Printf("Episodes: %d  Backend: %s\n\n", spec.Config.Episodes, spec.Config.Backend)

	// Ctrl-C cancels the run; completed episodes are kept and reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	batch, err := ev.Evaluate(ctx, spec.Task, spec.Config.Episodes)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), batch)

	if evalInterpret {
		fmt.Fprintln(cmd.OutOrStdout(), report.FormatSummaryReport(batch)) //nolint:errcheck
	}

	if err := persistArtifacts(batch, collector, cfg); err != nil {
		return err
	}
	fmt.Printf("Results written to %s\n", outputDir)

	if batch.Cancelled {
		return &EpisodeFailureError{Message: fmt.Sprintf(
			"evaluation cancelled after %d of %d episodes",
			len(batch.EpisodeResults), batch.RequestedEpisodes)}
	}
	if batch.Summary.FailedEpisodes > 0 {
		return &EpisodeFailureError{Message: fmt.Sprintf(
			"%d of %d episodes failed",
			batch.Summary.FailedEpisodes, batch.Summary.TotalEpisodes)}
	}
	return nil
}

// newExecutor builds the task executor for the spec's configured backend.
// An adb executor may still demote itself to simulated at initialize time
// when no device is reachable.
func newExecutor(spec *models.EvalSpec) (*execution.Executor, error) {
	switch spec.Config.Backend {
	case models.BackendSimulated:
		return execution.NewSimulatedExecutor(simulatedLatency), nil
	case models.BackendADB:
		driver, err := device.NewADBDriver(spec.Device)
		if err != nil {
			return nil, fmt.Errorf("invalid device config: %w", err)
		}
		return execution.NewDeviceExecutor(driver), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", spec.Config.Backend)
	}
}

// persistArtifacts writes the batch results, reports, and observability
// snapshots into the configured output locations.
func persistArtifacts(batch *models.EvaluationBatch, collector *observability.Collector, cfg *config.EvalConfig) error {
	outputDir := cfg.OutputDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	record, markdown := report.Render(batch)

	data, err := report.EncodeJSON(record)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "results.json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write results.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "report.md"), []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("failed to write report.md: %w", err)
	}

	if err := collector.SaveTraces(filepath.Join(outputDir, "traces.json")); err != nil {
		return fmt.Errorf("failed to write traces: %w", err)
	}
	if err := collector.SaveMetrics(filepath.Join(outputDir, "metrics.json")); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	if err := collector.SaveReport(filepath.Join(outputDir, "observability.md")); err != nil {
		return fmt.Errorf("failed to write observability report: %w", err)
	}

	if cfg.JUnitPath() != "" {
		if err := report.WriteJUnitXML(batch, cfg.JUnitPath()); err != nil {
			return fmt.Errorf("failed to write JUnit report: %w", err)
		}
	}
	if cfg.HTMLPath() != "" {
		html, err := report.RenderHTML(markdown)
		if err != nil {
			return fmt.Errorf("failed to render HTML report: %w", err)
		}
		if err := os.WriteFile(cfg.HTMLPath(), html, 0o644); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
	}

	return nil
}

// truncate shortens s to maxLen characters, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return strings.TrimSpace(s[:maxLen]) + "..."
}
