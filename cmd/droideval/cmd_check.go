package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/droidworld/droideval/internal/device"
	"github.com/droidworld/droideval/internal/models"
	"github.com/droidworld/droideval/internal/validation"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [eval.yaml ...]",
		Short: "Check eval specs and device readiness",
		Long: `Check that eval spec files are ready to run.

Performs the following checks per spec:
  1. Schema validation - the YAML conforms to the eval spec schema
  2. Config validation - episodes, timeout, and backend values are sane
  3. Device probe (with --device) - the configured adb device is reachable

With no arguments, checks eval.yaml in the current directory.`,
		Args:          cobra.ArbitraryArgs,
		RunE:          runCheck,
		SilenceErrors: true,
	}
	cmd.Flags().String("format", "text", "Output format: text | json")
	cmd.Flags().Bool("device", false, "Probe the configured adb device")
	return cmd
}

// specReport is the outcome of checking one spec file.
type specReport struct {
	Path        string   `json:"path"`
	Name        string   `json:"name,omitempty"`
	Backend     string   `json:"backend,omitempty"`
	Episodes    int      `json:"episodes,omitempty"`
	SchemaErrs  []string `json:"schemaErrors,omitempty"`
	LoadErr     string   `json:"loadError,omitempty"`
	DeviceNote  string   `json:"device,omitempty"`
	DeviceReady bool     `json:"deviceReady,omitempty"`
	Ready       bool     `json:"ready"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	probeDevice, _ := cmd.Flags().GetBool("device")

	paths := args
	if len(paths) == 0 {
		paths = []string{"eval.yaml"}
	}

	reports := make([]*specReport, 0, len(paths))
	for _, path := range paths {
		reports = append(reports, checkSpec(cmd.Context(), path, probeDevice))
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(struct {
			Specs []*specReport `json:"specs"`
		}{Specs: reports}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data)) //nolint:errcheck
	case "text":
		printCheckSummaryTable(cmd.OutOrStdout(), reports, probeDevice)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	notReady := 0
	for _, r := range reports {
		if !r.Ready {
			notReady++
		}
	}
	if notReady > 0 {
		return fmt.Errorf("%d of %d spec(s) not ready", notReady, len(reports))
	}
	return nil
}

func checkSpec(ctx context.Context, path string, probeDevice bool) *specReport {
	report := &specReport{Path: path}

	schemaErrs, err := validation.ValidateEvalFile(path)
	if err != nil {
		report.LoadErr = err.Error()
		return report
	}
	report.SchemaErrs = schemaErrs

	spec, err := models.LoadEvalSpec(path)
	if err != nil {
		report.LoadErr = err.Error()
		return report
	}
	report.Name = spec.Name
	report.Backend = spec.Config.Backend
	report.Episodes = spec.Config.Episodes
	report.Ready = len(schemaErrs) == 0

	if probeDevice && spec.Config.Backend == models.BackendADB {
		report.DeviceReady, report.DeviceNote = probeADBDevice(ctx, spec.Device)
		if !report.DeviceReady {
			report.Ready = false
		}
	}

	return report
}

// probeADBDevice connects to the configured device and reads its model.
func probeADBDevice(ctx context.Context, options map[string]any) (bool, string) {
	driver, err := device.NewADBDriver(options)
	if err != nil {
		return false, err.Error()
	}
	defer driver.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := driver.Connect(ctx); err != nil {
		if errors.Is(err, device.ErrUnavailable) {
			return false, "no device reachable (runs would fall back to simulated)"
		}
		return false, err.Error()
	}

	model, err := driver.Model(ctx)
	if err != nil {
		return false, fmt.Sprintf("connected, model lookup failed: %v", err)
	}
	return true, model
}

func printCheckSummaryTable(w io.Writer, reports []*specReport, probeDevice bool) {
	const maxNameWidth = 30
	const minNameWidth = 10

	// Compute dynamic column width from the longest spec path.
	nameWidth := len("Spec")
	for _, r := range reports {
		if runeLen := utf8.RuneCountInString(r.Path); runeLen > nameWidth {
			nameWidth = runeLen
		}
	}
	if nameWidth > maxNameWidth {
		nameWidth = maxNameWidth
	}
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}

	// Fixed column widths (display columns) for emoji-safe alignment.
	const colSchema = 8
	const colBackend = 11
	const colEpisodes = 10
	totalWidth := nameWidth + colSchema + colBackend + colEpisodes + 8 // 8 = 4 gaps × 2 spaces
	if probeDevice {
		totalWidth += 22
	}

	fmt.Fprintf(w, "\n") //nolint:errcheck
	fmt.Fprintf(w, "%s\n", strings.Repeat("═", totalWidth)) //nolint:errcheck
	fmt.Fprintf(w, " CHECK SUMMARY\n") //nolint:errcheck
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("═", totalWidth)) //nolint:errcheck

	header := fmt.Sprintf("%s  %s  %s  %s  %s",
		padRight("Spec", nameWidth),
		padRight("Schema", colSchema),
		padRight("Backend", colBackend),
		padRight("Episodes", colEpisodes),
		"Ready")
	if probeDevice {
		header += "  Device"
	}
	fmt.Fprintf(w, "%s\n", header) //nolint:errcheck
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", totalWidth)) //nolint:errcheck

	for _, r := range reports {
		name := truncateName(r.Path, nameWidth)

		schemaStatus := "✅"
		if r.LoadErr != "" || len(r.SchemaErrs) > 0 {
			schemaStatus = "❌"
		}
		readyStatus := "✅"
		if !r.Ready {
			readyStatus = "❌"
		}

		line := fmt.Sprintf("%s  %s  %s  %s  %s",
			padRight(name, nameWidth),
			padRight(schemaStatus, colSchema),
			padRight(r.Backend, colBackend),
			padRight(fmt.Sprintf("%d", r.Episodes), colEpisodes),
			padRight(readyStatus, 5))
		if probeDevice {
			note := r.DeviceNote
			if note == "" {
				note = "—"
			}
			line += "  " + note
		}
		fmt.Fprintf(w, "%s\n", line) //nolint:errcheck

		if r.LoadErr != "" {
			fmt.Fprintf(w, "    • %s\n", r.LoadErr) //nolint:errcheck
		}
		for _, e := range r.SchemaErrs {
			fmt.Fprintf(w, "    • %s\n", e) //nolint:errcheck
		}
	}
	fmt.Fprintf(w, "\n") //nolint:errcheck
}

func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
