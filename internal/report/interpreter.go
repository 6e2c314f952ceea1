package report

import (
	"fmt"
	"strings"

	"github.com/droidworld/droideval/internal/metrics"
	"github.com/droidworld/droideval/internal/models"
)

// InterpretSuccessRate returns a human-readable explanation of a success
// rate (0–1).
func InterpretSuccessRate(rate float64) string {
	pct := rate * 100
	switch {
	case pct >= 100:
		return fmt.Sprintf("All episodes passed (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most episodes passed (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the episodes passed (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few episodes passed (%.0f%%)", pct)
	}
}

// InterpretFlaky explains whether results are flaky and what that means.
func InterpretFlaky(successRate float64) string {
	if !metrics.IsFlaky(successRate) {
		return "Results are consistent across episodes."
	}
	pct := successRate * 100
	return fmt.Sprintf("Results are flaky: the same task passes and fails across episodes (%.0f%% success rate). Consider more episodes or investigating non-determinism.", pct)
}

// FormatSummaryReport produces a plain-language console interpretation of
// an evaluation batch.
func FormatSummaryReport(batch *models.EvaluationBatch) string {
	var b strings.Builder
	summary := batch.Summary

	b.WriteString("=== Interpretation ===\n\n")

	b.WriteString(fmt.Sprintf("Success Rate:  %s\n", InterpretSuccessRate(summary.SuccessRate)))
	b.WriteString(fmt.Sprintf("Avg Duration:  %.2fs\n", summary.AverageDuration))
	b.WriteString(fmt.Sprintf("Total Time:    %.2fs\n", summary.TotalTime))

	if summary.TotalEpisodes > 0 {
		b.WriteString(fmt.Sprintf("Episodes:      %d passed, %d failed out of %d total\n",
			summary.SuccessfulEpisodes, summary.FailedEpisodes, summary.TotalEpisodes))
		b.WriteString(fmt.Sprintf("               %s\n", InterpretFlaky(summary.SuccessRate)))
	}

	if summary.TotalEpisodes >= 2 {
		durations := make([]float64, 0, len(batch.EpisodeResults))
		for _, res := range batch.EpisodeResults {
			durations = append(durations, res.Duration)
		}
		lo, hi := metrics.ConfidenceInterval95(durations)
		b.WriteString(fmt.Sprintf("Duration:      stddev %.3fs, 95%% CI [%.3fs, %.3fs]\n",
			metrics.StdDev(durations), lo, hi))
	}

	if batch.Cancelled {
		b.WriteString(fmt.Sprintf("\nEvaluation was cancelled after %d of %d episodes.\n",
			summary.TotalEpisodes, batch.RequestedEpisodes))
	}

	return b.String()
}
