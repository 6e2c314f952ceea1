package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/droidworld/droideval/internal/evaluator"
	"github.com/droidworld/droideval/internal/models"
	"github.com/droidworld/droideval/internal/report"
)

func verboseProgressListener(event evaluator.ProgressEvent) {
	switch event.EventType {
	case evaluator.EventEvaluationStart:
		fmt.Printf("Starting evaluation: %q x %d episode(s)...\n\n", truncate(event.Task, 60), event.TotalEpisodes)
	case evaluator.EventEpisodeStart:
		fmt.Printf("[%d/%d] Episode starting...", event.EpisodeNum, event.TotalEpisodes)
	case evaluator.EventEpisodeComplete:
		status := "✓"
		if !event.Success {
			status = "✗"
		}
		duration := time.Duration(event.DurationMs) * time.Millisecond
		fmt.Printf(" %s (%v)\n", status, duration)
	case evaluator.EventEvaluationComplete:
		fmt.Printf("\nEvaluation completed\n\n")
	case evaluator.EventEvaluationCancelled:
		fmt.Printf("\nEvaluation cancelled\n\n")
	}
}

func simpleProgressListener(event evaluator.ProgressEvent) {
	switch event.EventType {
	case evaluator.EventEpisodeComplete:
		status := "✓"
		if !event.Success {
			status = "✗"
		}
		fmt.Printf("%s [%d/%d]\n", status, event.EpisodeNum, event.TotalEpisodes)
	case evaluator.EventEvaluationCancelled:
		fmt.Println("cancelled")
	}
}

func printSummary(w io.Writer, batch *models.EvaluationBatch) {
	fmt.Fprintln(w, "="+strings.Repeat("=", 50))
	fmt.Fprintln(w, " EVALUATION RESULTS")
	fmt.Fprintln(w, "="+strings.Repeat("=", 50))
	fmt.Fprintln(w)

	s := batch.Summary

	fmt.Fprintf(w, "Task:             %s\n", batch.TaskPrompt)
	fmt.Fprintf(w, "Episodes:         %d\n", s.TotalEpisodes)
	fmt.Fprintf(w, "Succeeded:        %d\n", s.SuccessfulEpisodes)
	fmt.Fprintf(w, "Failed:           %d\n", s.FailedEpisodes)
	fmt.Fprintf(w, "Success Rate:     %.1f%%\n", s.SuccessRate*100)
	fmt.Fprintf(w, "Average Duration: %.2fs\n", s.AverageDuration)
	fmt.Fprintf(w, "Total Time:       %.2fs\n", s.TotalTime)
	if s.Statistics != nil {
		fmt.Fprintf(w, "Std Dev:          %.4fs\n", s.Statistics.StdDevDuration)
		fmt.Fprintf(w, "Success CI95:     [%.3f, %.3f]\n",
			s.Statistics.SuccessCI.Lower, s.Statistics.SuccessCI.Upper)
	}
	if batch.Cancelled {
		fmt.Fprintf(w, "Cancelled:        after %d of %d episode(s)\n",
			len(batch.EpisodeResults), batch.RequestedEpisodes)
	}
	fmt.Fprintln(w)

	// Per-episode breakdown
	fmt.Fprintln(w, "-"+strings.Repeat("-", 50))
	fmt.Fprintln(w, " EPISODE BREAKDOWN")
	fmt.Fprintln(w, "-"+strings.Repeat("-", 50))
	for _, r := range batch.EpisodeResults {
		icon := "✓"
		if !r.Success {
			icon = "✗"
		}
		fmt.Fprintf(w, "  %s Episode %d  %.2fs  [%s, %s]\n", icon, r.EpisodeID, r.Duration, r.Action, r.Mode)
		if r.Error != "" {
			fmt.Fprintf(w, "      • %s: %s\n", r.Detail, r.Error)
		}
	}
	fmt.Fprintln(w)

	if s.TotalEpisodes > 0 {
		fmt.Fprintln(w, report.InterpretSuccessRate(s.SuccessRate))
		fmt.Fprintln(w, report.InterpretFlaky(s.SuccessRate))
		fmt.Fprintln(w)
	}
}
