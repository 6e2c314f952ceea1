package report

import (
	"strings"
	"testing"

	"github.com/droidworld/droideval/internal/models"
)

func TestInterpretSuccessRate(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "All episodes passed (100%)"},
		{0.85, "Most episodes passed (85%)"},
		{0.5, "About half the episodes passed (50%)"},
		{0.2, "Few episodes passed (20%)"},
		{0.0, "Few episodes passed (0%)"},
	}

	for _, tt := range tests {
		if got := InterpretSuccessRate(tt.rate); got != tt.want {
			t.Errorf("InterpretSuccessRate(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestInterpretFlaky(t *testing.T) {
	if got := InterpretFlaky(1.0); got != "Results are consistent across episodes." {
		t.Errorf("InterpretFlaky(1.0) = %q", got)
	}
	if got := InterpretFlaky(0.0); got != "Results are consistent across episodes." {
		t.Errorf("InterpretFlaky(0.0) = %q", got)
	}
	if got := InterpretFlaky(0.5); !strings.Contains(got, "flaky") {
		t.Errorf("InterpretFlaky(0.5) = %q, want flaky explanation", got)
	}
}

func TestFormatSummaryReport(t *testing.T) {
	out := FormatSummaryReport(sampleBatch())

	for _, want := range []string{
		"=== Interpretation ===",
		"About half the episodes passed (67%)",
		"2 passed, 1 failed out of 3 total",
		"flaky",
		"stddev",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatSummaryReport missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatSummaryReportCancelled(t *testing.T) {
	batch := sampleBatch()
	batch.Cancelled = true
	batch.RequestedEpisodes = 5

	out := FormatSummaryReport(batch)
	if !strings.Contains(out, "cancelled after 3 of 5 episodes") {
		t.Errorf("missing cancellation note in:\n%s", out)
	}
}

func TestFormatSummaryReportEmptyBatch(t *testing.T) {
	batch := &models.EvaluationBatch{
		TaskPrompt:        "tap ok",
		RequestedEpisodes: 5,
		Summary:           models.ComputeSummary(nil),
	}

	out := FormatSummaryReport(batch)
	if !strings.Contains(out, "Few episodes passed (0%)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
