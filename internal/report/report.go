// Package report turns an EvaluationBatch into its two output artifacts:
// the canonical machine-readable StructuredRecord and a deterministic
// human-readable markdown summary. Writing them anywhere is the caller's
// job. JUnit and HTML views are derived forms for CI consumption.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/droidworld/droideval/internal/models"
)

// StructuredRecord is the canonical machine-readable artifact. It wraps
// the batch in an "evaluation" envelope and round-trips through
// EncodeJSON/Parse without loss.
type StructuredRecord struct {
	Evaluation models.EvaluationBatch `json:"evaluation"`
}

// Render produces the structured record and the markdown summary for a
// batch. Given the same batch, both outputs are byte-identical across
// calls: no timestamps, no map iteration, no environment reads.
func Render(batch *models.EvaluationBatch) (*StructuredRecord, string) {
	record := &StructuredRecord{Evaluation: *batch}
	return record, renderMarkdown(batch)
}

// EncodeJSON serializes a structured record as indented JSON with a
// trailing newline.
func EncodeJSON(record *StructuredRecord) ([]byte, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding structured record: %w", err)
	}
	return append(data, '\n'), nil
}

// Parse reconstructs a structured record from its JSON form.
func Parse(data []byte) (*StructuredRecord, error) {
	var record StructuredRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing structured record: %w", err)
	}
	return &record, nil
}

func renderMarkdown(batch *models.EvaluationBatch) string {
	var b strings.Builder
	summary := batch.Summary

	b.WriteString("# Device Task Evaluation Report\n\n")
	b.WriteString(fmt.Sprintf("**Task**: %s\n", batch.TaskPrompt))
	b.WriteString(fmt.Sprintf("**Episodes**: %d\n", summary.TotalEpisodes))
	b.WriteString(fmt.Sprintf("**Success Rate**: %.1f%%\n", summary.SuccessRate*100))
	b.WriteString(fmt.Sprintf("**Average Duration**: %.2fs\n", summary.AverageDuration))
	b.WriteString(fmt.Sprintf("**Total Time**: %.2fs\n", summary.TotalTime))
	if batch.Cancelled {
		b.WriteString("\n**Note**: evaluation was cancelled; results are partial.\n")
	}

	b.WriteString("\n## Episode Results\n")
	for _, res := range batch.EpisodeResults {
		icon := "✓"
		if !res.Success {
			icon = "✗"
		}
		b.WriteString(fmt.Sprintf("- Episode %d: %s %.2fs (%s, %s)\n",
			res.EpisodeID, icon, res.Duration, res.Action, res.Mode))
		if res.Error != "" {
			b.WriteString(fmt.Sprintf("  - error: %s\n", res.Error))
		}
	}

	b.WriteString("\n## Summary\n")
	b.WriteString(fmt.Sprintf("- **Successful**: %d\n", summary.SuccessfulEpisodes))
	b.WriteString(fmt.Sprintf("- **Failed**: %d\n", summary.FailedEpisodes))
	b.WriteString(fmt.Sprintf("- **Success Rate**: %.1f%%\n", summary.SuccessRate*100))

	if stats := summary.Statistics; stats != nil {
		b.WriteString("\n## Statistics\n")
		b.WriteString(fmt.Sprintf("- **Duration StdDev**: %.3fs\n", stats.StdDevDuration))
		b.WriteString(fmt.Sprintf("- **Success 95%% CI**: [%.3f, %.3f]\n",
			stats.SuccessCI.Lower, stats.SuccessCI.Upper))
	}

	return b.String()
}
