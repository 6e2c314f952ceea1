package models

import (
	"math"
	"sort"

	"github.com/droidworld/droideval/internal/statistics"
)

// Mode identifies which execution backend produced an outcome.
type Mode string

const (
	// ModeDevice means the action ran against a real device connection.
	ModeDevice Mode = "device"
	// ModeSimulated means the deterministic simulated backend was used,
	// either by configuration or because no device was reachable.
	ModeSimulated Mode = "simulated"
)

// EpisodeResult is the record of one trial execution of a task.
type EpisodeResult struct {
	EpisodeID  int     `json:"episode_id"`
	TaskPrompt string  `json:"task_prompt"`
	Success    bool    `json:"success"`
	Duration   float64 `json:"duration"`
	Action     string  `json:"action"`
	Detail     string  `json:"result"`
	Mode       Mode    `json:"mode"`
	Error      string  `json:"error,omitempty"`
}

// Summary holds the aggregate statistics derived from a set of episode
// results. It is computed, never mutated independently.
type Summary struct {
	TotalEpisodes      int     `json:"total_episodes"`
	SuccessfulEpisodes int     `json:"successful_episodes"`
	FailedEpisodes     int     `json:"failed_episodes"`
	SuccessRate        float64 `json:"success_rate"`
	AverageDuration    float64 `json:"average_duration"`
	TotalTime          float64 `json:"total_time"`

	// Statistics is populated when there are at least 2 episodes.
	Statistics *BatchStatistics `json:"statistics,omitempty"`
}

// BatchStatistics carries derived statistical data for multi-episode batches.
type BatchStatistics struct {
	StdDevDuration float64                       `json:"std_dev_duration"`
	SuccessCI      statistics.ConfidenceInterval `json:"success_ci"`
}

// EvaluationBatch is the complete result of one evaluation call.
type EvaluationBatch struct {
	TaskPrompt        string          `json:"task_prompt"`
	RequestedEpisodes int             `json:"episodes"`
	EpisodeResults    []EpisodeResult `json:"episode_results"`
	Summary           Summary         `json:"summary"`
	Cancelled         bool            `json:"cancelled,omitempty"`
}

// SortEpisodes orders results by ascending episode id. Episode ids are
// assigned 1-based in execution order, so a sorted batch has no gaps.
func SortEpisodes(results []EpisodeResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].EpisodeID < results[j].EpisodeID
	})
}

// ComputeSummary derives the aggregate statistics for a set of episode
// results. TotalTime is always the sum of the individual episode durations,
// not the wall-clock time of the batch.
func ComputeSummary(results []EpisodeResult) Summary {
	total := len(results)
	if total == 0 {
		return Summary{}
	}

	successful := 0
	totalTime := 0.0
	durations := make([]float64, 0, total)
	successes := make([]float64, 0, total)

	for _, r := range results {
		if r.Success {
			successful++
			successes = append(successes, 1)
		} else {
			successes = append(successes, 0)
		}
		totalTime += r.Duration
		durations = append(durations, r.Duration)
	}

	s := Summary{
		TotalEpisodes:      total,
		SuccessfulEpisodes: successful,
		FailedEpisodes:     total - successful,
		SuccessRate:        float64(successful) / float64(total),
		AverageDuration:    totalTime / float64(total),
		TotalTime:          totalTime,
	}

	if total >= 2 {
		s.Statistics = &BatchStatistics{
			StdDevDuration: ComputeStdDev(durations),
			SuccessCI:      statistics.BootstrapCIWithSeed(successes, 0.95, int64(total)),
		}
	}

	return s
}

// ComputeStdDev returns the population standard deviation for a slice of float64 values.
func ComputeStdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(n))
}
