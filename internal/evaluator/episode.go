package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/droidworld/droideval/internal/models"
)

// runEpisode executes one trial of the task and converts every possible
// fault, including a panic in the executor, into a failed EpisodeResult.
// Nothing crosses this boundary except a well-formed result.
func (e *Evaluator) runEpisode(ctx context.Context, task string, id, total int) (result models.EpisodeResult) {
	e.notifyProgress(ProgressEvent{
		EventType:     EventEpisodeStart,
		Task:          task,
		EpisodeNum:    id,
		TotalEpisodes: total,
	})
	e.recordEvent("episode_start", map[string]any{"episode": id})

	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = models.EpisodeResult{
				EpisodeID:  id,
				TaskPrompt: task,
				Success:    false,
				Duration:   time.Since(startTime).Seconds(),
				Action:     "execute",
				Detail:     "internal fault",
				Mode:       e.executor.Mode(),
				Error:      fmt.Sprintf("panic: %v", r),
			}
		}

		e.notifyProgress(ProgressEvent{
			EventType:     EventEpisodeComplete,
			Task:          task,
			EpisodeNum:    id,
			TotalEpisodes: total,
			Success:       result.Success,
			DurationMs:    int64(result.Duration * 1000),
		})
		e.recordEvent("episode_complete", map[string]any{
			"episode":  id,
			"success":  result.Success,
			"duration": result.Duration,
			"mode":     string(result.Mode),
		})
	}()

	epCtx := ctx
	timeoutSec := e.specConfig().TimeoutSec
	if timeoutSec > 0 {
		var cancel context.CancelFunc
		epCtx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
		defer cancel()
	}

	outcome, err := e.executor.Execute(epCtx, task)
	duration := time.Since(startTime).Seconds()

	if epCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return models.EpisodeResult{
			EpisodeID:  id,
			TaskPrompt: task,
			Success:    false,
			Duration:   duration,
			Action:     "execute",
			Detail:     "timeout",
			Mode:       e.executor.Mode(),
			Error:      fmt.Sprintf("episode exceeded %ds timeout", timeoutSec),
		}
	}

	if err != nil {
		return models.EpisodeResult{
			EpisodeID:  id,
			TaskPrompt: task,
			Success:    false,
			Duration:   duration,
			Action:     "execute",
			Detail:     "execution error",
			Mode:       e.executor.Mode(),
			Error:      err.Error(),
		}
	}

	return models.EpisodeResult{
		EpisodeID:  id,
		TaskPrompt: task,
		Success:    outcome.Success,
		Duration:   duration,
		Action:     outcome.Action,
		Detail:     outcome.Detail,
		Mode:       outcome.Mode,
		Error:      outcome.Error,
	}
}
