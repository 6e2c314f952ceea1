// Package evaluator orchestrates multi-episode evaluation runs: it drives
// the task executor once per episode, aggregates the results into an
// EvaluationBatch, and reports progress and observability events along
// the way.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/droidworld/droideval/internal/config"
	"github.com/droidworld/droideval/internal/execution"
	"github.com/droidworld/droideval/internal/hooks"
	"github.com/droidworld/droideval/internal/models"
	"github.com/droidworld/droideval/internal/observability"
)

// UsageError marks invalid caller input: a non-positive episode count or
// an empty task description. It never represents a failed episode.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid usage: %s", e.Reason)
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventEvaluationStart     EventType = "evaluation_start"
	EventEvaluationComplete  EventType = "evaluation_complete"
	EventEvaluationCancelled EventType = "evaluation_cancelled"
	EventEpisodeStart        EventType = "episode_start"
	EventEpisodeComplete     EventType = "episode_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType     EventType
	Task          string
	EpisodeNum    int
	TotalEpisodes int
	Success       bool
	DurationMs    int64
	Details       map[string]any
}

// Evaluator runs a task for a requested number of episodes.
type Evaluator struct {
	cfg      *config.EvalConfig
	executor *execution.Executor
	recorder observability.Recorder

	hookRunner *hooks.Runner

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRecorder sets the observability recorder. The default discards
// every event.
func WithRecorder(r observability.Recorder) Option {
	return func(e *Evaluator) {
		e.recorder = r
	}
}

// New creates an evaluator over the given executor.
func New(cfg *config.EvalConfig, executor *execution.Executor, opts ...Option) *Evaluator {
	e := &Evaluator{
		cfg:       cfg,
		executor:  executor,
		recorder:  observability.NopRecorder{},
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// OnProgress registers a progress listener
func (e *Evaluator) OnProgress(listener ProgressListener) {
	e.progressMu.Lock()
	defer e.progressMu.Unlock()
	e.listeners = append(e.listeners, listener)
}

func (e *Evaluator) notifyProgress(event ProgressEvent) {
	e.progressMu.Lock()
	listeners := make([]ProgressListener, len(e.listeners))
	copy(listeners, e.listeners)
	e.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// recordEvent forwards to the observability recorder. Recording is
// best-effort: a recorder panic must not disturb the evaluation.
func (e *Evaluator) recordEvent(name string, attrs map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("observability recorder fault", "event", name, "panic", r)
		}
	}()
	e.recorder.RecordEvent(name, attrs)
}

// specConfig returns the effective run configuration. A nil spec falls
// back to zero values, which tests rely on.
func (e *Evaluator) specConfig() models.Config {
	if spec := e.cfg.Spec(); spec != nil {
		return spec.Config
	}
	return models.Config{}
}

func (e *Evaluator) specHooks() hooks.HooksConfig {
	if spec := e.cfg.Spec(); spec != nil {
		return spec.Hooks
	}
	return hooks.HooksConfig{}
}

// Evaluate runs task for the requested number of episodes and returns the
// aggregated batch. episodes < 1 and empty tasks are UsageErrors; a batch
// is returned for every other condition, partial and tagged cancelled
// when the context is cancelled mid-run.
func (e *Evaluator) Evaluate(ctx context.Context, task string, episodes int) (*models.EvaluationBatch, error) {
	if episodes < 1 {
		return nil, &UsageError{Reason: fmt.Sprintf("episodes must be at least 1, got %d", episodes)}
	}
	if strings.TrimSpace(task) == "" {
		return nil, &UsageError{Reason: "task description is empty"}
	}

	startTime := time.Now()

	if err := e.executor.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize executor: %w", err)
	}
	defer func() {
		if err := e.executor.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("failed to shut down executor", "error", err)
		}
	}()

	// Set up hooks runner
	hooksCfg := e.specHooks()
	e.hookRunner = &hooks.Runner{Verbose: e.cfg.Verbose()}

	// Run after_eval hooks on exit (even on error)
	defer func() {
		if len(hooksCfg.AfterEval) > 0 {
			if err := e.hookRunner.Execute(context.WithoutCancel(ctx), "after_eval", hooksCfg.AfterEval); err != nil {
				slog.Warn("after_eval hook error", "error", err)
			}
		}
	}()

	// Run before_eval hooks
	if len(hooksCfg.BeforeEval) > 0 {
		if err := e.hookRunner.Execute(ctx, "before_eval", hooksCfg.BeforeEval); err != nil {
			return nil, fmt.Errorf("before_eval hook failed: %w", err)
		}
	}

	e.notifyProgress(ProgressEvent{
		EventType:     EventEvaluationStart,
		Task:          task,
		TotalEpisodes: episodes,
	})
	e.recordEvent("evaluation_start", map[string]any{
		"task":     task,
		"episodes": episodes,
		"mode":     string(e.executor.Mode()),
	})

	var results []models.EpisodeResult
	if e.specConfig().Concurrent {
		results = e.runConcurrent(ctx, task, episodes)
	} else {
		results = e.runSequential(ctx, task, episodes)
	}

	cancelled := ctx.Err() != nil
	models.SortEpisodes(results)
	if cancelled {
		results = contiguousPrefix(results)
	}

	batch := &models.EvaluationBatch{
		TaskPrompt:        task,
		RequestedEpisodes: episodes,
		EpisodeResults:    results,
		Summary:           models.ComputeSummary(results),
		Cancelled:         cancelled,
	}

	eventType := EventEvaluationComplete
	eventName := "evaluation_complete"
	if cancelled {
		eventType = EventEvaluationCancelled
		eventName = "evaluation_cancelled"
	}
	e.notifyProgress(ProgressEvent{
		EventType:     eventType,
		Task:          task,
		TotalEpisodes: episodes,
		DurationMs:    time.Since(startTime).Milliseconds(),
	})
	e.recordEvent(eventName, map[string]any{
		"task":         task,
		"episodes":     len(results),
		"success_rate": batch.Summary.SuccessRate,
		"total_time":   batch.Summary.TotalTime,
	})

	return batch, nil
}

func (e *Evaluator) runSequential(ctx context.Context, task string, episodes int) []models.EpisodeResult {
	results := make([]models.EpisodeResult, 0, episodes)

	for id := 1; id <= episodes; id++ {
		if ctx.Err() != nil {
			break
		}
		results = append(results, e.runEpisodeWithHooks(ctx, task, id, episodes))
	}

	return results
}

// runEpisodeWithHooks wraps one episode in the before/after episode hooks.
// A failing before_episode hook fails the episode, not the whole batch.
func (e *Evaluator) runEpisodeWithHooks(ctx context.Context, task string, id, total int) models.EpisodeResult {
	hooksCfg := e.specHooks()

	if len(hooksCfg.BeforeEpisode) > 0 {
		if err := e.hookRunner.Execute(ctx, "before_episode", hooksCfg.BeforeEpisode); err != nil {
			return models.EpisodeResult{
				EpisodeID:  id,
				TaskPrompt: task,
				Success:    false,
				Action:     "hook",
				Detail:     "before_episode hook failed",
				Mode:       e.executor.Mode(),
				Error:      err.Error(),
			}
		}
	}

	result := e.runEpisode(ctx, task, id, total)

	if len(hooksCfg.AfterEpisode) > 0 {
		if err := e.hookRunner.Execute(ctx, "after_episode", hooksCfg.AfterEpisode); err != nil {
			slog.Warn("after_episode hook error", "episode", id, "error", err)
		}
	}

	return result
}

func (e *Evaluator) runConcurrent(ctx context.Context, task string, episodes int) []models.EpisodeResult {
	workers := e.specConfig().Workers
	if workers <= 0 {
		workers = 4
	}

	sem := semaphore.NewWeighted(int64(workers))
	resultChan := make(chan models.EpisodeResult, episodes)

	var wg sync.WaitGroup
	for id := 1; id <= episodes; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			// Acquire fails only when the context is cancelled; the
			// episode never started, so it contributes no result.
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			resultChan <- e.runEpisodeWithHooks(ctx, task, id, episodes)
		}(id)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]models.EpisodeResult, 0, episodes)
	for res := range resultChan {
		results = append(results, res)
	}

	return results
}

// contiguousPrefix trims a sorted result set down to the episodes 1..k
// with no gaps. Only a cancelled concurrent run can leave holes, and a
// partial batch keeps the id ordering contract regardless.
func contiguousPrefix(results []models.EpisodeResult) []models.EpisodeResult {
	for i, r := range results {
		if r.EpisodeID != i+1 {
			return results[:i]
		}
	}
	return results
}
