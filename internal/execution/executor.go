package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/droidworld/droideval/internal/device"
	"github.com/droidworld/droideval/internal/models"
)

// ErrEnvironmentUnavailable means no execution backend could be
// initialized at all. It aborts the whole evaluation.
var ErrEnvironmentUnavailable = errors.New("execution environment unavailable")

// TrialOutcome is the raw result of one task execution, before episode
// bookkeeping is added by the evaluator.
type TrialOutcome struct {
	Success bool
	Action  string
	Detail  string
	Error   string
	Mode    models.Mode
}

// Executor turns task descriptions into device actions and runs them
// against the selected backend.
//
// The backend is decided once during Initialize: the configured driver is
// probed, and if it reports device.ErrUnavailable the executor demotes
// itself to the deterministic simulated driver so the rest of the
// pipeline stays exercisable without hardware. Every outcome is tagged
// with the mode that produced it.
type Executor struct {
	mu     sync.Mutex
	driver device.Driver
	mode   models.Mode

	// fallback substitutes for the real driver when the device connection
	// is lost mid-evaluation.
	fallback *device.SimulatedDriver
}

// NewDeviceExecutor creates an executor backed by a real device driver.
func NewDeviceExecutor(driver device.Driver) *Executor {
	return &Executor{
		driver:   driver,
		mode:     models.ModeDevice,
		fallback: device.NewSimulatedDriver(0),
	}
}

// NewSimulatedExecutor creates an executor that only ever uses the
// simulated driver. latency is the synthetic per-action delay.
func NewSimulatedExecutor(latency time.Duration) *Executor {
	sim := device.NewSimulatedDriver(latency)
	return &Executor{
		driver:   sim,
		mode:     models.ModeSimulated,
		fallback: sim,
	}
}

// Mode reports which backend the executor is currently using.
func (e *Executor) Mode() models.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Initialize connects the backend. A device driver that reports
// ErrUnavailable demotes the executor to simulated mode; any other
// connection failure is fatal for the evaluation.
func (e *Executor) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.driver.Connect(ctx)
	if err == nil {
		return nil
	}

	if errors.Is(err, device.ErrUnavailable) && e.mode == models.ModeDevice {
		slog.Warn("no device reachable, falling back to simulated backend", "error", err)
		e.driver = e.fallback
		e.mode = models.ModeSimulated
		return e.driver.Connect(ctx)
	}

	return fmt.Errorf("%w: %v", ErrEnvironmentUnavailable, err)
}

// Execute runs one task. Empty tasks are a usage error returned to the
// caller; every other condition is absorbed into the TrialOutcome.
func (e *Executor) Execute(ctx context.Context, task string) (*TrialOutcome, error) {
	action, err := ParseTask(task)
	if err != nil {
		if errors.Is(err, ErrEmptyTask) {
			return nil, err
		}
		// Malformed but non-empty tasks become failed outcomes.
		return &TrialOutcome{
			Success: false,
			Action:  "parse",
			Detail:  "task could not be parsed",
			Error:   err.Error(),
			Mode:    e.Mode(),
		}, nil
	}

	e.mu.Lock()
	driver, mode := e.driver, e.mode
	e.mu.Unlock()

	outcome, err := driver.Perform(ctx, action)
	if err != nil {
		if errors.Is(err, device.ErrUnavailable) {
			return e.executeSimulated(ctx, action)
		}
		return &TrialOutcome{
			Success: false,
			Action:  action.Label(),
			Detail:  "device action failed",
			Error:   err.Error(),
			Mode:    mode,
		}, nil
	}

	return &TrialOutcome{
		Success: true,
		Action:  action.Label(),
		Detail:  outcome.Detail,
		Mode:    mode,
	}, nil
}

// executeSimulated handles a device connection lost after Initialize:
// the action is replayed on the simulated driver and the executor stays
// demoted for subsequent episodes.
func (e *Executor) executeSimulated(ctx context.Context, action device.Action) (*TrialOutcome, error) {
	e.mu.Lock()
	if e.mode == models.ModeDevice {
		slog.Warn("device became unreachable, falling back to simulated backend")
		e.driver = e.fallback
		e.mode = models.ModeSimulated
	}
	e.mu.Unlock()

	outcome, err := e.fallback.Perform(ctx, action)
	if err != nil {
		return &TrialOutcome{
			Success: false,
			Action:  action.Label(),
			Detail:  "simulated action failed",
			Error:   err.Error(),
			Mode:    models.ModeSimulated,
		}, nil
	}

	return &TrialOutcome{
		Success: true,
		Action:  action.Label(),
		Detail:  outcome.Detail,
		Mode:    models.ModeSimulated,
	}, nil
}

// Shutdown releases the backend.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.driver.Close()
}
