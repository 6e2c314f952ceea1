package device

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SimulatedDriver is the deterministic stand-in used when no real device
// is reachable. Every action succeeds with a fixed synthetic latency so
// aggregation, reporting and CI smoke checks stay exercisable without
// hardware.
type SimulatedDriver struct {
	// Latency is the synthetic per-action delay. Zero means no delay,
	// which keeps tests fast.
	Latency time.Duration

	mu        sync.Mutex
	connected bool
	performed int
}

// NewSimulatedDriver creates a simulated driver with the given synthetic
// per-action latency.
func NewSimulatedDriver(latency time.Duration) *SimulatedDriver {
	return &SimulatedDriver{Latency: latency}
}

// Connect always succeeds.
func (d *SimulatedDriver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = true
	return nil
}

// Perform returns a deterministic successful outcome for every action.
func (d *SimulatedDriver) Perform(ctx context.Context, action Action) (*Outcome, error) {
	if d.Latency > 0 {
		select {
		case <-time.After(d.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	d.performed++
	d.mu.Unlock()

	switch action.Kind {
	case ActionOpenApp:
		return &Outcome{Detail: fmt.Sprintf("Simulated: opened %s app", action.App)}, nil
	case ActionTap:
		return &Outcome{Detail: fmt.Sprintf("Simulated: tapped %s", action.Element)}, nil
	case ActionInputText:
		return &Outcome{Detail: fmt.Sprintf("Simulated: input text %q", action.Text)}, nil
	case ActionGeneric:
		return &Outcome{Detail: fmt.Sprintf("Simulated: executed %s", action.Description)}, nil
	default:
		return nil, fmt.Errorf("unknown action kind: %s", action.Kind)
	}
}

// Model reports a fixed simulated model name.
func (d *SimulatedDriver) Model(ctx context.Context) (string, error) {
	return "Simulated Device", nil
}

// Close resets the driver.
func (d *SimulatedDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
	return nil
}

// Performed reports how many actions this driver has executed. Used by
// tests to assert command serialization and by the health check output.
func (d *SimulatedDriver) Performed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.performed
}
