package device

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by Connect when no device is configured or
// reachable. Callers treat it as the trigger for the simulated fallback,
// not as a failure.
var ErrUnavailable = errors.New("no device available")

// ActionKind identifies the category of a device action.
type ActionKind string

const (
	ActionOpenApp   ActionKind = "open_app"
	ActionTap       ActionKind = "tap"
	ActionInputText ActionKind = "input_text"
	ActionGeneric   ActionKind = "generic"
)

// Action is one device interaction request.
type Action struct {
	Kind ActionKind

	// App is the app name for open_app actions.
	App string
	// Element is the target label for tap actions.
	Element string
	// Text is the payload for input_text actions.
	Text string
	// Description carries the raw task text for generic actions.
	Description string
}

// Label returns the short action label recorded in episode results.
func (a Action) Label() string {
	return string(a.Kind)
}

// Outcome is the result of one performed action.
type Outcome struct {
	// Detail is a human-readable description of what happened.
	Detail string
	// Raw holds any raw driver output (e.g. adb stdout), may be empty.
	Raw string
}

// Driver performs actions against a device. Implementations must be safe
// for concurrent use; a driver backed by a single shared connection is
// responsible for serializing its own commands.
type Driver interface {
	// Connect establishes the device connection. Returns ErrUnavailable
	// when no device is configured or reachable.
	Connect(ctx context.Context) error

	// Perform executes one action and reports its outcome. An error means
	// the device responded but the action failed.
	Perform(ctx context.Context, action Action) (*Outcome, error)

	// Model reports the connected device model, for health checks.
	Model(ctx context.Context) (string, error)

	// Close releases the connection.
	Close() error
}
