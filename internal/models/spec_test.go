package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEvalSpec_Valid(t *testing.T) {
	path := writeSpec(t, `
name: settings-smoke
description: Open the settings app repeatedly
task: open app settings
config:
  episodes: 5
  timeout_seconds: 30
  parallel: true
  max_workers: 2
  backend: simulated
device:
  serial: emulator-5554
`)

	spec, err := LoadEvalSpec(path)
	require.NoError(t, err)

	assert.Equal(t, "settings-smoke", spec.Name)
	assert.Equal(t, "open app settings", spec.Task)
	assert.Equal(t, 5, spec.Config.Episodes)
	assert.Equal(t, 30, spec.Config.TimeoutSec)
	assert.True(t, spec.Config.Concurrent)
	assert.Equal(t, 2, spec.Config.Workers)
	assert.Equal(t, BackendSimulated, spec.Config.Backend)
	assert.Equal(t, "emulator-5554", spec.Device["serial"])
}

func TestLoadEvalSpec_DefaultsBackendToADB(t *testing.T) {
	path := writeSpec(t, `
name: default-backend
task: open app settings
config:
  episodes: 1
  timeout_seconds: 10
`)

	spec, err := LoadEvalSpec(path)
	require.NoError(t, err)
	assert.Equal(t, BackendADB, spec.Config.Backend)
}

func TestEvalSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:    "zero episodes",
			config:  Config{Episodes: 0, TimeoutSec: 10},
			wantErr: "episodes must be at least 1",
		},
		{
			name:    "negative episodes",
			config:  Config{Episodes: -3, TimeoutSec: 10},
			wantErr: "episodes must be at least 1",
		},
		{
			name:    "zero timeout",
			config:  Config{Episodes: 1, TimeoutSec: 0},
			wantErr: "timeout_seconds must be at least 1",
		},
		{
			name:    "unknown backend",
			config:  Config{Episodes: 1, TimeoutSec: 10, Backend: "cloud"},
			wantErr: "unknown backend",
		},
		{
			name:    "negative workers",
			config:  Config{Episodes: 1, TimeoutSec: 10, Backend: BackendADB, Workers: -1},
			wantErr: "max_workers must not be negative",
		},
		{
			name:   "valid",
			config: Config{Episodes: 3, TimeoutSec: 10, Backend: BackendSimulated},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := &EvalSpec{Task: "open app settings", Config: tt.config}
			err := spec.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadEvalSpec_MalformedYAML(t *testing.T) {
	path := writeSpec(t, "task: [unterminated")
	_, err := LoadEvalSpec(path)
	assert.Error(t, err)
}
