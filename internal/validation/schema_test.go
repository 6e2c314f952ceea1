package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSpec = `
name: settings-smoke
description: open the settings app repeatedly
task: open app settings
config:
  episodes: 5
  timeout_seconds: 30
  backend: adb
`

func TestValidateEvalBytes_Valid(t *testing.T) {
	errs := ValidateEvalBytes([]byte(validSpec))
	assert.Empty(t, errs)
}

func TestValidateEvalBytes_FullSpec(t *testing.T) {
	spec := `
name: settings-smoke
task: open app settings
config:
  episodes: 10
  timeout_seconds: 60
  parallel: true
  max_workers: 4
  backend: simulated
hooks:
  before_eval:
    - command: adb wait-for-device
      error_on_fail: true
  after_episode:
    - command: adb shell input keyevent KEYCODE_HOME
device:
  serial: emulator-5554
  adb_path: /usr/bin/adb
  command_timeout_seconds: 10
`
	errs := ValidateEvalBytes([]byte(spec))
	assert.Empty(t, errs)
}

func TestValidateEvalBytes_Violations(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantLoc string
	}{
		{
			name:    "missing task",
			spec:    "name: x\nconfig:\n  episodes: 1\n",
			wantLoc: "/",
		},
		{
			name:    "zero episodes",
			spec:    "name: x\ntask: tap ok\nconfig:\n  episodes: 0\n",
			wantLoc: "/config/episodes",
		},
		{
			name:    "unknown backend",
			spec:    "name: x\ntask: tap ok\nconfig:\n  episodes: 1\n  backend: firmware\n",
			wantLoc: "/config/backend",
		},
		{
			name:    "episodes wrong type",
			spec:    "name: x\ntask: tap ok\nconfig:\n  episodes: five\n",
			wantLoc: "/config/episodes",
		},
		{
			name:    "hook without command",
			spec:    "name: x\ntask: tap ok\nconfig:\n  episodes: 1\nhooks:\n  before_eval:\n    - error_on_fail: true\n",
			wantLoc: "/hooks/before_eval/0",
		},
		{
			name:    "unknown top-level key",
			spec:    "name: x\ntask: tap ok\nconfig:\n  episodes: 1\nextra: nope\n",
			wantLoc: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateEvalBytes([]byte(tt.spec))
			require.NotEmpty(t, errs)

			found := false
			for _, e := range errs {
				if strings.HasPrefix(e, tt.wantLoc) {
					found = true
				}
			}
			assert.True(t, found, "no error at %s in %v", tt.wantLoc, errs)
		})
	}
}

func TestValidateEvalBytes_MalformedYAML(t *testing.T) {
	errs := ValidateEvalBytes([]byte("task: [unclosed"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "YAML parse error")
}

func TestValidateEvalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSpec), 0o644))

	errs, err := ValidateEvalFile(path)
	require.NoError(t, err)
	assert.Empty(t, errs)

	_, err = ValidateEvalFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
