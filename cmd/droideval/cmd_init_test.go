package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/droidworld/droideval/internal/models"
)

func TestInitCommand_CreatesSpec(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "my-eval")

	var buf bytes.Buffer
	cmd := newInitCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{target})
	require.NoError(t, cmd.Execute())

	specPath := filepath.Join(target, "eval.yaml")
	assert.FileExists(t, specPath)

	// Generated spec must load and validate
	spec, err := models.LoadEvalSpec(specPath)
	require.NoError(t, err)
	assert.Equal(t, "my-task-eval", spec.Name)
	assert.Equal(t, "open settings app", spec.Task)
	assert.Equal(t, 5, spec.Config.Episodes)
	assert.Equal(t, models.BackendADB, spec.Config.Backend)

	output := buf.String()
	assert.Contains(t, output, "Created")
	assert.Contains(t, output, "eval.yaml")
}

func TestInitCommand_Interactive(t *testing.T) {
	dir := t.TempDir()

	// name, description, task, episodes, timeout, backend
	input := "camera-eval\nOpens the camera.\nopen camera app\n3\n10\nsimulated\n"

	var buf bytes.Buffer
	cmd := newInitCommand()
	cmd.SetOut(&buf)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs([]string{dir, "--interactive"})
	require.NoError(t, cmd.Execute())

	spec, err := models.LoadEvalSpec(filepath.Join(dir, "eval.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "camera-eval", spec.Name)
	assert.Equal(t, "open camera app", spec.Task)
	assert.Equal(t, 3, spec.Config.Episodes)
	assert.Equal(t, 10, spec.Config.TimeoutSec)
	assert.Equal(t, models.BackendSimulated, spec.Config.Backend)
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	cmd1 := newInitCommand()
	cmd1.SetOut(&bytes.Buffer{})
	cmd1.SetArgs([]string{dir})
	require.NoError(t, cmd1.Execute())

	cmd2 := newInitCommand()
	cmd2.SetOut(&bytes.Buffer{})
	cmd2.SetErr(&bytes.Buffer{})
	cmd2.SetArgs([]string{dir})
	err := cmd2.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
