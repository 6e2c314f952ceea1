package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/droidworld/droideval/internal/report"
)

func writeResults(t *testing.T) string {
	t.Helper()
	record, _ := report.Render(summaryBatch())
	data, err := report.EncodeJSON(record)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReportCommand_Markdown(t *testing.T) {
	path := writeResults(t)

	var buf bytes.Buffer
	cmd := newReportCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "# Device Task Evaluation Report")
	assert.Contains(t, out, "open settings app")
	assert.Contains(t, out, "66.7%")
}

func TestReportCommand_JSONRoundTrip(t *testing.T) {
	path := writeResults(t)
	outPath := filepath.Join(t.TempDir(), "copy.json")

	cmd := newReportCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path, "--format", "json", "-o", outPath})
	require.NoError(t, cmd.Execute())

	original, err := os.ReadFile(path)
	require.NoError(t, err)
	copied, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, original, copied, "re-rendered JSON should be byte-identical")
}

func TestReportCommand_JUnit(t *testing.T) {
	path := writeResults(t)
	outPath := filepath.Join(t.TempDir(), "junit.xml")

	cmd := newReportCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path, "--format", "junit", "-o", outPath})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<testsuites")
	assert.Contains(t, string(data), "episode-2")
}

func TestReportCommand_JUnitRequiresOutput(t *testing.T) {
	path := writeResults(t)

	cmd := newReportCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path, "--format", "junit"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires --output")
}

func TestReportCommand_Summary(t *testing.T) {
	path := writeResults(t)

	var buf bytes.Buffer
	cmd := newReportCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{path, "--format", "summary"})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "EVALUATION RESULTS")
	assert.Contains(t, out, "=== Interpretation ===")
}

func TestReportCommand_HTML(t *testing.T) {
	path := writeResults(t)

	var buf bytes.Buffer
	cmd := newReportCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{path, "--format", "html"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "<h1")
}

func TestReportCommand_MalformedResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	cmd := newReportCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	require.Error(t, cmd.Execute())
}
