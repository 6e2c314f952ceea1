// Package wizard collects the fields of a new eval spec interactively
// and renders them as a YAML file ready for `droideval eval`.
package wizard

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/droidworld/droideval/internal/models"
)

// EvalDraft holds all fields collected during the interactive wizard.
type EvalDraft struct {
	Name        string
	Description string
	Task        string
	Episodes    int
	TimeoutSec  int
	Backend     string
}

const evalYAMLTemplate = `name: {{ .Name }}
{{- if .Description }}
description: {{ .Description }}
{{- end }}
task: {{ .Task }}
config:
  episodes: {{ .Episodes }}
  timeout_seconds: {{ .TimeoutSec }}
  backend: {{ .Backend }}
`

// Defaults used when the user leaves an optional field blank.
const (
	defaultEpisodes   = 5
	defaultTimeoutSec = 30
)

// RunEvalWizard collects an EvalDraft from the user. A terminal gets the
// full huh form; piped input falls back to plain line-based prompts so
// the command stays scriptable.
func RunEvalWizard(in io.Reader, out io.Writer) (*EvalDraft, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runForm(in, out)
	}
	return runPlain(in, out)
}

func runForm(in io.Reader, out io.Writer) (*EvalDraft, error) {
	var (
		name        string
		description string
		task        string
		episodesRaw = strconv.Itoa(defaultEpisodes)
		timeoutRaw  = strconv.Itoa(defaultTimeoutSec)
		backend     = models.BackendADB
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Eval name").
				Description("A short name for this evaluation").
				Placeholder("settings-smoke").
				Value(&name).
				Validate(func(s string) error {
					return validateName(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Description").
				Description("Optional one-line description").
				Value(&description),
			huh.NewInput().
				Title("Task").
				Description("The task to run, e.g. \"open app settings\"").
				Placeholder("open app settings").
				Value(&task).
				Validate(func(s string) error {
					return validateTask(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Episodes").
				Description("How many times to run the task").
				Value(&episodesRaw).
				Validate(func(s string) error {
					_, err := parsePositiveInt(s, "episodes", defaultEpisodes)
					return err
				}),
			huh.NewInput().
				Title("Timeout (seconds)").
				Description("Per-episode timeout").
				Value(&timeoutRaw).
				Validate(func(s string) error {
					_, err := parsePositiveInt(s, "timeout", defaultTimeoutSec)
					return err
				}),
			huh.NewSelect[string]().
				Title("Backend").
				Options(
					huh.NewOption("adb (real device)", models.BackendADB),
					huh.NewOption("simulated", models.BackendSimulated),
				).
				Value(&backend),
		),
	).
		WithInput(in).
		WithOutput(out)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	episodes, _ := parsePositiveInt(episodesRaw, "episodes", defaultEpisodes)
	timeout, _ := parsePositiveInt(timeoutRaw, "timeout", defaultTimeoutSec)

	return &EvalDraft{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Task:        strings.TrimSpace(task),
		Episodes:    episodes,
		TimeoutSec:  timeout,
		Backend:     backend,
	}, nil
}

func runPlain(in io.Reader, out io.Writer) (*EvalDraft, error) {
	scanner := bufio.NewScanner(in)
	readLine := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("unexpected end of input")
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	name, err := readLine("Eval name: ")
	if err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	description, err := readLine("Description (optional): ")
	if err != nil {
		return nil, err
	}

	task, err := readLine("Task: ")
	if err != nil {
		return nil, err
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	episodesRaw, err := readLine(fmt.Sprintf("Episodes [%d]: ", defaultEpisodes))
	if err != nil {
		return nil, err
	}
	episodes, err := parsePositiveInt(episodesRaw, "episodes", defaultEpisodes)
	if err != nil {
		return nil, err
	}

	timeoutRaw, err := readLine(fmt.Sprintf("Timeout seconds [%d]: ", defaultTimeoutSec))
	if err != nil {
		return nil, err
	}
	timeout, err := parsePositiveInt(timeoutRaw, "timeout", defaultTimeoutSec)
	if err != nil {
		return nil, err
	}

	backend, err := readLine(fmt.Sprintf("Backend (adb/simulated) [%s]: ", models.BackendADB))
	if err != nil {
		return nil, err
	}
	if backend == "" {
		backend = models.BackendADB
	}
	if backend != models.BackendADB && backend != models.BackendSimulated {
		return nil, fmt.Errorf("unknown backend %q", backend)
	}

	return &EvalDraft{
		Name:        name,
		Description: description,
		Task:        task,
		Episodes:    episodes,
		TimeoutSec:  timeout,
		Backend:     backend,
	}, nil
}

// GenerateEvalYAML renders the eval spec YAML from the given draft.
func GenerateEvalYAML(draft *EvalDraft) (string, error) {
	tmpl, err := template.New("evalyaml").Parse(evalYAMLTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, draft); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("eval name is required")
	}
	return nil
}

func validateTask(task string) error {
	if task == "" {
		return fmt.Errorf("task description is required")
	}
	return nil
}

func parsePositiveInt(raw, field string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", field, raw)
	}
	return n, nil
}
