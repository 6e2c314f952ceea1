package config

import (
	"testing"

	"github.com/droidworld/droideval/internal/models"
)

func TestNewEvalConfig_DefaultValues(t *testing.T) {
	spec := &models.EvalSpec{SpecIdentity: models.SpecIdentity{Name: "test-spec"}}

	cfg := NewEvalConfig(spec)

	if cfg.Spec() != spec {
		t.Fatalf("Spec() = %p, want %p", cfg.Spec(), spec)
	}
	if cfg.SpecDir() != "" {
		t.Fatalf("SpecDir() = %q, want empty", cfg.SpecDir())
	}
	if cfg.OutputDir() != "" {
		t.Fatalf("OutputDir() = %q, want empty", cfg.OutputDir())
	}
	if cfg.JUnitPath() != "" {
		t.Fatalf("JUnitPath() = %q, want empty", cfg.JUnitPath())
	}
	if cfg.HTMLPath() != "" {
		t.Fatalf("HTMLPath() = %q, want empty", cfg.HTMLPath())
	}
	if cfg.Verbose() {
		t.Fatalf("Verbose() = true, want false")
	}
}

func TestNewEvalConfig_AppliesFunctionalOptions(t *testing.T) {
	spec := &models.EvalSpec{}

	cfg := NewEvalConfig(
		spec,
		WithSpecDir("/tmp/specs"),
		WithOutputDir("results"),
		WithJUnitPath("junit.xml"),
		WithHTMLPath("report.html"),
		WithVerbose(true),
	)

	if cfg.SpecDir() != "/tmp/specs" {
		t.Fatalf("SpecDir() = %q, want %q", cfg.SpecDir(), "/tmp/specs")
	}
	if cfg.OutputDir() != "results" {
		t.Fatalf("OutputDir() = %q, want %q", cfg.OutputDir(), "results")
	}
	if cfg.JUnitPath() != "junit.xml" {
		t.Fatalf("JUnitPath() = %q, want %q", cfg.JUnitPath(), "junit.xml")
	}
	if cfg.HTMLPath() != "report.html" {
		t.Fatalf("HTMLPath() = %q, want %q", cfg.HTMLPath(), "report.html")
	}
	if !cfg.Verbose() {
		t.Fatalf("Verbose() = false, want true")
	}
}

func TestOptionOrder_LastOptionWins(t *testing.T) {
	cfg := NewEvalConfig(
		&models.EvalSpec{},
		WithVerbose(true),
		WithVerbose(false),
		WithOutputDir("first"),
		WithOutputDir("second"),
	)

	if cfg.Verbose() {
		t.Fatalf("Verbose() = true, want false")
	}
	if cfg.OutputDir() != "second" {
		t.Fatalf("OutputDir() = %q, want %q", cfg.OutputDir(), "second")
	}
}

func TestNewEvalConfig_NilSpecAllowed(t *testing.T) {
	cfg := NewEvalConfig(nil, WithOutputDir(""))

	if cfg.Spec() != nil {
		t.Fatalf("Spec() = %v, want nil", cfg.Spec())
	}
	if cfg.OutputDir() != "" {
		t.Fatalf("OutputDir() = %q, want empty", cfg.OutputDir())
	}
}

func TestNewEvalConfig_NilOptionPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for nil option, got none")
		}
	}()

	_ = NewEvalConfig(&models.EvalSpec{}, nil)
}
