// Package config carries the immutable per-invocation settings for an
// evaluation run. An EvalConfig is assembled once at startup from the
// loaded spec plus CLI flags and is read-only afterwards.
package config

import (
	"github.com/droidworld/droideval/internal/models"
)

// EvalConfig is the resolved configuration for one evaluation run.
type EvalConfig struct {
	spec      *models.EvalSpec
	specDir   string
	outputDir string
	junitPath string
	htmlPath  string
	verbose   bool
}

// Option mutates an EvalConfig during construction.
type Option func(*EvalConfig)

// WithSpecDir records the directory the spec file was loaded from.
// Relative paths inside the spec resolve against it.
func WithSpecDir(dir string) Option {
	return func(c *EvalConfig) {
		c.specDir = dir
	}
}

// WithOutputDir sets the directory results.json, report.md and the
// observability artifacts are written to.
func WithOutputDir(dir string) Option {
	return func(c *EvalConfig) {
		c.outputDir = dir
	}
}

// WithJUnitPath enables JUnit XML output at the given path.
func WithJUnitPath(path string) Option {
	return func(c *EvalConfig) {
		c.junitPath = path
	}
}

// WithHTMLPath enables HTML report output at the given path.
func WithHTMLPath(path string) Option {
	return func(c *EvalConfig) {
		c.htmlPath = path
	}
}

// WithVerbose enables verbose progress output.
func WithVerbose(verbose bool) Option {
	return func(c *EvalConfig) {
		c.verbose = verbose
	}
}

// NewEvalConfig builds a config from the spec and options. Options are
// applied in order, so later options win. A nil option is a programming
// error and panics.
func NewEvalConfig(spec *models.EvalSpec, opts ...Option) *EvalConfig {
	c := &EvalConfig{spec: spec}
	for _, opt := range opts {
		if opt == nil {
			panic("config: nil Option passed to NewEvalConfig")
		}
		opt(c)
	}
	return c
}

// Spec returns the loaded eval spec. May be nil in tests.
func (c *EvalConfig) Spec() *models.EvalSpec { return c.spec }

// SpecDir returns the directory containing the spec file, or "".
func (c *EvalConfig) SpecDir() string { return c.specDir }

// OutputDir returns the artifact output directory, or "".
func (c *EvalConfig) OutputDir() string { return c.outputDir }

// JUnitPath returns the JUnit XML output path, or "" when disabled.
func (c *EvalConfig) JUnitPath() string { return c.junitPath }

// HTMLPath returns the HTML report output path, or "" when disabled.
func (c *EvalConfig) HTMLPath() string { return c.htmlPath }

// Verbose reports whether verbose progress output is enabled.
func (c *EvalConfig) Verbose() bool { return c.verbose }
