// Package observability collects lightweight traces and counters for an
// evaluation run. Recording is strictly best-effort: a recorder failure
// must never change an evaluation result, so every exported entry point
// swallows its own faults.
package observability

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Recorder receives evaluation events. Implementations must be safe for
// concurrent use and must not block the caller.
type Recorder interface {
	RecordEvent(name string, attrs map[string]any)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) RecordEvent(string, map[string]any) {}

// TraceEvent is one recorded event.
type TraceEvent struct {
	Name       string         `json:"event"`
	Timestamp  time.Time      `json:"timestamp"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Collector accumulates trace events in memory and maintains a per-event
// counter. Persistence to disk is explicit via SaveTraces/SaveMetrics.
type Collector struct {
	service string

	mu       sync.Mutex
	started  time.Time
	now      func() time.Time
	events   []TraceEvent
	counters map[string]int
}

// NewCollector creates a collector tagged with a service name.
func NewCollector(service string) *Collector {
	c := &Collector{
		service:  service,
		now:      time.Now,
		counters: make(map[string]int),
	}
	c.started = c.now()
	return c
}

// RecordEvent appends a trace event and bumps its counter. Attribute maps
// are copied so the caller may reuse theirs.
func (c *Collector) RecordEvent(name string, attrs map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("observability event dropped", "event", name, "panic", r)
		}
	}()

	var copied map[string]any
	if len(attrs) > 0 {
		copied = make(map[string]any, len(attrs))
		for k, v := range attrs {
			copied[k] = v
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, TraceEvent{
		Name:       name,
		Timestamp:  c.now(),
		Attributes: copied,
	})
	c.counters[name]++
}

// Events returns a copy of the recorded events in arrival order.
func (c *Collector) Events() []TraceEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TraceEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Counters returns a copy of the per-event counters.
func (c *Collector) Counters() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counters))
	for k, v := range c.counters {
		out[k] = v
	}
	return out
}

// tracesDocument is the on-disk shape of SaveTraces.
type tracesDocument struct {
	Service string       `json:"service"`
	Events  []TraceEvent `json:"events"`
}

// metricsDocument is the on-disk shape of SaveMetrics.
type metricsDocument struct {
	Service  string           `json:"service"`
	UptimeMs int64            `json:"uptime_ms"`
	Counters []metricsCounter `json:"counters"`
}

type metricsCounter struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SaveTraces writes the recorded events to path as indented JSON.
func (c *Collector) SaveTraces(path string) error {
	doc := tracesDocument{Service: c.service, Events: c.Events()}
	return writeJSON(path, doc)
}

// SaveMetrics writes the per-event counters to path, sorted by name so the
// output is stable.
func (c *Collector) SaveMetrics(path string) error {
	counters := c.Counters()
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := metricsDocument{
		Service:  c.service,
		UptimeMs: c.now().Sub(c.started).Milliseconds(),
	}
	for _, name := range names {
		doc.Counters = append(doc.Counters, metricsCounter{Name: name, Count: counters[name]})
	}
	return writeJSON(path, doc)
}

// Report renders a human-readable markdown summary of the collected
// events and counters. It carries no timestamps so the same recording
// always renders the same bytes.
func (c *Collector) Report() string {
	events := c.Events()
	counters := c.Counters()

	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("# Observability Report\n\n")
	fmt.Fprintf(&b, "**Service**: %s\n", c.service)
	fmt.Fprintf(&b, "**Events**: %d\n\n", len(events))

	b.WriteString("## Counters\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %d\n", name, counters[name])
	}

	b.WriteString("\n## Recent Events\n")
	recent := events
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	for _, ev := range recent {
		fmt.Fprintf(&b, "- %s\n", ev.Name)
	}

	return b.String()
}

// SaveReport writes the Report output to path.
func (c *Collector) SaveReport(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(c.Report()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
