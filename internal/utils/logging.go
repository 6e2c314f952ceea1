package utils

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// LogCommand emits a debug record for one external command invocation.
// It is a no-op unless debug logging is enabled, so hot paths can call it
// unconditionally.
func LogCommand(tool string, args []string, elapsed time.Duration, err error) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"tool", tool,
		"command", strings.Join(args, " "),
		"elapsed_ms", elapsed.Milliseconds(),
	}

	var errMsg *string
	if err != nil {
		s := err.Error()
		errMsg = &s
	}
	attrs = addIf(attrs, "error", errMsg)

	slog.Debug("command finished", attrs...)
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name)
		attrs = append(attrs, *v)
	}

	return attrs
}
