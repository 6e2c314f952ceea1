package execution

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/droidworld/droideval/internal/device"
)

// ErrEmptyTask is returned when the task description is empty or
// whitespace-only. It is a usage error, never a failed episode.
var ErrEmptyTask = errors.New("task description is empty")

// ParseError indicates that a task description could not be mapped to a
// device action. It is reported as a failed trial outcome, not as a fault.
type ParseError struct {
	Task string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse task: %q", e.Task)
}

// ParseTask maps a natural-language task description onto a device action.
//
// The routing is keyword based: "open ... app ..." opens an app (the word
// after "app" names it, defaulting to settings), "click"/"tap" taps an
// element, "input" types text, and anything else is a generic task.
func ParseTask(task string) (device.Action, error) {
	trimmed := strings.TrimSpace(task)
	if trimmed == "" {
		return device.Action{}, ErrEmptyTask
	}
	if !hasWordCharacters(trimmed) {
		return device.Action{}, &ParseError{Task: task}
	}

	lower := strings.ToLower(trimmed)
	words := strings.Fields(lower)

	switch {
	case strings.Contains(lower, "open") && strings.Contains(lower, "app"):
		return device.Action{Kind: device.ActionOpenApp, App: wordAfter(words, "app", "settings")}, nil
	case strings.Contains(lower, "click"):
		return device.Action{Kind: device.ActionTap, Element: wordAfter(words, "click", "button")}, nil
	case strings.Contains(lower, "tap"):
		return device.Action{Kind: device.ActionTap, Element: wordAfter(words, "tap", "button")}, nil
	case strings.Contains(lower, "input"):
		return device.Action{Kind: device.ActionInputText, Text: wordAfter(words, "input", "test")}, nil
	default:
		return device.Action{Kind: device.ActionGeneric, Description: trimmed}, nil
	}
}

// wordAfter returns the word following the first occurrence of key, or
// fallback when key is last or absent.
func wordAfter(words []string, key, fallback string) string {
	for i, w := range words {
		if w == key && i+1 < len(words) {
			return words[i+1]
		}
	}
	return fallback
}

func hasWordCharacters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
