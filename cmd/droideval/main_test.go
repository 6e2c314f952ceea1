package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEpisodeFailureError(t *testing.T) {
	err := &EpisodeFailureError{
		Message: "2 of 5 episodes failed",
	}

	assert.Equal(t, "2 of 5 episodes failed", err.Error())
}

func TestErrorTypeDetection(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType string
	}{
		{
			name:     "EpisodeFailureError",
			err:      &EpisodeFailureError{Message: "episode failure"},
			wantType: "EpisodeFailureError",
		},
		{
			name:     "regular error",
			err:      errors.New("config error"),
			wantType: "other",
		},
		{
			name:     "wrapped EpisodeFailureError",
			err:      errors.Join(&EpisodeFailureError{Message: "episode failure"}, errors.New("additional context")),
			wantType: "EpisodeFailureError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var episodeErr *EpisodeFailureError
			isEpisodeFailure := errors.As(tt.err, &episodeErr)

			if tt.wantType == "EpisodeFailureError" {
				assert.True(t, isEpisodeFailure, "expected error to be detected as EpisodeFailureError")
			} else {
				assert.False(t, isEpisodeFailure, "expected error NOT to be detected as EpisodeFailureError")
			}
		})
	}
}
