package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess       = 0 // All episodes passed
	ExitEpisodeFailed = 1 // One or more episodes failed, or the run was cancelled
	ExitError         = 2 // Configuration or runtime error
)

// EpisodeFailureError indicates that the evaluation ran to completion,
// but one or more episodes did not succeed.
type EpisodeFailureError struct {
	Message string
}

func (e *EpisodeFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var episodeErr *EpisodeFailureError
		if errors.As(err, &episodeErr) {
			os.Exit(ExitEpisodeFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
