package scenario

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned before any network call when the key
	// pair is incomplete.
	ErrMissingCredentials = errors.New("scenario: api key and secret are required")
	// ErrNoJobID means the provider accepted the request but returned no job id.
	ErrNoJobID = errors.New("scenario: no job id returned")
	// ErrPollTimeout means the job did not reach a terminal status in time.
	ErrPollTimeout = errors.New("scenario: job polling timed out")
	// ErrAssetUnresolved means every lookup strategy failed for an asset.
	ErrAssetUnresolved = errors.New("scenario: asset could not be resolved")
)

// SubmissionError reports a failed generation request.
type SubmissionError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SubmissionError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("scenario: submit failed (status %d): %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("scenario: submit failed: %v", e.Err)
	default:
		return fmt.Sprintf("scenario: submit failed: %d - %s", e.StatusCode, e.Body)
	}
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PollError aborts polling. It is never retried.
type PollError struct {
	JobID      string
	StatusCode int
	Body       string
	Err        error
}

func (e *PollError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scenario: poll job %s: %v", e.JobID, e.Err)
	}
	return fmt.Sprintf("scenario: poll job %s: %d - %s", e.JobID, e.StatusCode, e.Body)
}

func (e *PollError) Unwrap() error { return e.Err }
