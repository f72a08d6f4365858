package handlers

import (
	"context"
	"errors"
	"net/http"

	"bingoart/internal/artgen"
	"bingoart/internal/providers/scenario"
)

// statusForError maps generation failures onto HTTP responses.
func statusForError(err error) (int, string) {
	var (
		credErr *artgen.CredentialsError
		subErr  *scenario.SubmissionError
		pollErr *scenario.PollError
	)
	switch {
	case errors.As(err, &credErr):
		return http.StatusInternalServerError, credErr.Error()
	case errors.Is(err, artgen.ErrCredentialsMissing), errors.Is(err, scenario.ErrMissingCredentials):
		return http.StatusInternalServerError, "Scenario API credentials are not set in environment variables."
	case errors.As(err, &subErr):
		return http.StatusBadGateway, subErr.Error()
	case errors.Is(err, artgen.ErrNoResult):
		return http.StatusBadGateway, "Failed to generate asset."
	case errors.Is(err, scenario.ErrPollTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, err.Error()
	case errors.As(err, &pollErr):
		return http.StatusInternalServerError, pollErr.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
