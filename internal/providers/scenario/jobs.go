package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Status is the provider-side lifecycle of a job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailure    Status = "failure"
	StatusCanceled   Status = "canceled"
)

// IsTerminal reports whether no further polling is allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailure, StatusCanceled:
		return true
	default:
		return false
	}
}

// GenerationRequest is the JSON body sent to the custom-model endpoint.
// Video-only fields are omitted when zero so the same type serves image models.
type GenerationRequest struct {
	Prompt        string `json:"prompt"`
	GenerateAudio *bool  `json:"generateAudio,omitempty"`
	AspectRatio   string `json:"aspectRatio,omitempty"`
	Duration      int    `json:"duration,omitempty"`
	Resolution    string `json:"resolution,omitempty"`
}

// JobMetadata carries the produced asset ids.
type JobMetadata struct {
	AssetIDs []string `json:"assetIds"`
}

// Job is a snapshot of a provider job. Raw keeps the payload exactly as the
// provider sent it.
type Job struct {
	ID       string          `json:"jobId"`
	Status   Status          `json:"status"`
	Progress float64         `json:"progress"`
	Metadata JobMetadata     `json:"metadata"`
	Error    json.RawMessage `json:"error,omitempty"`
	Raw      json.RawMessage `json:"-"`
}

// AssetIDs returns the produced asset ids, never nil.
func (j *Job) AssetIDs() []string {
	if j == nil || j.Metadata.AssetIDs == nil {
		return []string{}
	}
	return j.Metadata.AssetIDs
}

// Payload returns the provider's job object, or an empty object.
func (j *Job) Payload() json.RawMessage {
	if j == nil || len(bytes.TrimSpace(j.Raw)) == 0 || bytes.Equal(bytes.TrimSpace(j.Raw), []byte("null")) {
		return json.RawMessage("{}")
	}
	return j.Raw
}

// ErrorMessage flattens the provider error field into text.
func (j *Job) ErrorMessage() string {
	if j == nil {
		return ""
	}
	raw := bytes.TrimSpace(j.Error)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

type jobEnvelope struct {
	Job json.RawMessage `json:"job"`
}

func decodeJob(raw []byte) (*Job, error) {
	var env jobEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	job := &Job{Raw: env.Job}
	if len(env.Job) > 0 && !bytes.Equal(bytes.TrimSpace(env.Job), []byte("null")) {
		if err := json.Unmarshal(env.Job, job); err != nil {
			return nil, err
		}
	}
	return job, nil
}

// Submit starts a generation on modelID and returns the provider job id.
// Exactly one request is made; failures are not retried.
func (c *Client) Submit(ctx context.Context, modelID string, req GenerationRequest) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingCredentials
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", &SubmissionError{Err: fmt.Errorf("encode request: %w", err)}
	}
	httpReq, err := c.newRequest(ctx, http.MethodPost, c.endpoint("generate", "custom", modelID), bytes.NewReader(body))
	if err != nil {
		return "", &SubmissionError{Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Info().Str("model", modelID).Msg("scenario: initiating generation")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &SubmissionError{Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	job, err := decodeJob(raw)
	if err != nil {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if strings.TrimSpace(job.ID) == "" {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Err: ErrNoJobID}
	}
	c.logger.Info().Str("model", modelID).Str("job_id", job.ID).Msg("scenario: generation job initiated")
	return job.ID, nil
}

// PollUntilTerminal checks the job every poll interval until it reaches
// success, failure or canceled. Failed and canceled jobs are returned without
// an error; callers inspect Status. A non-200 status check aborts immediately.
// Polling is bounded by the poll timeout and the optional attempt limit.
func (c *Client) PollUntilTerminal(ctx context.Context, jobID string) (*Job, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	status := StatusQueued
	for attempt := 1; ; attempt++ {
		if c.maxPollAttempts > 0 && attempt > c.maxPollAttempts {
			return nil, fmt.Errorf("%w: job %s still %s after %d checks", ErrPollTimeout, jobID, status, c.maxPollAttempts)
		}
		c.logger.Debug().Str("job_id", jobID).Str("status", string(status)).Msg("scenario: polling job")

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-pollCtx.Done():
			timer.Stop()
			return nil, c.pollStopped(ctx, jobID, status)
		case <-timer.C:
		}

		job, err := c.fetchJob(pollCtx, jobID)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, c.pollStopped(ctx, jobID, status)
			}
			return nil, err
		}
		status = job.Status
		c.observe(job)

		if status.IsTerminal() {
			if status == StatusSuccess {
				c.logger.Info().Str("job_id", jobID).Strs("asset_ids", job.AssetIDs()).Msg("scenario: generation completed")
			} else {
				c.logger.Warn().Str("job_id", jobID).Str("status", string(status)).Str("error", job.ErrorMessage()).Msg("scenario: generation failed or canceled")
			}
			return job, nil
		}
	}
}

// pollStopped distinguishes the caller going away from the poll deadline.
func (c *Client) pollStopped(parent context.Context, jobID string, status Status) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w: job %s still %s after %s", ErrPollTimeout, jobID, status, c.pollTimeout)
}

func (c *Client) fetchJob(ctx context.Context, jobID string) (*Job, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("jobs", jobID), nil)
	if err != nil {
		return nil, &PollError{JobID: jobID, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &PollError{JobID: jobID, Err: err}
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return nil, &PollError{JobID: jobID, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Str("job_id", jobID).Int("status", resp.StatusCode).Msg("scenario: error polling job status")
		return nil, &PollError{JobID: jobID, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	job, err := decodeJob(raw)
	if err != nil {
		return nil, &PollError{JobID: jobID, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if job.ID == "" {
		job.ID = jobID
	}
	return job, nil
}

func (c *Client) observe(job *Job) {
	c.logger.Debug().
		Str("job_id", job.ID).
		Str("status", string(job.Status)).
		Float64("progress_pct", job.Progress*100).
		Msg("scenario: job progress")
	if c.onProgress != nil {
		c.onProgress(*job)
	}
}

// Generate submits req and polls the resulting job to completion.
func (c *Client) Generate(ctx context.Context, modelID string, req GenerationRequest) (*Job, error) {
	jobID, err := c.Submit(ctx, modelID, req)
	if err != nil {
		return nil, err
	}
	job, err := c.PollUntilTerminal(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errors.New("scenario: empty job")
	}
	return job, nil
}
