package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bingoart/internal/providers/scenario/scenariotest"
)

func newTestClient(t *testing.T, provider *scenariotest.Provider, mutate ...func(*Options)) *Client {
	t.Helper()
	opts := Options{
		APIKey:       "key",
		APISecret:    "secret",
		BaseURL:      scenariotest.BaseURL,
		HTTPClient:   provider.Client(),
		PollInterval: time.Millisecond,
		PollTimeout:  5 * time.Second,
	}
	for _, m := range mutate {
		m(&opts)
	}
	client, err := NewClient(opts)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestSubmitSendsPayloadWithBasicAuth(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodPost, scenariotest.GenerateURL("model_veo3-1"), scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "queued", 0)))
	client := newTestClient(t, provider)

	noAudio := false
	jobID, err := client.Submit(context.Background(), "model_veo3-1", GenerationRequest{
		Prompt:        "desert oasis",
		GenerateAudio: &noAudio,
		AspectRatio:   "16:9",
		Duration:      8,
		Resolution:    "1080p",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if jobID != "job_1" {
		t.Fatalf("job id = %q, want job_1", jobID)
	}

	calls := provider.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if !calls[0].HasAuth || calls[0].Username != "key" || calls[0].Password != "secret" {
		t.Fatalf("basic auth missing or wrong: %+v", calls[0])
	}
	var payload map[string]any
	if err := json.Unmarshal(calls[0].Body, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	want := map[string]any{
		"prompt":        "desert oasis",
		"generateAudio": false,
		"aspectRatio":   "16:9",
		"duration":      float64(8),
		"resolution":    "1080p",
	}
	for k, v := range want {
		if payload[k] != v {
			t.Fatalf("payload[%s] = %v, want %v", k, payload[k], v)
		}
	}
}

func TestSubmitImagePayloadOmitsVideoFields(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodPost, scenariotest.GenerateURL("flux.1-dev"), scenariotest.JSON(http.StatusOK, scenariotest.Job("job_2", "queued", 0)))
	client := newTestClient(t, provider)

	if _, err := client.Submit(context.Background(), "flux.1-dev", GenerationRequest{Prompt: "card", AspectRatio: "1:1"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(provider.Calls()[0].Body, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	for _, field := range []string{"generateAudio", "duration", "resolution"} {
		if _, ok := payload[field]; ok {
			t.Fatalf("%s should be omitted for image requests", field)
		}
	}
}

func TestSubmitWithoutJobID(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodPost, scenariotest.GenerateURL("m"), scenariotest.JSON(http.StatusOK, map[string]any{"job": map[string]any{}}))
	client := newTestClient(t, provider)

	_, err := client.Submit(context.Background(), "m", GenerationRequest{Prompt: "x"})
	if !errors.Is(err, ErrNoJobID) {
		t.Fatalf("err = %v, want ErrNoJobID", err)
	}
	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %T", err)
	}
}

func TestSubmitNon200(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodPost, scenariotest.GenerateURL("m"), scenariotest.Text(http.StatusBadRequest, "bad prompt"))
	client := newTestClient(t, provider)

	_, err := client.Submit(context.Background(), "m", GenerationRequest{Prompt: "x"})
	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if subErr.StatusCode != http.StatusBadRequest || subErr.Body != "bad prompt" {
		t.Fatalf("unexpected error detail: %+v", subErr)
	}
	if n := len(provider.Calls()); n != 1 {
		t.Fatalf("submit must not retry, got %d calls", n)
	}
}

func TestCallsWithoutCredentialsMakeNoRequests(t *testing.T) {
	provider := scenariotest.New()
	client := newTestClient(t, provider, func(o *Options) { o.APISecret = "" })
	ctx := context.Background()

	if _, err := client.Submit(ctx, "m", GenerationRequest{}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("Submit err = %v", err)
	}
	if _, err := client.PollUntilTerminal(ctx, "job"); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("Poll err = %v", err)
	}
	if _, err := client.ResolveURL(ctx, "a1"); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("ResolveURL err = %v", err)
	}
	if _, err := client.Download(ctx, "a1", t.TempDir()); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("Download err = %v", err)
	}
	if n := len(provider.Calls()); n != 0 {
		t.Fatalf("expected no outbound calls, got %d", n)
	}
}

func TestPollStopsAtFirstTerminalStatus(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodGet, scenariotest.JobURL("job_1"),
			scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "queued", 0)),
			scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "processing", 0.4)),
			scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "success", 1, "a1", "a2")),
			scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "processing", 0.5)),
		)
	var progress []float64
	client := newTestClient(t, provider, func(o *Options) {
		o.OnProgress = func(j Job) { progress = append(progress, j.Progress) }
	})

	job, err := client.PollUntilTerminal(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if job.Status != StatusSuccess {
		t.Fatalf("status = %s, want success", job.Status)
	}
	ids := job.AssetIDs()
	if len(ids) != 2 || ids[0] != "a1" || ids[1] != "a2" {
		t.Fatalf("asset ids = %v", ids)
	}
	if n := provider.Count(http.MethodGet, scenariotest.JobURL("job_1")); n != 3 {
		t.Fatalf("poll calls = %d, want 3", n)
	}
	if len(progress) != 3 || progress[1] != 0.4 || progress[2] != 1 {
		t.Fatalf("progress observations = %v", progress)
	}
	var raw map[string]any
	if err := json.Unmarshal(job.Payload(), &raw); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if raw["jobId"] != "job_1" {
		t.Fatalf("payload lost provider fields: %v", raw)
	}
}

func TestPollSuccessWithoutMetadata(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodGet, scenariotest.JobURL("job_1"), scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "success", 1)))
	client := newTestClient(t, provider)

	job, err := client.PollUntilTerminal(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if ids := job.AssetIDs(); ids == nil || len(ids) != 0 {
		t.Fatalf("asset ids = %#v, want empty slice", ids)
	}
}

func TestPollReturnsFailedAndCanceledJobs(t *testing.T) {
	for _, status := range []string{"failure", "canceled"} {
		t.Run(status, func(t *testing.T) {
			payload := map[string]any{"job": map[string]any{"jobId": "job_1", "status": status, "error": "content rejected"}}
			provider := scenariotest.New().
				On(http.MethodGet, scenariotest.JobURL("job_1"), scenariotest.JSON(http.StatusOK, payload))
			client := newTestClient(t, provider)

			job, err := client.PollUntilTerminal(context.Background(), "job_1")
			if err != nil {
				t.Fatalf("poll: %v", err)
			}
			if string(job.Status) != status {
				t.Fatalf("status = %s, want %s", job.Status, status)
			}
			if job.ErrorMessage() != "content rejected" {
				t.Fatalf("error message = %q", job.ErrorMessage())
			}
			if n := len(provider.Calls()); n != 1 {
				t.Fatalf("calls = %d, want 1", n)
			}
		})
	}
}

func TestPollAbortsOnHTTPError(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodGet, scenariotest.JobURL("job_1"),
			scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "processing", 0.1)),
			scenariotest.Text(http.StatusBadGateway, "upstream down"),
			scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "success", 1, "a1")),
		)
	client := newTestClient(t, provider)

	_, err := client.PollUntilTerminal(context.Background(), "job_1")
	var pollErr *PollError
	if !errors.As(err, &pollErr) {
		t.Fatalf("expected PollError, got %v", err)
	}
	if pollErr.StatusCode != http.StatusBadGateway || pollErr.Body != "upstream down" {
		t.Fatalf("unexpected poll error: %+v", pollErr)
	}
	if n := len(provider.Calls()); n != 2 {
		t.Fatalf("polling must stop after the error, got %d calls", n)
	}
}

func TestPollMaxAttempts(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodGet, scenariotest.JobURL("job_1"), scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "processing", 0.2)))
	client := newTestClient(t, provider, func(o *Options) { o.MaxPollAttempts = 3 })

	_, err := client.PollUntilTerminal(context.Background(), "job_1")
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
	if n := len(provider.Calls()); n != 3 {
		t.Fatalf("calls = %d, want 3", n)
	}
}

func TestPollDeadline(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodGet, scenariotest.JobURL("job_1"), scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "processing", 0.2)))
	client := newTestClient(t, provider, func(o *Options) {
		o.PollInterval = 5 * time.Millisecond
		o.PollTimeout = 30 * time.Millisecond
	})

	_, err := client.PollUntilTerminal(context.Background(), "job_1")
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
}

func TestPollCallerCancellation(t *testing.T) {
	provider := scenariotest.New()
	client := newTestClient(t, provider, func(o *Options) { o.PollInterval = time.Hour })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.PollUntilTerminal(ctx, "job_1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n := len(provider.Calls()); n != 0 {
		t.Fatalf("calls = %d, want 0", n)
	}
}

func TestGenerateSubmitsThenPolls(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodPost, scenariotest.GenerateURL("model_veo3-1"), scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "queued", 0))).
		On(http.MethodGet, scenariotest.JobURL("job_1"),
			scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "processing", 0.4)),
			scenariotest.JSON(http.StatusOK, scenariotest.Job("job_1", "success", 1, "a1")),
		)
	client := newTestClient(t, provider)

	job, err := client.Generate(context.Background(), "model_veo3-1", GenerationRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if job.ID != "job_1" || len(job.AssetIDs()) != 1 {
		t.Fatalf("unexpected job %+v", job)
	}
	keys := provider.CallKeys()
	want := []string{
		"POST " + scenariotest.GenerateURL("model_veo3-1"),
		"GET " + scenariotest.JobURL("job_1"),
		"GET " + scenariotest.JobURL("job_1"),
	}
	if len(keys) != len(want) {
		t.Fatalf("calls = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("call[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name         string
		head         scenariotest.Response
		meta         *scenariotest.Response
		want         string
		wantMetadata bool
	}{
		{
			name: "head 200 with location",
			head: scenariotest.Located(http.StatusOK, "https://cdn/x.mp4"),
			want: "https://cdn/x.mp4",
		},
		{
			name: "head redirect",
			head: scenariotest.Located(http.StatusFound, "https://cdn.example.com/signed.mp4?sig=1"),
			want: "https://cdn.example.com/signed.mp4?sig=1",
		},
		{
			name: "relative redirect",
			head: scenariotest.Located(http.StatusSeeOther, "/v1/files/a1.mp4"),
			want: "https://api.scenario.test/v1/files/a1.mp4",
		},
		{
			name: "head 200 without location",
			head: scenariotest.Binary(http.StatusOK, "video/mp4", nil),
			want: scenariotest.DownloadURL("a1"),
		},
		{
			name:         "metadata nested asset url",
			head:         scenariotest.Text(http.StatusForbidden, ""),
			meta:         ptr(scenariotest.JSON(http.StatusOK, map[string]any{"asset": map[string]any{"url": "https://cdn/y.png"}})),
			want:         "https://cdn/y.png",
			wantMetadata: true,
		},
		{
			name: "metadata skips malformed values",
			head: scenariotest.Text(http.StatusNotFound, ""),
			meta: ptr(scenariotest.JSON(http.StatusOK, map[string]any{
				"downloadUrl": "not a url",
				"url":         "",
				"data":        map[string]any{"signedUrl": "https://signed.example.com/a1"},
			})),
			want:         "https://signed.example.com/a1",
			wantMetadata: true,
		},
		{
			name:         "head transport error",
			head:         scenariotest.Response{Err: errors.New("connection reset")},
			meta:         ptr(scenariotest.JSON(http.StatusOK, map[string]any{"downloadUrl": "https://cdn/z.mp4"})),
			want:         "https://cdn/z.mp4",
			wantMetadata: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			provider := scenariotest.New().On(http.MethodHead, scenariotest.DownloadURL("a1"), tc.head)
			if tc.meta != nil {
				provider.On(http.MethodGet, scenariotest.AssetURL("a1"), *tc.meta)
			}
			client := newTestClient(t, provider)

			got, err := client.ResolveURL(context.Background(), "a1")
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tc.want {
				t.Fatalf("url = %q, want %q", got, tc.want)
			}
			metaCalls := provider.Count(http.MethodGet, scenariotest.AssetURL("a1"))
			if tc.wantMetadata != (metaCalls > 0) {
				t.Fatalf("metadata consulted = %v, want %v", metaCalls > 0, tc.wantMetadata)
			}
		})
	}
}

func TestResolveURLExhausted(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodHead, scenariotest.DownloadURL("a1"), scenariotest.Text(http.StatusNotFound, "")).
		On(http.MethodGet, scenariotest.AssetURL("a1"), scenariotest.JSON(http.StatusOK, map[string]any{"id": "a1"}))
	client := newTestClient(t, provider)

	_, err := client.ResolveURL(context.Background(), "a1")
	if !errors.Is(err, ErrAssetUnresolved) {
		t.Fatalf("err = %v, want ErrAssetUnresolved", err)
	}

	provider = scenariotest.New()
	client = newTestClient(t, provider)
	if _, err := client.ResolveURL(context.Background(), "a2"); !errors.Is(err, ErrAssetUnresolved) {
		t.Fatalf("err = %v, want ErrAssetUnresolved", err)
	}
}

func TestDownloadDirect(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodGet, scenariotest.DownloadURL("a1"), scenariotest.Binary(http.StatusOK, "video/mp4", []byte("mp4-bytes")))
	client := newTestClient(t, provider)
	dir := filepath.Join(t.TempDir(), "nested", "video")

	path, err := client.Download(context.Background(), "a1", dir)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if path != filepath.Join(dir, "a1.mp4") {
		t.Fatalf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != "mp4-bytes" {
		t.Fatalf("content = %q", data)
	}
}

func TestDownloadFallsBackToSignedURL(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodGet, scenariotest.DownloadURL("a1"), scenariotest.Text(http.StatusForbidden, "nope")).
		On(http.MethodGet, scenariotest.AssetURL("a1"), scenariotest.JSON(http.StatusOK, map[string]any{
			"url":  "https://cdn.example.com/broken.webm",
			"file": map[string]any{"signedUrl": "https://cdn.example.com/a1.webm"},
		})).
		On(http.MethodGet, "https://cdn.example.com/a1.webm", scenariotest.Binary(http.StatusOK, "video/webm", []byte("webm")))
	client := newTestClient(t, provider)
	dir := t.TempDir()

	path, err := client.Download(context.Background(), "a1", dir)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if filepath.Ext(path) != ".webm" {
		t.Fatalf("path = %q, want .webm", path)
	}
	for _, call := range provider.Calls() {
		if call.URL == "https://cdn.example.com/a1.webm" && call.HasAuth {
			t.Fatalf("signed url must not receive credentials")
		}
	}
	if provider.Count(http.MethodGet, "https://cdn.example.com/broken.webm") != 1 {
		t.Fatalf("expected the top-level url to be tried first: %v", provider.CallKeys())
	}
}

func TestDownloadExhausted(t *testing.T) {
	provider := scenariotest.New().
		On(http.MethodGet, scenariotest.AssetURL("a1"), scenariotest.Text(http.StatusInternalServerError, "boom"))
	client := newTestClient(t, provider)
	dir := t.TempDir()

	if _, err := client.Download(context.Background(), "a1", dir); !errors.Is(err, ErrAssetUnresolved) {
		t.Fatalf("err = %v, want ErrAssetUnresolved", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files, got %d", len(entries))
	}
}

func TestExtensionForContentType(t *testing.T) {
	tests := map[string]string{
		"video/mp4":                 ".mp4",
		"VIDEO/MP4; charset=binary": ".mp4",
		"video/webm":                ".webm",
		"video/quicktime":           ".mov",
		"application/octet-stream":  ".bin",
		"":                          ".bin",
	}
	for ct, want := range tests {
		if got := ExtensionForContentType(ct); got != want {
			t.Fatalf("ExtensionForContentType(%q) = %q, want %q", ct, got, want)
		}
	}
}

func ptr[T any](v T) *T { return &v }

func TestDownloadSignedURLOnProviderHostHasNoAuth(t *testing.T) {
	signed := scenariotest.BaseURL + "/files/a1.mp4?sig=abc"
	provider := scenariotest.New().
		On(http.MethodGet, scenariotest.DownloadURL("a1"), scenariotest.Text(http.StatusForbidden, "")).
		On(http.MethodGet, scenariotest.AssetURL("a1"), scenariotest.JSON(http.StatusOK, map[string]any{"signedUrl": signed})).
		On(http.MethodGet, signed, scenariotest.Binary(http.StatusOK, "video/mp4", []byte("mp4")))
	client := newTestClient(t, provider)

	if _, err := client.Download(context.Background(), "a1", t.TempDir()); err != nil {
		t.Fatalf("download: %v", err)
	}
	for _, call := range provider.Calls() {
		if call.URL == signed && call.HasAuth {
			t.Fatalf("signed url fetched with credentials")
		}
	}
	if provider.Count(http.MethodGet, signed) != 1 {
		t.Fatalf("signed url not fetched: %v", provider.CallKeys())
	}
}
