// Package scenario is a small client for the Scenario generative-media API:
// submit a generation, poll the job until it settles, and turn the resulting
// asset ids into URLs or local files.
package scenario

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bingoart/internal/infra"
)

const (
	defaultBaseURL      = "https://api.cloud.scenario.com/v1"
	defaultPollInterval = 3 * time.Second
	defaultPollTimeout  = 10 * time.Minute

	// maxResponseBytes caps JSON bodies read into memory.
	maxResponseBytes = 4 << 20
)

// Options configures the Scenario client.
type Options struct {
	APIKey          string
	APISecret       string
	BaseURL         string
	HTTPClient      *http.Client
	PollInterval    time.Duration
	PollTimeout     time.Duration
	MaxPollAttempts int
	Logger          *infra.Logger
	// OnProgress is called after every successful status check.
	OnProgress func(Job)
}

// Client performs authenticated calls against the Scenario REST API. It holds
// no per-job state and is safe to share between requests.
type Client struct {
	apiKey          string
	apiSecret       string
	baseURL         string
	httpClient      *http.Client
	headClient      *http.Client
	pollInterval    time.Duration
	pollTimeout     time.Duration
	maxPollAttempts int
	logger          *infra.Logger
	onProgress      func(Job)
}

// NewClient constructs a client with defaults for every unset option.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	// HEAD lookups must see the redirect itself rather than follow it.
	headClient := *httpClient
	headClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	pollTimeout := opts.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{
		apiKey:          strings.TrimSpace(opts.APIKey),
		apiSecret:       strings.TrimSpace(opts.APISecret),
		baseURL:         baseURL,
		httpClient:      httpClient,
		headClient:      &headClient,
		pollInterval:    pollInterval,
		pollTimeout:     pollTimeout,
		maxPollAttempts: opts.MaxPollAttempts,
		logger:          logger,
		onProgress:      opts.OnProgress,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

// Authorize attaches the key pair to req when it targets the provider host.
// Signed CDN URLs never receive the credentials.
func (c *Client) Authorize(req *http.Request) {
	if req == nil || req.URL == nil || !c.isProviderHost(req.URL) {
		return
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
}

func (c *Client) isProviderHost(u *url.URL) bool {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(base.Host, u.Host)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

func readBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxResponseBytes))
}
