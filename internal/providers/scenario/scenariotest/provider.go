// Package scenariotest provides an in-memory stand-in for the Scenario API
// that plugs into an http.Client as its transport.
package scenariotest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
)

// BaseURL is the API root tests point the client at.
const BaseURL = "https://api.scenario.test/v1"

// Response is a canned reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	Err    error
}

// JSON builds a JSON reply.
func JSON(status int, v any) Response {
	body, _ := json.Marshal(v)
	return Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	}
}

// Text builds a plain-text reply.
func Text(status int, body string) Response {
	return Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{"text/plain"}},
		Body:   []byte(body),
	}
}

// Binary builds a reply carrying data with the given content type.
func Binary(status int, contentType string, data []byte) Response {
	return Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{contentType}},
		Body:   data,
	}
}

// Located builds a body-less reply with a Location header.
func Located(status int, location string) Response {
	return Response{
		Status: status,
		Header: http.Header{"Location": []string{location}},
	}
}

// Call records one request seen by the provider.
type Call struct {
	Method   string
	URL      string
	Username string
	Password string
	HasAuth  bool
	Body     []byte
}

// Key returns "METHOD URL".
func (c Call) Key() string {
	return c.Method + " " + c.URL
}

// Provider routes requests by method and absolute URL. Each route holds a
// queue of responses; the last one repeats once the queue drains.
// Unrouted requests get a 404.
type Provider struct {
	mu     sync.Mutex
	routes map[string][]Response
	calls  []Call
}

func New() *Provider {
	return &Provider{routes: make(map[string][]Response)}
}

// On queues responses for method and url.
func (p *Provider) On(method, url string, responses ...Response) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := method + " " + url
	p.routes[key] = append(p.routes[key], responses...)
	return p
}

// Client returns an http.Client backed by the provider.
func (p *Provider) Client() *http.Client {
	return &http.Client{Transport: p}
}

// Calls returns a copy of the recorded requests in arrival order.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallKeys returns "METHOD URL" for every recorded request.
func (p *Provider) CallKeys() []string {
	calls := p.Calls()
	keys := make([]string, len(calls))
	for i, c := range calls {
		keys[i] = c.Key()
	}
	return keys
}

// Count returns how many requests matched method and url.
func (p *Provider) Count(method, url string) int {
	n := 0
	for _, c := range p.Calls() {
		if c.Method == method && c.URL == url {
			n++
		}
	}
	return n
}

func (p *Provider) RoundTrip(req *http.Request) (*http.Response, error) {
	call := Call{Method: req.Method, URL: req.URL.String()}
	call.Username, call.Password, call.HasAuth = req.BasicAuth()
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		call.Body = body
	}

	p.mu.Lock()
	p.calls = append(p.calls, call)
	key := call.Key()
	queue := p.routes[key]
	var stub Response
	found := len(queue) > 0
	if found {
		stub = queue[0]
		if len(queue) > 1 {
			p.routes[key] = queue[1:]
		}
	}
	p.mu.Unlock()

	if !found {
		stub = Text(http.StatusNotFound, "not found")
	}
	if stub.Err != nil {
		return nil, stub.Err
	}
	return stub.toResponse(req), nil
}

func (r Response) toResponse(req *http.Request) *http.Response {
	header := http.Header{}
	for k, values := range r.Header {
		header[k] = append([]string(nil), values...)
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	var body io.ReadCloser = http.NoBody
	if len(r.Body) > 0 && req.Method != http.MethodHead {
		body = io.NopCloser(bytes.NewReader(r.Body))
	}
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Header:        header,
		Body:          body,
		ContentLength: int64(len(r.Body)),
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
	}
}

// JobURL is the status endpoint for id.
func JobURL(id string) string { return BaseURL + "/jobs/" + id }

// GenerateURL is the submission endpoint for model.
func GenerateURL(model string) string { return BaseURL + "/generate/custom/" + model }

// AssetURL is the metadata endpoint for id.
func AssetURL(id string) string { return BaseURL + "/assets/" + id }

// DownloadURL is the direct-download endpoint for id.
func DownloadURL(id string) string { return BaseURL + "/assets/" + id + "/download" }

// Job builds a job envelope as the provider returns it.
func Job(id, status string, progress float64, assetIDs ...string) map[string]any {
	job := map[string]any{
		"jobId":    id,
		"status":   status,
		"progress": progress,
	}
	if assetIDs != nil {
		job["metadata"] = map[string]any{"assetIds": assetIDs}
	}
	return map[string]any{"job": job}
}

// HasPrefix reports whether any recorded call URL starts with prefix.
func (p *Provider) HasPrefix(prefix string) bool {
	for _, c := range p.Calls() {
		if strings.HasPrefix(c.URL, prefix) {
			return true
		}
	}
	return false
}
