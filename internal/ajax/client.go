// Package ajax is the network client of the page scripts: typed calls to the
// /ajaxapi, /ajaxapi2 and export endpoints, a small future for attaching
// continuations, and the page-wide activity tracker that fires when every
// in-flight request has finished.
package ajax

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/salmonumbrella/xmlsel/internal/debug"
)

const (
	defaultBaseURL = "http://localhost:5000"

	PathAjax  = "/ajaxapi"
	PathAjax2 = "/ajaxapi2"

	// maxErrorBody caps how much of an error response is kept for diagnostics.
	maxErrorBody = 4096
)

// Client issues the page's network requests.
//
// There is no retry, no backoff and no timeout of its own: a request lasts
// as long as the caller's context allows.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tracker    *ActivityTracker
}

// NewClient creates a client for the server at baseURL. Cookies persist
// across requests, so flash messages follow the session like in a browser.
func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{Jar: jar},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tracker:    NewActivityTracker(),
	}
}

// WithHTTPClient sets a custom HTTP client
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.httpClient = client
	return c
}

// WithTracker replaces the activity tracker shared by every request.
func (c *Client) WithTracker(t *ActivityTracker) *Client {
	c.tracker = t
	return c
}

// WithDebugOutput traces every request and response to w.
func (c *Client) WithDebugOutput(w io.Writer) *Client {
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	clone := *c.httpClient
	clone.Transport = debug.NewTransport(base, w)
	c.httpClient = &clone
	return c
}

// Untracked returns a copy of the client whose requests are not counted by
// any tracker. Page navigations use it.
func (c *Client) Untracked() *Client {
	clone := *c
	clone.tracker = nil
	return &clone
}

// BaseURL returns the server root requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tracker returns the activity tracker.
func (c *Client) Tracker() *ActivityTracker {
	return c.tracker
}

// Resolve turns a path or absolute URL into the URL a request is sent to.
func (c *Client) Resolve(target string) string {
	if u, err := url.Parse(target); err == nil && u.IsAbs() {
		return target
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return c.baseURL + target
}

// do sends one request with an optional JSON body. The caller owns the
// response body on success.
func (c *Client) do(ctx context.Context, method, target string, body interface{}) (*http.Response, *Failure) {
	if body == nil {
		return c.send(ctx, method, target, nil, "")
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, newFailure(KindEncode, method, c.Resolve(target), 0, fmt.Errorf("failed to marshal request body: %w", err))
	}
	return c.send(ctx, method, target, bytes.NewReader(data), "application/json")
}

func (c *Client) send(ctx context.Context, method, target string, body io.Reader, contentType string) (*http.Response, *Failure) {
	reqURL := c.Resolve(target)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, newFailure(KindTransport, method, reqURL, 0, fmt.Errorf("failed to create request: %w", err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newFailure(KindTransport, method, reqURL, 0, fmt.Errorf("request failed: %w", err))
	}

	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newFailure(KindStatus, method, reqURL, resp.StatusCode,
			fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(snippet))))
	}
	return resp, nil
}

func readText(method, reqURL string, resp *http.Response) Result[string] {
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed[string](newFailure(KindDecode, method, reqURL, 0, fmt.Errorf("read body: %w", err)))
	}
	return ok(string(data))
}

func (c *Client) textResult(ctx context.Context, method, target string, body interface{}) Result[string] {
	c.tracker.Begin()
	defer c.tracker.End()

	resp, fail := c.do(ctx, method, target, body)
	if fail != nil {
		return failed[string](fail)
	}
	return readText(method, c.Resolve(target), resp)
}

func (c *Client) jsonResult(ctx context.Context, method, target string, body interface{}) Result[interface{}] {
	c.tracker.Begin()
	defer c.tracker.End()

	resp, fail := c.do(ctx, method, target, body)
	if fail != nil {
		return failed[interface{}](fail)
	}
	defer func() { _ = resp.Body.Close() }()

	var v interface{}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return failed[interface{}](newFailure(KindDecode, method, c.Resolve(target), 0, fmt.Errorf("failed to decode response: %w", err)))
	}
	return ok(v)
}

// GreetingRequest is the body of POST /ajaxapi.
type GreetingRequest struct {
	Greeting string `json:"greeting"`
}

// MessageRequest is the body of POST /ajaxapi2.
type MessageRequest struct {
	MessageClient string `json:"messageClient"`
}

// GetText fetches /ajaxapi and returns the body as text.
func (c *Client) GetText(ctx context.Context) Result[string] {
	return c.textResult(ctx, http.MethodGet, PathAjax, nil)
}

// GetJSON fetches /ajaxapi and parses the body as JSON.
func (c *Client) GetJSON(ctx context.Context) Result[interface{}] {
	return c.jsonResult(ctx, http.MethodGet, PathAjax, nil)
}

// PostGreeting posts a greeting to /ajaxapi. The server answers "OK".
func (c *Client) PostGreeting(ctx context.Context, greeting string) Result[string] {
	return c.textResult(ctx, http.MethodPost, PathAjax, GreetingRequest{Greeting: greeting})
}

// PostMessage posts a client message to /ajaxapi2 and returns the JSON reply.
func (c *Client) PostMessage(ctx context.Context, message string) Result[interface{}] {
	return c.jsonResult(ctx, http.MethodPost, PathAjax2, MessageRequest{MessageClient: message})
}

// PostJSON posts body to target (a path or absolute URL) and parses the JSON reply.
func (c *Client) PostJSON(ctx context.Context, target string, body interface{}) Result[interface{}] {
	return c.jsonResult(ctx, http.MethodPost, target, body)
}

// PostExport posts an export request to target and parses the JSON reply.
func (c *Client) PostExport(ctx context.Context, target string, request map[string][]string) Result[interface{}] {
	return c.PostJSON(ctx, target, request)
}

// SubmitForm submits form values the way a browser submits a form: GET puts
// them in the query string, anything else sends them form-encoded. The
// returned text is the page the server answered with.
func (c *Client) SubmitForm(ctx context.Context, method, target string, values url.Values) Result[string] {
	c.tracker.Begin()
	defer c.tracker.End()

	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodGet
	}

	var (
		resp *http.Response
		fail *Failure
	)
	if method == http.MethodGet {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		if len(values) > 0 {
			target += sep + values.Encode()
		}
		resp, fail = c.send(ctx, method, target, nil, "")
	} else {
		resp, fail = c.send(ctx, method, target, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
	}
	if fail != nil {
		return failed[string](fail)
	}
	return readText(method, c.Resolve(target), resp)
}

// Get fetches target and returns the body as text.
func (c *Client) Get(ctx context.Context, target string) Result[string] {
	return c.textResult(ctx, http.MethodGet, target, nil)
}
