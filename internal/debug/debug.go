// Package debug provides an HTTP transport that traces every request the
// network client issues.
package debug

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	maxRequestBody  = 500
	maxResponseBody = 1000
)

type contextKey struct{}

// WithDebug injects the debug flag into the context
func WithDebug(ctx context.Context, debug bool) context.Context {
	return context.WithValue(ctx, contextKey{}, debug)
}

// IsDebug returns true if debug mode is enabled in the context
func IsDebug(ctx context.Context) bool {
	if v, ok := ctx.Value(contextKey{}).(bool); ok {
		return v
	}
	return false
}

// Transport wraps http.RoundTripper and writes a trace of each exchange.
type Transport struct {
	Base   http.RoundTripper
	Output io.Writer
}

// NewTransport creates a Transport. A nil base uses http.DefaultTransport and
// a nil output writes to os.Stderr.
func NewTransport(base http.RoundTripper, output io.Writer) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if output == nil {
		output = os.Stderr
	}
	return &Transport{Base: base, Output: output}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	_, _ = fmt.Fprintf(t.Output, "\n--> %s %s\n", req.Method, req.URL)
	writeHeaders(t.Output, req.Header)

	if req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			_, _ = fmt.Fprintf(t.Output, "    [ERROR reading request body: %v]\n", err)
		} else {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			writeBody(t.Output, bodyBytes, maxRequestBody)
		}
	}

	resp, err := t.Base.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		_, _ = fmt.Fprintf(t.Output, "<-- ERROR: %v (%s)\n\n", err, duration)
		return resp, err
	}

	_, _ = fmt.Fprintf(t.Output, "<-- %s (%s)\n", resp.Status, duration)
	writeHeaders(t.Output, resp.Header)

	if resp.Body != nil {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			_, _ = fmt.Fprintf(t.Output, "    [ERROR reading response body: %v]\n\n", err)
		} else {
			resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			writeBody(t.Output, bodyBytes, maxResponseBody)
		}
	}

	_, _ = fmt.Fprintln(t.Output)
	return resp, nil
}

// writeHeaders prints headers, hiding session cookie values.
func writeHeaders(w io.Writer, h http.Header) {
	for key, values := range h {
		val := strings.Join(values, ", ")
		switch http.CanonicalHeaderKey(key) {
		case "Cookie", "Set-Cookie":
			val = redactCookies(values)
		}
		_, _ = fmt.Fprintf(w, "    %s: %s\n", key, val)
	}
}

func redactCookies(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		name, _, found := strings.Cut(v, "=")
		if !found {
			out = append(out, v)
			continue
		}
		out = append(out, name+"=[redacted]")
	}
	return strings.Join(out, ", ")
}

func writeBody(w io.Writer, body []byte, limit int) {
	if len(body) == 0 {
		return
	}
	s := string(body)
	if len(s) > limit {
		s = s[:limit] + "... [truncated]"
	}
	_, _ = fmt.Fprintf(w, "    Body: %s\n", s)
}
