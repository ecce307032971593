// Package testutil provides an HTTP test double for the xmlparser server.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Request is a request received by the mock server.
type Request struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// MockServer routes requests by "METHOD path" and records what it receives.
type MockServer struct {
	server   *httptest.Server
	handlers map[string]http.HandlerFunc
	requests []Request
	mu       sync.RWMutex
}

// NewMockServer creates a new mock server. Unregistered routes answer 404.
func NewMockServer() *MockServer {
	ms := &MockServer{
		handlers: make(map[string]http.HandlerFunc),
	}

	ms.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		ms.mu.Lock()
		ms.requests = append(ms.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		handler, ok := ms.handlers[key]
		ms.mu.Unlock()

		if ok {
			r.Body = io.NopCloser(bytes.NewReader(body))
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return ms
}

// URL returns the server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts down the server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// Handle registers a custom handler for a method+path.
func (ms *MockServer) Handle(method, path string, handler http.HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers[method+" "+path] = handler
}

// HandleJSON registers a handler that returns JSON with the given status.
func (ms *MockServer) HandleJSON(method, path string, status int, response interface{}) {
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	})
}

// HandleText registers a handler that returns a plain text body.
func (ms *MockServer) HandleText(method, path string, status int, body string) {
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// HandleHTML registers a handler that returns an HTML page.
func (ms *MockServer) HandleHTML(method, path string, body string) {
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	})
}

// Requests returns a copy of the requests received so far, oldest first.
func (ms *MockServer) Requests() []Request {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]Request, len(ms.requests))
	copy(out, ms.requests)
	return out
}

// RequestsTo returns the recorded requests matching method and path.
func (ms *MockServer) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range ms.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Reset clears all registered handlers and recorded requests.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers = make(map[string]http.HandlerFunc)
	ms.requests = nil
}
