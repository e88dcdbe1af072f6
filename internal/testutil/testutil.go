// Package testutil provides an httptest-backed QStash API double.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// MockServer is a test HTTP server for mocking API responses. Handlers are
// keyed by method and exact path; the path is not cleaned, so destinations
// embedded in routes (/v2/publish/https://...) match verbatim.
type MockServer struct {
	*httptest.Server
	mu       sync.Mutex
	handlers map[string]map[string]http.HandlerFunc
	requests []RecordedRequest
}

// RecordedRequest represents a recorded HTTP request.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

// NewMockServer creates a new mock server that is closed when t ends.
func NewMockServer(t *testing.T) *MockServer {
	t.Helper()

	ms := &MockServer{
		handlers: make(map[string]map[string]http.HandlerFunc),
	}

	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()

		ms.mu.Lock()
		ms.requests = append(ms.requests, RecordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.Query(),
			Headers: r.Header.Clone(),
			Body:    body,
		})
		handler := ms.handlers[r.URL.Path][r.Method]
		ms.mu.Unlock()

		if handler == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":"not found"}`)
			return
		}
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		handler(w, r)
	}))

	t.Cleanup(ms.Close)
	return ms
}

// Handle registers a handler for a specific method and path.
func (ms *MockServer) Handle(method, path string, handler http.HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.handlers[path] == nil {
		ms.handlers[path] = make(map[string]http.HandlerFunc)
	}
	ms.handlers[path][method] = handler
}

// HandleJSON registers a handler that returns a JSON response.
func (ms *MockServer) HandleJSON(method, path string, statusCode int, response any) {
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if response != nil {
			json.NewEncoder(w).Encode(response)
		}
	})
}

// HandleRaw registers a handler that writes body verbatim.
func (ms *MockServer) HandleRaw(method, path string, statusCode int, body string) {
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		io.WriteString(w, body)
	})
}

// HandleError registers a handler that returns an API error body.
func (ms *MockServer) HandleError(method, path string, statusCode int, message string) {
	ms.HandleJSON(method, path, statusCode, map[string]any{"error": message})
}

// HandleRateLimit registers a handler that answers 429 with the given headers.
func (ms *MockServer) HandleRateLimit(method, path string, headers map[string]string) {
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":"rate limit exceeded"}`)
	})
}

// HandleSSE registers a handler that streams frames as an event stream,
// flushing after each one. Frames are written as given, so callers include
// their own delimiters.
func (ms *MockServer) HandleSSE(method, path string, frames ...string) {
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, f := range frames {
			io.WriteString(w, f)
			if flusher != nil {
				flusher.Flush()
			}
		}
	})
}

// GetRequests returns all recorded requests.
func (ms *MockServer) GetRequests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]RecordedRequest{}, ms.requests...)
}

// LastRequest returns the last recorded request.
func (ms *MockServer) LastRequest() *RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return nil
	}
	req := ms.requests[len(ms.requests)-1]
	return &req
}

// AssertRequestCount asserts that a specific number of requests were made.
func (ms *MockServer) AssertRequestCount(t *testing.T, expected int) {
	t.Helper()
	ms.mu.Lock()
	actual := len(ms.requests)
	ms.mu.Unlock()

	if actual != expected {
		t.Errorf("expected %d requests, got %d", expected, actual)
	}
}

// AssertLastRequest asserts the method and path of the last request.
func (ms *MockServer) AssertLastRequest(t *testing.T, method, path string) {
	t.Helper()
	req := ms.LastRequest()
	if req == nil {
		t.Error("no requests recorded")
		return
	}
	if req.Method != method || req.Path != path {
		t.Errorf("expected %s %s, got %s %s", method, path, req.Method, req.Path)
	}
}

// AssertLastRequestHeader asserts a header of the last request.
func (ms *MockServer) AssertLastRequestHeader(t *testing.T, key, expected string) {
	t.Helper()
	req := ms.LastRequest()
	if req == nil {
		t.Error("no requests recorded")
		return
	}
	if actual := req.Headers.Get(key); actual != expected {
		t.Errorf("expected header %s=%s, got %s", key, expected, actual)
	}
}

// ParseLastRequestBody parses the body of the last request as JSON.
func (ms *MockServer) ParseLastRequestBody(t *testing.T, v any) {
	t.Helper()
	req := ms.LastRequest()
	if req == nil {
		t.Error("no requests recorded")
		return
	}
	if err := json.Unmarshal(req.Body, v); err != nil {
		t.Errorf("failed to parse request body: %v", err)
	}
}
