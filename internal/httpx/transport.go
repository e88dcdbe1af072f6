// Package httpx provides the classified HTTP transport used by the QStash client.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qstash-sdk/qstash-go/internal/version"
)

// maxErrorBody caps how much of a non-2xx body is kept on the error.
const maxErrorBody = 64 << 10

// Transport sends authenticated requests and classifies every failure into
// one of the error variants in this package. It never retries. A Transport is
// safe for concurrent use.
type Transport struct {
	client       *http.Client
	streamClient *http.Client
	baseURL      *url.URL
	token        string
	userAgent    string
	headers      map[string]string
	logger       Logger
	metrics      *Metrics
}

// Logger is an interface for debug logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
}

// Config holds configuration for the transport.
type Config struct {
	BaseURL    string
	Token      string
	UserAgent  string
	Headers    map[string]string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     Logger
	Metrics    *Metrics
}

// NewTransport validates cfg and creates a Transport. An unusable token
// yields an InvalidCredentialError and an unusable base URL an
// InvalidBaseURLError; nothing is sent in either case.
func NewTransport(cfg Config) (*Transport, error) {
	if err := ValidateToken(cfg.Token); err != nil {
		return nil, err
	}
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = version.UserAgent()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	// Streams stay open for as long as the server keeps generating, so the
	// streaming client has no whole-request timeout. Cancellation goes through
	// the request context.
	streamClient := *client
	streamClient.Timeout = 0

	return &Transport{
		client:       client,
		streamClient: &streamClient,
		baseURL:      base,
		token:        cfg.Token,
		userAgent:    cfg.UserAgent,
		headers:      cfg.Headers,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
	}, nil
}

// ValidateToken checks that token can be sent as a bearer credential.
func ValidateToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return NewInvalidCredentialError("token is empty")
	}
	for i := 0; i < len(token); i++ {
		if b := token[i]; b != '\t' && (b < 0x20 || b == 0x7f) {
			return NewInvalidCredentialError("token contains control characters")
		}
	}
	return nil
}

// ParseBaseURL parses and normalises a base URL. Only absolute http and https
// URLs are accepted; a trailing slash is dropped.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return nil, NewInvalidBaseURLError(raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, NewInvalidBaseURLError(raw, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return nil, NewInvalidBaseURLError(raw, fmt.Errorf("missing host"))
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// BaseURL returns the normalised base URL.
func (t *Transport) BaseURL() string {
	return t.baseURL.String()
}

// Request describes one API call relative to the base URL.
type Request struct {
	Method string
	// Path is appended verbatim to the base URL. Callers escape user-supplied
	// segments themselves; destinations are passed through as full URLs.
	Path  string
	Query url.Values
	Body  any
	// RawBody, when set, is sent as-is and Body is ignored.
	RawBody []byte
	Headers http.Header
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// NewRequest builds an *http.Request for req. A URL that does not parse
// yields an InvalidRequestURLError before anything is sent.
func (t *Transport) NewRequest(ctx context.Context, req *Request) (*http.Request, error) {
	fullURL := t.baseURL.String() + req.Path
	u, err := url.Parse(fullURL)
	if err != nil {
		return nil, NewInvalidRequestURLError(fullURL, err)
	}
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var bodyReader io.Reader
	isJSON := false
	if req.RawBody != nil {
		bodyReader = bytes.NewReader(req.RawBody)
	} else if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, NewRequestFailedError(fmt.Errorf("failed to marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(bodyBytes)
		isJSON = true
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bodyReader)
	if err != nil {
		return nil, NewInvalidRequestURLError(fullURL, err)
	}

	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if isJSON {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}
	for k, vs := range req.Headers {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	return httpReq, nil
}

// Send attaches the bearer credential, dispatches req and classifies the
// outcome. A 2xx response is returned with its body unread; the caller must
// close it. Every other outcome is returned as a classified error and the
// body, if any, is already closed.
func (t *Transport) Send(req *http.Request) (*http.Response, error) {
	return t.send(t.client, req)
}

func (t *Transport) send(client *http.Client, req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	id := uuid.NewString()
	t.log("executing request", "id", id, "method", req.Method, "url", req.URL.Redacted())

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		t.metrics.ObserveRequest(req.Method, 0, time.Since(start))
		t.log("request failed", "id", id, "error", err)
		return nil, NewRequestFailedError(err)
	}
	t.metrics.ObserveRequest(req.Method, resp.StatusCode, time.Since(start))
	t.log("received response", "id", id, "status", resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	classified := ParseErrorFromResponse(resp.StatusCode, body, resp.Header)
	if resp.StatusCode == http.StatusTooManyRequests {
		kind := KindOf(classified)
		t.metrics.ObserveRateLimit(kind)
		t.log("rate limited", "id", id, "kind", kind.String())
	}
	return nil, classified
}

// Do builds, sends and fully reads a request.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := t.NewRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	httpResp, err := t.Send(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewRequestFailedError(fmt.Errorf("failed to read response body: %w", err))
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
	}, nil
}

// Stream sends req expecting a text/event-stream response and returns it
// unread. It uses a client without a whole-request timeout.
func (t *Transport) Stream(ctx context.Context, req *Request) (*http.Response, error) {
	httpReq, err := t.NewRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")
	return t.send(t.streamClient, httpReq)
}

// Metrics returns the transport's collectors, which may be nil.
func (t *Transport) Metrics() *Metrics {
	return t.metrics
}

// CloseIdleConnections closes idle keep-alive connections. The streaming
// client shares the same RoundTripper. Later requests dial again.
func (t *Transport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}

// log logs a debug message.
func (t *Transport) log(msg string, keysAndValues ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, keysAndValues...)
	}
}

// JSON decodes a response body into a new T. Any decode failure, including
// an empty body, is a ResponseBodyParseError.
func JSON[T any](resp *Response) (*T, error) {
	var result T
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, NewResponseBodyParseError(resp.Body, err)
	}
	return &result, nil
}
