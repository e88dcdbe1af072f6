// Package resources provides REST resource implementations for the QStash API.
package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
)

// Base provides common functionality for all resources.
type Base struct {
	transport *httpx.Transport
}

// NewBase creates a new Base resource.
func NewBase(transport *httpx.Transport) *Base {
	return &Base{transport: transport}
}

// Get performs a GET request.
func (b *Base) Get(ctx context.Context, path string, result any) error {
	return b.do(ctx, &httpx.Request{Method: http.MethodGet, Path: path}, result)
}

// GetWithQuery performs a GET request with query parameters.
func (b *Base) GetWithQuery(ctx context.Context, path string, query url.Values, result any) error {
	return b.do(ctx, &httpx.Request{Method: http.MethodGet, Path: path, Query: query}, result)
}

// Post performs a POST request with a JSON body. body may be nil.
func (b *Base) Post(ctx context.Context, path string, body any, result any) error {
	return b.do(ctx, &httpx.Request{Method: http.MethodPost, Path: path, Body: body}, result)
}

// PostRaw performs a POST request with a verbatim body and extra headers.
func (b *Base) PostRaw(ctx context.Context, path string, body []byte, headers http.Header, result any) error {
	if body == nil {
		body = []byte{}
	}
	return b.do(ctx, &httpx.Request{Method: http.MethodPost, Path: path, RawBody: body, Headers: headers}, result)
}

// Delete performs a DELETE request.
func (b *Base) Delete(ctx context.Context, path string) error {
	return b.do(ctx, &httpx.Request{Method: http.MethodDelete, Path: path}, nil)
}

// DeleteWithBody performs a DELETE request with a JSON body.
func (b *Base) DeleteWithBody(ctx context.Context, path string, body any, result any) error {
	return b.do(ctx, &httpx.Request{Method: http.MethodDelete, Path: path, Body: body}, result)
}

// Stream performs a POST request expecting an event stream and returns the
// unread response.
func (b *Base) Stream(ctx context.Context, path string, body any) (*http.Response, error) {
	return b.transport.Stream(ctx, &httpx.Request{Method: http.MethodPost, Path: path, Body: body})
}

func (b *Base) do(ctx context.Context, req *httpx.Request, result any) error {
	resp, err := b.transport.Do(ctx, req)
	if err != nil {
		return err
	}
	return decodeResponse(resp, result)
}

// decodeResponse decodes a response into the result if result is not nil.
func decodeResponse(resp *httpx.Response, result any) error {
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		return httpx.NewResponseBodyParseError(resp.Body, err)
	}
	return nil
}

// pathSegment escapes a user-supplied value for use as one path segment.
func pathSegment(name, value string) (string, error) {
	if value == "" {
		return "", httpx.NewInvalidRequestURLError(value, errEmptySegment(name))
	}
	seg, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
	if err != nil {
		return "", httpx.NewInvalidRequestURLError(value, err)
	}
	return seg, nil
}

// route joins a prefix with escaped segments, e.g. route("/v2/queues", name, "pause").
// Segments after the first are literal.
func route(prefix, name, value string, literal ...string) (string, error) {
	seg, err := pathSegment(name, value)
	if err != nil {
		return "", err
	}
	parts := append([]string{prefix, seg}, literal...)
	return strings.Join(parts, "/"), nil
}

// checkDestination validates a destination URL or name. Destinations are
// appended to routes verbatim, the way the API expects them.
func checkDestination(dest string) (string, error) {
	if strings.TrimSpace(dest) == "" {
		return "", httpx.NewInvalidRequestURLError(dest, errEmptySegment("destination"))
	}
	// A query or fragment on the destination belongs to the destination, not
	// to the API request.
	return destinationEscaper.Replace(dest), nil
}

var destinationEscaper = strings.NewReplacer("?", "%3F", "#", "%23")

// addQuery styles value as a form-exploded query parameter and merges it
// into q. Nil pointers and empty strings are skipped.
func addQuery(q url.Values, name string, value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case *string:
		if v == nil || *v == "" {
			return nil
		}
	case string:
		if v == "" {
			return nil
		}
	case *int:
		if v == nil {
			return nil
		}
	case *int64:
		if v == nil {
			return nil
		}
	}
	styled, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return httpx.NewInvalidRequestURLError(name, err)
	}
	parsed, err := url.ParseQuery(styled)
	if err != nil {
		return httpx.NewInvalidRequestURLError(styled, err)
	}
	for k, vs := range parsed {
		for _, s := range vs {
			q.Add(k, s)
		}
	}
	return nil
}

type errEmptySegment string

func (e errEmptySegment) Error() string {
	return string(e) + " must not be empty"
}
