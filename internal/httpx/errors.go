package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind identifies which classified failure a call produced. Every error
// returned by the transport or the stream decoder maps to exactly one kind.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidCredential
	KindInvalidBaseURL
	KindInvalidRequestURL
	KindRequestFailed
	KindResponseBodyParse
	KindStreamParse
	KindDailyRateLimit
	KindBurstRateLimit
	KindChatRateLimit
	KindUnspecifiedRateLimit
)

var kindCodes = map[ErrorKind]string{
	KindUnknown:              "unknown",
	KindInvalidCredential:    "invalid_credential",
	KindInvalidBaseURL:       "invalid_base_url",
	KindInvalidRequestURL:    "invalid_request_url",
	KindRequestFailed:        "request_failed",
	KindResponseBodyParse:    "response_body_parse_failed",
	KindStreamParse:          "response_stream_parse_failed",
	KindDailyRateLimit:       "daily_rate_limit_exceeded",
	KindBurstRateLimit:       "burst_rate_limit_exceeded",
	KindChatRateLimit:        "chat_rate_limit_exceeded",
	KindUnspecifiedRateLimit: "unspecified_rate_limit_exceeded",
}

// String returns the snake_case code for the kind.
func (k ErrorKind) String() string {
	if s, ok := kindCodes[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsRateLimit reports whether k is one of the throttling kinds.
func (k ErrorKind) IsRateLimit() bool {
	switch k {
	case KindDailyRateLimit, KindBurstRateLimit, KindChatRateLimit, KindUnspecifiedRateLimit:
		return true
	}
	return false
}

// ClassifiedError is implemented by every error variant in this package.
type ClassifiedError interface {
	error
	Kind() ErrorKind
}

// APIError is the base error type embedded by all classified variants.
type APIError struct {
	StatusCode int    `json:"status_code,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	RawBody    []byte `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode == 0 {
		if msg == "" {
			return e.Code
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg != "" {
		if e.Code != "" {
			return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, msg)
		}
		return fmt.Sprintf("[%d] %s", e.StatusCode, msg)
	}
	if e.Code != "" {
		return fmt.Sprintf("[%d] %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("[%d] unknown error", e.StatusCode)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// InvalidCredentialError means the configured token cannot be sent.
type InvalidCredentialError struct{ *APIError }

// Unwrap returns the underlying API error.
func (e *InvalidCredentialError) Unwrap() error { return e.APIError }

// Kind implements ClassifiedError.
func (e *InvalidCredentialError) Kind() ErrorKind { return KindInvalidCredential }

// InvalidBaseURLError means the configured base URL could not be parsed.
type InvalidBaseURLError struct {
	*APIError
	URL string
}

// Unwrap returns the underlying API error.
func (e *InvalidBaseURLError) Unwrap() error { return e.APIError }

// Kind implements ClassifiedError.
func (e *InvalidBaseURLError) Kind() ErrorKind { return KindInvalidBaseURL }

// InvalidRequestURLError means a request URL could not be built from the base
// URL and a route. No request is sent.
type InvalidRequestURLError struct {
	*APIError
	URL string
}

// Unwrap returns the underlying API error.
func (e *InvalidRequestURLError) Unwrap() error { return e.APIError }

// Kind implements ClassifiedError.
func (e *InvalidRequestURLError) Kind() ErrorKind { return KindInvalidRequestURL }

// RequestFailedError covers transport failures (StatusCode is 0) and every
// non-2xx response other than 429.
type RequestFailedError struct{ *APIError }

// Unwrap returns the underlying API error.
func (e *RequestFailedError) Unwrap() error { return e.APIError }

// Kind implements ClassifiedError.
func (e *RequestFailedError) Kind() ErrorKind { return KindRequestFailed }

// Timeout reports whether the failure was a deadline or client timeout.
func (e *RequestFailedError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ResponseBodyParseError means a 2xx body did not decode into the expected type.
type ResponseBodyParseError struct{ *APIError }

// Unwrap returns the underlying API error.
func (e *ResponseBodyParseError) Unwrap() error { return e.APIError }

// Kind implements ClassifiedError.
func (e *ResponseBodyParseError) Kind() ErrorKind { return KindResponseBodyParse }

// StreamParseError means a complete SSE frame carried a payload that did not
// decode. Frame holds the offending payload.
type StreamParseError struct {
	*APIError
	Frame string
}

// Unwrap returns the underlying API error.
func (e *StreamParseError) Unwrap() error { return e.APIError }

// Kind implements ClassifiedError.
func (e *StreamParseError) Kind() ErrorKind { return KindStreamParse }

// DailyRateLimitError is returned for a 429 carrying RateLimit-* headers.
type DailyRateLimitError struct {
	*APIError
	Reset uint64
}

// Unwrap returns the underlying API error.
func (e *DailyRateLimitError) Unwrap() error { return e.APIError }

// Kind implements ClassifiedError.
func (e *DailyRateLimitError) Kind() ErrorKind { return KindDailyRateLimit }

// BurstRateLimitError is returned for a 429 carrying Burst-RateLimit-* headers.
type BurstRateLimitError struct {
	*APIError
	Reset uint64
}

// Unwrap returns the underlying API error.
func (e *BurstRateLimitError) Unwrap() error { return e.APIError }

// Kind implements ClassifiedError.
func (e *BurstRateLimitError) Kind() ErrorKind { return KindBurstRateLimit }

// ChatRateLimitError is returned for a 429 carrying x-ratelimit-* headers.
type ChatRateLimitError struct {
	*APIError
	ResetRequests uint64
	ResetTokens   uint64
}

// Unwrap returns the underlying API error.
func (e *ChatRateLimitError) Unwrap() error { return e.APIError }

// Kind implements ClassifiedError.
func (e *ChatRateLimitError) Kind() ErrorKind { return KindChatRateLimit }

// UnspecifiedRateLimitError is returned for a 429 with no recognised headers.
type UnspecifiedRateLimitError struct{ *APIError }

// Unwrap returns the underlying API error.
func (e *UnspecifiedRateLimitError) Unwrap() error { return e.APIError }

// Kind implements ClassifiedError.
func (e *UnspecifiedRateLimitError) Kind() ErrorKind { return KindUnspecifiedRateLimit }

// NewInvalidCredentialError creates an invalid credential error.
func NewInvalidCredentialError(reason string) *InvalidCredentialError {
	return &InvalidCredentialError{APIError: &APIError{
		Code:    KindInvalidCredential.String(),
		Message: reason,
	}}
}

// NewInvalidBaseURLError creates an invalid base URL error.
func NewInvalidBaseURLError(rawURL string, err error) *InvalidBaseURLError {
	return &InvalidBaseURLError{
		APIError: &APIError{
			Code:    KindInvalidBaseURL.String(),
			Message: fmt.Sprintf("invalid base URL %q", rawURL),
			Err:     err,
		},
		URL: rawURL,
	}
}

// NewInvalidRequestURLError creates an invalid request URL error.
func NewInvalidRequestURLError(rawURL string, err error) *InvalidRequestURLError {
	return &InvalidRequestURLError{
		APIError: &APIError{
			Code:    KindInvalidRequestURL.String(),
			Message: fmt.Sprintf("invalid request URL %q", rawURL),
			Err:     err,
		},
		URL: rawURL,
	}
}

// NewRequestFailedError wraps a transport-level failure.
func NewRequestFailedError(err error) *RequestFailedError {
	return &RequestFailedError{APIError: &APIError{
		Code:    KindRequestFailed.String(),
		Message: err.Error(),
		Err:     err,
	}}
}

// NewResponseBodyParseError creates a body decode error.
func NewResponseBodyParseError(body []byte, err error) *ResponseBodyParseError {
	return &ResponseBodyParseError{APIError: &APIError{
		Code:    KindResponseBodyParse.String(),
		Message: fmt.Sprintf("failed to parse response body: %v", err),
		RawBody: body,
		Err:     err,
	}}
}

// NewStreamParseError creates a stream frame decode error.
func NewStreamParseError(frame string, err error) *StreamParseError {
	return &StreamParseError{
		APIError: &APIError{
			Code:    KindStreamParse.String(),
			Message: fmt.Sprintf("failed to parse stream frame: %v", err),
			Err:     err,
		},
		Frame: frame,
	}
}

// ParseErrorFromResponse classifies a non-2xx response. A 429 goes through
// the rate-limit rules; everything else is a RequestFailedError.
func ParseErrorFromResponse(statusCode int, body []byte, headers http.Header) error {
	baseErr := &APIError{
		StatusCode: statusCode,
		RequestID:  headers.Get("Upstash-Request-Id"),
		RawBody:    body,
	}

	if statusCode == http.StatusTooManyRequests {
		return classifyRateLimit(baseErr, headers)
	}

	baseErr.Code = KindRequestFailed.String()
	if len(body) > 0 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil {
			baseErr.Message = apiErr.Error
			if baseErr.Message == "" {
				baseErr.Message = apiErr.Message
			}
		}
	}
	if baseErr.Message == "" {
		baseErr.Message = http.StatusText(statusCode)
	}
	return &RequestFailedError{APIError: baseErr}
}

// KindOf returns the classified kind of err, or KindUnknown for errors that
// did not originate in this package.
func KindOf(err error) ErrorKind {
	var ce ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind()
	}
	return KindUnknown
}

// IsRateLimitError returns true for any of the four throttling variants.
func IsRateLimitError(err error) bool {
	return KindOf(err).IsRateLimit()
}

// IsRequestFailed returns true if the error is a RequestFailedError.
func IsRequestFailed(err error) bool {
	var reqErr *RequestFailedError
	return errors.As(err, &reqErr)
}

// IsNotFoundError returns true if the server answered 404.
func IsNotFoundError(err error) bool {
	var reqErr *RequestFailedError
	return errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound
}

// IsStreamParseError returns true if a stream frame failed to decode.
func IsStreamParseError(err error) bool {
	var parseErr *StreamParseError
	return errors.As(err, &parseErr)
}

// AsAPIError extracts the underlying API error.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
