package qstash

import (
	"time"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
)

// ErrorKind identifies the variant of a classified error.
type ErrorKind = httpx.ErrorKind

// Error kinds.
const (
	KindUnknown              = httpx.KindUnknown
	KindInvalidCredential    = httpx.KindInvalidCredential
	KindInvalidBaseURL       = httpx.KindInvalidBaseURL
	KindInvalidRequestURL    = httpx.KindInvalidRequestURL
	KindRequestFailed        = httpx.KindRequestFailed
	KindResponseBodyParse    = httpx.KindResponseBodyParse
	KindStreamParse          = httpx.KindStreamParse
	KindDailyRateLimit       = httpx.KindDailyRateLimit
	KindBurstRateLimit       = httpx.KindBurstRateLimit
	KindChatRateLimit        = httpx.KindChatRateLimit
	KindUnspecifiedRateLimit = httpx.KindUnspecifiedRateLimit
)

// Error variants returned by the client.
type (
	APIError                  = httpx.APIError
	ClassifiedError           = httpx.ClassifiedError
	InvalidCredentialError    = httpx.InvalidCredentialError
	InvalidBaseURLError       = httpx.InvalidBaseURLError
	InvalidRequestURLError    = httpx.InvalidRequestURLError
	RequestFailedError        = httpx.RequestFailedError
	ResponseBodyParseError    = httpx.ResponseBodyParseError
	StreamParseError          = httpx.StreamParseError
	DailyRateLimitError       = httpx.DailyRateLimitError
	BurstRateLimitError       = httpx.BurstRateLimitError
	ChatRateLimitError        = httpx.ChatRateLimitError
	UnspecifiedRateLimitError = httpx.UnspecifiedRateLimitError
)

// KindOf returns the classified kind of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	return httpx.KindOf(err)
}

// IsRateLimitError returns true for any of the four throttling variants.
func IsRateLimitError(err error) bool {
	return httpx.IsRateLimitError(err)
}

// IsRequestFailed returns true for transport failures and non-2xx,
// non-429 responses.
func IsRequestFailed(err error) bool {
	return httpx.IsRequestFailed(err)
}

// IsNotFoundError returns true if the server answered 404.
func IsNotFoundError(err error) bool {
	return httpx.IsNotFoundError(err)
}

// IsStreamParseError returns true if a stream frame failed to decode.
func IsStreamParseError(err error) bool {
	return httpx.IsStreamParseError(err)
}

// AsAPIError extracts the underlying API error.
func AsAPIError(err error) (*APIError, bool) {
	return httpx.AsAPIError(err)
}

// ResetAfter returns how long to wait before the limit behind a rate-limit
// error resets, measured from now. ok is false when err is not a rate-limit
// error or carries no usable reset. The client never waits on its own.
func ResetAfter(err error, now time.Time) (time.Duration, bool) {
	return httpx.ResetDelay(err, now)
}
