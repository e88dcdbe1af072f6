package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Rate-limit header names, as sent by the server.
const (
	HeaderRateLimitLimit      = "RateLimit-Limit"
	HeaderRateLimitReset      = "RateLimit-Reset"
	HeaderBurstRateLimitLimit = "Burst-RateLimit-Limit"
	HeaderBurstRateLimitReset = "Burst-RateLimit-Reset"
	HeaderChatLimitRequests   = "x-ratelimit-limit-requests"
	HeaderChatResetRequests   = "x-ratelimit-reset-requests"
	HeaderChatResetTokens     = "x-ratelimit-reset-tokens"
)

// rateLimitRule maps a marker header to its error variant.
type rateLimitRule struct {
	marker string
	build  func(base *APIError, h http.Header) error
}

// rateLimitRules is evaluated in order; the first rule whose marker header is
// present wins. A 429 matching none of them is unspecified.
var rateLimitRules = []rateLimitRule{
	{
		marker: HeaderRateLimitLimit,
		build: func(base *APIError, h http.Header) error {
			reset := parseReset(h, HeaderRateLimitReset)
			base.Code = KindDailyRateLimit.String()
			base.Message = fmt.Sprintf("daily rate limit exceeded, retry after %d", reset)
			return &DailyRateLimitError{APIError: base, Reset: reset}
		},
	},
	{
		marker: HeaderBurstRateLimitLimit,
		build: func(base *APIError, h http.Header) error {
			reset := parseReset(h, HeaderBurstRateLimitReset)
			base.Code = KindBurstRateLimit.String()
			base.Message = fmt.Sprintf("burst rate limit exceeded, retry after %d", reset)
			return &BurstRateLimitError{APIError: base, Reset: reset}
		},
	},
	{
		marker: HeaderChatLimitRequests,
		build: func(base *APIError, h http.Header) error {
			requests := parseReset(h, HeaderChatResetRequests)
			tokens := parseReset(h, HeaderChatResetTokens)
			base.Code = KindChatRateLimit.String()
			base.Message = fmt.Sprintf("chat rate limit exceeded, requests reset after %d, tokens reset after %d", requests, tokens)
			return &ChatRateLimitError{APIError: base, ResetRequests: requests, ResetTokens: tokens}
		},
	},
}

// classifyRateLimit turns a 429 into one of the four throttling variants.
func classifyRateLimit(base *APIError, h http.Header) error {
	for _, rule := range rateLimitRules {
		if _, ok := h[http.CanonicalHeaderKey(rule.marker)]; ok {
			return rule.build(base, h)
		}
	}
	base.Code = KindUnspecifiedRateLimit.String()
	base.Message = "rate limit exceeded, but no details provided"
	return &UnspecifiedRateLimitError{APIError: base}
}

// parseReset reads an unsigned integer header. Missing or malformed values
// yield 0.
func parseReset(h http.Header, name string) uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(h.Get(name)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// epochThreshold separates absolute Unix timestamps from relative second
// counts in reset headers (2001-09-09).
const epochThreshold = 1_000_000_000

// ResetDelay returns how long the caller should wait before the limit behind
// err resets. Reset values past epochThreshold are treated as Unix
// timestamps, smaller ones as seconds from now. For chat limits the larger of
// the two resets is used. ok is false when err is not a rate-limit error or
// carries no reset information. Nothing is retried on the caller's behalf.
func ResetDelay(err error, now time.Time) (delay time.Duration, ok bool) {
	var ce ClassifiedError
	if !errors.As(err, &ce) {
		return 0, false
	}
	var reset uint64
	switch e := ce.(type) {
	case *DailyRateLimitError:
		reset = e.Reset
	case *BurstRateLimitError:
		reset = e.Reset
	case *ChatRateLimitError:
		reset = max(e.ResetRequests, e.ResetTokens)
	default:
		return 0, false
	}
	if reset == 0 {
		return 0, false
	}
	if reset >= epochThreshold {
		d := time.Unix(int64(reset), 0).Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return time.Duration(reset) * time.Second, true
}
