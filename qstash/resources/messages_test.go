package resources

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
	"github.com/qstash-sdk/qstash-go/internal/testutil"
)

const publishPath = "/v2/publish/https://example.com/publish"

func TestMessages_PublishSingle(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodPost, publishPath, http.StatusOK, map[string]any{
		"messageId": "msg123",
		"url":       "https://example.com/publish",
	})

	r := NewMessagesResource(newTestTransport(t, ms))
	got, err := r.Publish(context.Background(), "https://example.com/publish", []byte(`{"key":"value"}`), &PublishOptions{
		Headers: http.Header{"Content-Type": {"application/json"}},
	})
	require.NoError(t, err)
	assert.Equal(t, PublishResult{{MessageID: "msg123", URL: "https://example.com/publish"}}, got)

	ms.AssertLastRequest(t, http.MethodPost, publishPath)
	ms.AssertLastRequestHeader(t, "Authorization", "Bearer "+testToken)
	ms.AssertLastRequestHeader(t, "Content-Type", "application/json")
	assert.Equal(t, `{"key":"value"}`, string(ms.LastRequest().Body))
}

func TestMessages_PublishURLGroup(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodPost, "/v2/publish/my-group", http.StatusOK, []map[string]any{
		{"messageId": "msg123", "url": "https://example.com/1"},
		{"messageId": "msg124", "url": "https://example.com/2", "deduplicated": true},
	})

	r := NewMessagesResource(newTestTransport(t, ms))
	got, err := r.Publish(context.Background(), "my-group", nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "msg124", got[1].MessageID)
	assert.True(t, got[1].Deduplicated)
}

func TestMessages_PublishOptionsHeaders(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodPost, publishPath, http.StatusOK, map[string]any{"messageId": "m"})

	opts := &PublishOptions{
		ForwardHeaders:            map[string]string{"X-Tenant": "acme"},
		Method:                    http.MethodPut,
		Delay:                     90 * time.Second,
		NotBefore:                 time.Unix(1700000000, 0),
		Retries:                   ptr(3),
		Callback:                  "https://example.com/cb",
		FailureCallback:           "https://example.com/fail",
		Timeout:                   30 * time.Second,
		DeduplicationID:           "dedup-1",
		ContentBasedDeduplication: true,
	}
	_, err := NewMessagesResource(newTestTransport(t, ms)).Publish(context.Background(), "https://example.com/publish", []byte("x"), opts)
	require.NoError(t, err)

	for k, v := range map[string]string{
		"Upstash-Forward-X-Tenant":            "acme",
		"Upstash-Method":                      "PUT",
		"Upstash-Delay":                       "90s",
		"Upstash-Not-Before":                  "1700000000",
		"Upstash-Retries":                     "3",
		"Upstash-Callback":                    "https://example.com/cb",
		"Upstash-Failure-Callback":            "https://example.com/fail",
		"Upstash-Timeout":                     "30s",
		"Upstash-Deduplication-Id":            "dedup-1",
		"Upstash-Content-Based-Deduplication": "true",
	} {
		ms.AssertLastRequestHeader(t, k, v)
	}
}

func TestMessages_PublishJSON(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodPost, publishPath, http.StatusOK, map[string]any{"messageId": "m"})

	opts := &PublishOptions{Method: http.MethodPost}
	_, err := NewMessagesResource(newTestTransport(t, ms)).PublishJSON(context.Background(), "https://example.com/publish", map[string]int{"n": 1}, opts)
	require.NoError(t, err)

	ms.AssertLastRequestHeader(t, "Content-Type", "application/json")
	assert.JSONEq(t, `{"n":1}`, string(ms.LastRequest().Body))
	assert.Nil(t, opts.Headers, "caller options must not be modified")
}

func TestMessages_PublishRateLimited(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleRateLimit(http.MethodPost, publishPath, map[string]string{
		"RateLimit-Limit": "1000",
		"RateLimit-Reset": "1625097600",
	})

	_, err := NewMessagesResource(newTestTransport(t, ms)).Publish(context.Background(), "https://example.com/publish", nil, nil)
	var daily *httpx.DailyRateLimitError
	require.ErrorAs(t, err, &daily)
	assert.Equal(t, uint64(1625097600), daily.Reset)
}

func TestMessages_PublishInvalidJSON(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleRaw(http.MethodPost, publishPath, http.StatusOK, "Invalid JSON")

	_, err := NewMessagesResource(newTestTransport(t, ms)).Publish(context.Background(), "https://example.com/publish", nil, nil)
	assert.Equal(t, httpx.KindResponseBodyParse, httpx.KindOf(err))
}

func TestMessages_Enqueue(t *testing.T) {
	ms := testutil.NewMockServer(t)
	path := "/v2/enqueue/my queue/https://example.com/publish"
	ms.HandleJSON(http.MethodPost, path, http.StatusOK, map[string]any{"messageId": "msg1"})

	got, err := NewMessagesResource(newTestTransport(t, ms)).Enqueue(context.Background(), "my queue", "https://example.com/publish", []byte("hi"), nil)
	require.NoError(t, err)
	assert.Equal(t, "msg1", got[0].MessageID)
	ms.AssertLastRequest(t, http.MethodPost, path)
}

func TestMessages_Batch(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleRaw(http.MethodPost, "/v2/batch", http.StatusOK,
		`[{"messageId":"a"},[{"messageId":"b1"},{"messageId":"b2"}]]`)

	entries := []BatchEntry{
		{Destination: "https://example.com/a", Body: "one"},
		{Destination: "group", Queue: "q", Headers: map[string]string{"Upstash-Delay": "10s"}},
	}
	got, err := NewMessagesResource(newTestTransport(t, ms)).Batch(context.Background(), entries)
	require.NoError(t, err)
	assert.Nil(t, entries[0].Headers, "caller entries are left untouched")
	require.Len(t, got, 2)
	assert.Len(t, got[0], 1)
	assert.Len(t, got[1], 2)

	var sent []map[string]any
	ms.ParseLastRequestBody(t, &sent)
	require.Len(t, sent, 2)
	assert.Equal(t, map[string]any{}, sent[0]["headers"])
	assert.Equal(t, "q", sent[1]["queue"])
	assert.NotContains(t, sent[0], "queue")
}

func TestMessages_GetCancel(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodGet, "/v2/messages/msg_1", http.StatusOK, map[string]any{
		"messageId": "msg_1",
		"url":       "https://example.com",
		"method":    "POST",
		"header":    map[string][]string{"Content-Type": {"text/plain"}},
		"body":      "hello",
		"createdAt": 1700000000000,
	})
	ms.HandleRaw(http.MethodDelete, "/v2/messages/msg_1", http.StatusAccepted, "")

	r := NewMessagesResource(newTestTransport(t, ms))
	msg, err := r.Get(context.Background(), "msg_1")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Body)
	assert.Equal(t, []string{"text/plain"}, msg.Header["Content-Type"])

	require.NoError(t, r.Cancel(context.Background(), "msg_1"))
	ms.AssertLastRequest(t, http.MethodDelete, "/v2/messages/msg_1")
}

func TestMessages_GetNotFound(t *testing.T) {
	ms := testutil.NewMockServer(t)

	_, err := NewMessagesResource(newTestTransport(t, ms)).Get(context.Background(), "missing")
	assert.True(t, httpx.IsNotFoundError(err))
}

func TestMessages_CancelMany(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodDelete, "/v2/messages", http.StatusOK, map[string]any{"cancelled": 2})

	got, err := NewMessagesResource(newTestTransport(t, ms)).CancelMany(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Cancelled)

	var sent map[string][]string
	ms.ParseLastRequestBody(t, &sent)
	assert.Equal(t, []string{"a", "b"}, sent["messageIds"])
}
