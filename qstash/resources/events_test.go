package resources

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
	"github.com/qstash-sdk/qstash-go/internal/testutil"
)

func TestEvents_List(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodGet, "/v2/events", http.StatusOK, map[string]any{
		"cursor": "next_page_cursor",
		"events": []map[string]any{{
			"time":             1645564800000,
			"messageId":        "msg_123",
			"header":           map[string][]string{"X-Custom": {"value1", "value2"}},
			"body":             "SGVsbG8gV29ybGQ=",
			"state":            "DELIVERED",
			"nextDeliveryTime": 1645564900000,
			"url":              "https://example.com",
			"topicName":        "notifications",
			"scheduleId":       "sched1",
			"queueName":        "queue1",
		}},
	})

	state := EventStateDelivered
	got, err := NewEventsResource(newTestTransport(t, ms)).List(context.Background(), &ListEventsParams{
		Cursor:     ptr("next_page"),
		MessageID:  ptr("msg123"),
		State:      &state,
		URL:        ptr("http://example.com"),
		TopicName:  ptr("topic1"),
		ScheduleID: ptr("sched1"),
		QueueName:  ptr("queue1"),
		FromDate:   ptr(int64(1234567890)),
		ToDate:     ptr(int64(1234567899)),
		Count:      ptr(100),
		Order:      ptr("desc"),
	})
	require.NoError(t, err)

	assert.Equal(t, "next_page_cursor", got.Cursor)
	require.Len(t, got.Events, 1)
	ev := got.Events[0]
	assert.Equal(t, []byte("Hello World"), ev.Body)
	assert.Equal(t, EventStateDelivered, ev.State)
	assert.Equal(t, []string{"value1", "value2"}, ev.Header["X-Custom"])
	assert.Equal(t, int64(1645564900000), ev.NextDeliveryTime)

	assert.Equal(t, url.Values{
		"cursor":     {"next_page"},
		"messageId":  {"msg123"},
		"state":      {"DELIVERED"},
		"url":        {"http://example.com"},
		"topicName":  {"topic1"},
		"scheduleId": {"sched1"},
		"queueName":  {"queue1"},
		"fromDate":   {"1234567890"},
		"toDate":     {"1234567899"},
		"count":      {"100"},
		"order":      {"desc"},
	}, ms.LastRequest().Query)
}

func TestEvents_ListNoParams(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodGet, "/v2/events", http.StatusOK, map[string]any{"events": []any{}})

	got, err := NewEventsResource(newTestTransport(t, ms)).List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got.Cursor)
	assert.Empty(t, ms.LastRequest().Query)
}

func TestEvents_ListInvalidResponse(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleRaw(http.MethodGet, "/v2/events", http.StatusOK, "Invalid JSON")

	_, err := NewEventsResource(newTestTransport(t, ms)).List(context.Background(), nil)
	assert.Equal(t, httpx.KindResponseBodyParse, httpx.KindOf(err))
}

func TestDLQ(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodGet, "/v2/dlq", http.StatusOK, map[string]any{
		"cursor": "c2",
		"messages": []map[string]any{{
			"dlqId":          "dlq_1",
			"messageId":      "msg_1",
			"url":            "https://example.com",
			"responseStatus": 500,
			"responseBody":   "boom",
		}},
	})
	ms.HandleJSON(http.MethodGet, "/v2/dlq/dlq_1", http.StatusOK, map[string]any{"dlqId": "dlq_1", "messageId": "msg_1"})
	ms.HandleRaw(http.MethodDelete, "/v2/dlq/dlq_1", http.StatusOK, "")
	ms.HandleJSON(http.MethodDelete, "/v2/dlq", http.StatusOK, map[string]int{"deleted": 2})

	ctx := context.Background()
	r := NewDLQResource(newTestTransport(t, ms))

	page, err := r.List(ctx, &ListDLQParams{Cursor: ptr("c1"), Count: ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, "c2", page.Cursor)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "msg_1", page.Messages[0].MessageID)
	assert.Equal(t, 500, page.Messages[0].ResponseStatus)
	assert.Equal(t, url.Values{"cursor": {"c1"}, "count": {"10"}}, ms.LastRequest().Query)

	msg, err := r.Get(ctx, "dlq_1")
	require.NoError(t, err)
	assert.Equal(t, "dlq_1", msg.DLQID)

	require.NoError(t, r.Delete(ctx, "dlq_1"))
	ms.AssertLastRequest(t, http.MethodDelete, "/v2/dlq/dlq_1")

	deleted, err := r.DeleteMany(ctx, []string{"dlq_1", "dlq_2"})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted.Deleted)
	var sent map[string][]string
	ms.ParseLastRequestBody(t, &sent)
	assert.Equal(t, []string{"dlq_1", "dlq_2"}, sent["dlqIds"])
}
