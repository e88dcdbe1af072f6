package resources

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
	"github.com/qstash-sdk/qstash-go/internal/testutil"
)

func TestQueues_Lifecycle(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleRaw(http.MethodPost, "/v2/queues/", http.StatusOK, "")
	ms.HandleJSON(http.MethodGet, "/v2/queues", http.StatusOK, []map[string]any{
		{"name": "orders", "parallelism": 2, "lag": 5, "createdAt": 1, "updatedAt": 2},
	})
	ms.HandleJSON(http.MethodGet, "/v2/queues/orders", http.StatusOK, map[string]any{
		"name": "orders", "parallelism": 2, "lag": 5, "paused": true,
	})
	ms.HandleRaw(http.MethodPost, "/v2/queues/orders/pause", http.StatusOK, "")
	ms.HandleRaw(http.MethodPost, "/v2/queues/orders/resume", http.StatusOK, "")
	ms.HandleRaw(http.MethodDelete, "/v2/queues/orders", http.StatusOK, "")

	ctx := context.Background()
	r := NewQueuesResource(newTestTransport(t, ms))

	require.NoError(t, r.Upsert(ctx, &UpsertQueueRequest{QueueName: "orders", Parallelism: 2}))
	var sent map[string]any
	ms.ParseLastRequestBody(t, &sent)
	assert.Equal(t, map[string]any{"queueName": "orders", "parallelism": float64(2)}, sent)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Lag)

	q, err := r.Get(ctx, "orders")
	require.NoError(t, err)
	assert.True(t, q.Paused)

	require.NoError(t, r.Pause(ctx, "orders"))
	ms.AssertLastRequest(t, http.MethodPost, "/v2/queues/orders/pause")
	require.NoError(t, r.Resume(ctx, "orders"))
	ms.AssertLastRequest(t, http.MethodPost, "/v2/queues/orders/resume")
	require.NoError(t, r.Remove(ctx, "orders"))
	ms.AssertLastRequest(t, http.MethodDelete, "/v2/queues/orders")
}

func TestQueues_EmptyNameRejectedLocally(t *testing.T) {
	ms := testutil.NewMockServer(t)
	r := NewQueuesResource(newTestTransport(t, ms))

	err := r.Upsert(context.Background(), &UpsertQueueRequest{})
	assert.Equal(t, httpx.KindInvalidRequestURL, httpx.KindOf(err))
	_, err = r.Get(context.Background(), "")
	assert.Equal(t, httpx.KindInvalidRequestURL, httpx.KindOf(err))
	ms.AssertRequestCount(t, 0)
}

func TestQueues_BurstRateLimit(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleRateLimit(http.MethodGet, "/v2/queues", map[string]string{
		"Burst-RateLimit-Limit": "100",
		"Burst-RateLimit-Reset": "12",
	})

	_, err := NewQueuesResource(newTestTransport(t, ms)).List(context.Background())
	var burst *httpx.BurstRateLimitError
	require.ErrorAs(t, err, &burst)
	assert.Equal(t, uint64(12), burst.Reset)
}

func TestSchedules_Create(t *testing.T) {
	ms := testutil.NewMockServer(t)
	path := "/v2/schedules/https://example.com/cron"
	ms.HandleJSON(http.MethodPost, path, http.StatusCreated, map[string]any{"scheduleId": "scd_1"})

	got, err := NewSchedulesResource(newTestTransport(t, ms)).Create(context.Background(), &CreateScheduleRequest{
		Destination: "https://example.com/cron",
		Cron:        "*/5 * * * *",
		Body:        []byte("tick"),
		ScheduleID:  "scd_1",
		Options:     &PublishOptions{Retries: ptr(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "scd_1", got.ScheduleID)

	ms.AssertLastRequest(t, http.MethodPost, path)
	ms.AssertLastRequestHeader(t, "Upstash-Cron", "*/5 * * * *")
	ms.AssertLastRequestHeader(t, "Upstash-Schedule-Id", "scd_1")
	ms.AssertLastRequestHeader(t, "Upstash-Retries", "2")
	assert.Equal(t, "tick", string(ms.LastRequest().Body))
}

func TestSchedules_Management(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodGet, "/v2/schedules", http.StatusOK, []map[string]any{
		{"scheduleId": "scd_1", "cron": "* * * * *", "destination": "https://example.com"},
	})
	ms.HandleJSON(http.MethodGet, "/v2/schedules/scd_1", http.StatusOK, map[string]any{
		"scheduleId": "scd_1", "cron": "* * * * *", "destination": "https://example.com", "isPaused": true,
	})
	ms.HandleRaw(http.MethodPost, "/v2/schedules/scd_1/pause", http.StatusOK, "")
	ms.HandleRaw(http.MethodPost, "/v2/schedules/scd_1/resume", http.StatusOK, "")
	ms.HandleRaw(http.MethodDelete, "/v2/schedules/scd_1", http.StatusOK, "")

	ctx := context.Background()
	r := NewSchedulesResource(newTestTransport(t, ms))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "scd_1", list[0].ID)

	s, err := r.Get(ctx, "scd_1")
	require.NoError(t, err)
	assert.True(t, s.IsPaused)

	require.NoError(t, r.Pause(ctx, "scd_1"))
	require.NoError(t, r.Resume(ctx, "scd_1"))
	require.NoError(t, r.Remove(ctx, "scd_1"))
	ms.AssertRequestCount(t, 5)
}

func TestURLGroups(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleRaw(http.MethodPost, "/v2/topics/test-group/endpoints", http.StatusOK, "")
	ms.HandleRaw(http.MethodDelete, "/v2/topics/test-group/endpoints", http.StatusOK, "")
	ms.HandleJSON(http.MethodGet, "/v2/topics/test-group", http.StatusOK, map[string]any{
		"name":      "test-group",
		"createdAt": 1625097600,
		"updatedAt": 1625097700,
		"endpoints": []map[string]any{
			{"name": "endpoint1", "url": "https://example.com/1"},
			{"name": "endpoint2", "url": "https://example.com/2"},
		},
	})
	ms.HandleJSON(http.MethodGet, "/v2/topics", http.StatusOK, []map[string]any{{"name": "test-group"}})
	ms.HandleRaw(http.MethodDelete, "/v2/topics/test-group", http.StatusOK, "")

	ctx := context.Background()
	r := NewURLGroupsResource(newTestTransport(t, ms))
	endpoints := []Endpoint{
		{Name: "endpoint1", URL: "https://example.com/1"},
		{URL: "https://example.com/2"},
	}

	require.NoError(t, r.UpsertEndpoints(ctx, "test-group", endpoints))
	assert.JSONEq(t,
		`{"endpoints":[{"name":"endpoint1","url":"https://example.com/1"},{"url":"https://example.com/2"}]}`,
		string(ms.LastRequest().Body))
	ms.AssertLastRequestHeader(t, "Content-Type", "application/json")

	require.NoError(t, r.RemoveEndpoints(ctx, "test-group", endpoints[:1]))
	ms.AssertLastRequest(t, http.MethodDelete, "/v2/topics/test-group/endpoints")

	g, err := r.Get(ctx, "test-group")
	require.NoError(t, err)
	assert.Len(t, g.Endpoints, 2)
	assert.Equal(t, int64(1625097700), g.UpdatedAt)

	groups, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	require.NoError(t, r.Remove(ctx, "test-group"))
}

func TestURLGroups_DailyRateLimit(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleRateLimit(http.MethodGet, "/v2/topics/test-group", map[string]string{
		"RateLimit-Limit": "1000",
		"RateLimit-Reset": "1625097600",
	})

	_, err := NewURLGroupsResource(newTestTransport(t, ms)).Get(context.Background(), "test-group")
	var daily *httpx.DailyRateLimitError
	require.ErrorAs(t, err, &daily)
	assert.Equal(t, uint64(1625097600), daily.Reset)
}

func TestSigningKeys(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodGet, "/v2/keys", http.StatusOK, map[string]string{"current": "sig_a", "next": "sig_b"})
	ms.HandleJSON(http.MethodPost, "/v2/keys/rotate", http.StatusOK, map[string]string{"current": "sig_b", "next": "sig_c"})

	r := NewSigningKeysResource(newTestTransport(t, ms))
	keys, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &SigningKeys{Current: "sig_a", Next: "sig_b"}, keys)

	keys, err = r.Rotate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sig_c", keys.Next)
}
