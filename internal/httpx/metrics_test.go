package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// counterValue returns the value of the counter in family name whose labels
// match want exactly, or -1 if no such series exists.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, want) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return -1
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	if len(m.GetLabel()) != len(want) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if want[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest(http.MethodGet, 200, time.Millisecond)
	m.ObserveRateLimit(KindDailyRateLimit)
	m.ObserveStreamEvent(StreamOutcomeEvent)
}

func TestMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRequest(http.MethodPost, 201, 10*time.Millisecond)
	m.ObserveRequest(http.MethodPost, 0, time.Millisecond)
	m.ObserveRateLimit(KindChatRateLimit)
	m.ObserveStreamEvent(StreamOutcomeDone)

	if v := counterValue(t, reg, "qstash_client_requests_total", map[string]string{"method": "POST", "status": "2xx"}); v != 1 {
		t.Errorf("requests{POST,2xx} = %v, want 1", v)
	}
	if v := counterValue(t, reg, "qstash_client_requests_total", map[string]string{"method": "POST", "status": "error"}); v != 1 {
		t.Errorf("requests{POST,error} = %v, want 1", v)
	}
	if v := counterValue(t, reg, "qstash_client_rate_limited_total", map[string]string{"kind": "chat_rate_limit_exceeded"}); v != 1 {
		t.Errorf("rate_limited{chat} = %v, want 1", v)
	}
	if v := counterValue(t, reg, "qstash_client_stream_events_total", map[string]string{"outcome": "done"}); v != 1 {
		t.Errorf("stream_events{done} = %v, want 1", v)
	}
}

func TestTransport_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/limited" {
			w.Header().Set("Burst-RateLimit-Limit", "10")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	transport, err := NewTransport(Config{BaseURL: server.URL, Token: testToken, Metrics: NewMetrics(reg)})
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}

	transport.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/ok"})
	transport.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/limited"})

	if v := counterValue(t, reg, "qstash_client_requests_total", map[string]string{"method": "GET", "status": "2xx"}); v != 1 {
		t.Errorf("requests{GET,2xx} = %v, want 1", v)
	}
	if v := counterValue(t, reg, "qstash_client_requests_total", map[string]string{"method": "GET", "status": "4xx"}); v != 1 {
		t.Errorf("requests{GET,4xx} = %v, want 1", v)
	}
	if v := counterValue(t, reg, "qstash_client_rate_limited_total", map[string]string{"kind": "burst_rate_limit_exceeded"}); v != 1 {
		t.Errorf("rate_limited{burst} = %v, want 1", v)
	}
}
