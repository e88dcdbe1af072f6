package httpx

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stream outcomes recorded by ObserveStreamEvent.
const (
	StreamOutcomeEvent      = "event"
	StreamOutcomeDone       = "done"
	StreamOutcomeParseError = "parse_error"
	StreamOutcomeReadError  = "read_error"
)

// Metrics holds the client-side Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	rateLimited  *prometheus.CounterVec
	streamEvents *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. It panics
// if registration fails, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qstash_client_requests_total",
				Help: "Requests sent, by method and status class",
			},
			[]string{"method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qstash_client_request_duration_seconds",
				Help:    "Time until response headers were received",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qstash_client_rate_limited_total",
				Help: "Throttled responses, by classified kind",
			},
			[]string{"kind"},
		),
		streamEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qstash_client_stream_events_total",
				Help: "Stream decoder results, by outcome",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.rateLimited, m.streamEvents)
	}
	return m
}

// ObserveRequest records one completed round trip. status is 0 when the
// request never got a response.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, statusClass(status)).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveRateLimit records a classified 429.
func (m *Metrics) ObserveRateLimit(kind ErrorKind) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(kind.String()).Inc()
}

// ObserveStreamEvent records one decoder result.
func (m *Metrics) ObserveStreamEvent(outcome string) {
	if m == nil {
		return
	}
	m.streamEvents.WithLabelValues(outcome).Inc()
}

func statusClass(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
