package resources

import (
	"context"
	"net/url"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
)

// EventsResource provides access to the delivery event log.
type EventsResource struct {
	base *Base
}

// NewEventsResource creates a new EventsResource.
func NewEventsResource(transport *httpx.Transport) *EventsResource {
	return &EventsResource{base: NewBase(transport)}
}

// EventState is the state of a message at the time of an event.
type EventState string

const (
	EventStateCreated         EventState = "CREATED"
	EventStateActive          EventState = "ACTIVE"
	EventStateRetry           EventState = "RETRY"
	EventStateError           EventState = "ERROR"
	EventStateDelivered       EventState = "DELIVERED"
	EventStateFailed          EventState = "FAILED"
	EventStateCancelRequested EventState = "CANCEL_REQUESTED"
	EventStateCancelled       EventState = "CANCELLED"
)

// Event is one entry of the event log.
type Event struct {
	// Time is in Unix milliseconds.
	Time      int64               `json:"time"`
	MessageID string              `json:"messageId"`
	Header    map[string][]string `json:"header,omitempty"`
	// Body is sent base64 encoded and decoded here.
	Body             []byte     `json:"body,omitempty"`
	State            EventState `json:"state"`
	Error            string     `json:"error,omitempty"`
	NextDeliveryTime int64      `json:"nextDeliveryTime,omitempty"`
	URL              string     `json:"url,omitempty"`
	TopicName        string     `json:"topicName,omitempty"`
	EndpointName     string     `json:"endpointName,omitempty"`
	ScheduleID       string     `json:"scheduleId,omitempty"`
	QueueName        string     `json:"queueName,omitempty"`
}

// ListEventsParams filter the event log. FromDate and ToDate are Unix
// milliseconds.
type ListEventsParams struct {
	Cursor     *string
	MessageID  *string
	State      *EventState
	URL        *string
	TopicName  *string
	ScheduleID *string
	QueueName  *string
	FromDate   *int64
	ToDate     *int64
	Count      *int
	Order      *string
}

func (p *ListEventsParams) query() (url.Values, error) {
	q := url.Values{}
	if p == nil {
		return q, nil
	}
	var state *string
	if p.State != nil {
		s := string(*p.State)
		state = &s
	}
	for _, kv := range []struct {
		name  string
		value any
	}{
		{"cursor", p.Cursor},
		{"messageId", p.MessageID},
		{"state", state},
		{"url", p.URL},
		{"topicName", p.TopicName},
		{"scheduleId", p.ScheduleID},
		{"queueName", p.QueueName},
		{"fromDate", p.FromDate},
		{"toDate", p.ToDate},
		{"count", p.Count},
		{"order", p.Order},
	} {
		if err := addQuery(q, kv.name, kv.value); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// ListEventsResponse is one page of events. An empty cursor means there are
// no more pages.
type ListEventsResponse struct {
	Cursor string  `json:"cursor,omitempty"`
	Events []Event `json:"events"`
}

// List retrieves a page of events.
func (r *EventsResource) List(ctx context.Context, params *ListEventsParams) (*ListEventsResponse, error) {
	query, err := params.query()
	if err != nil {
		return nil, err
	}
	var result ListEventsResponse
	if err := r.base.GetWithQuery(ctx, "/v2/events", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
