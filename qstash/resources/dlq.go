package resources

import (
	"context"
	"net/url"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
)

// DLQResource provides access to the dead-letter queue.
type DLQResource struct {
	base *Base
}

// NewDLQResource creates a new DLQResource.
func NewDLQResource(transport *httpx.Transport) *DLQResource {
	return &DLQResource{base: NewBase(transport)}
}

// DLQMessage is a message that exhausted its retries.
type DLQMessage struct {
	Message
	DLQID          string              `json:"dlqId"`
	QueueName      string              `json:"queueName,omitempty"`
	ScheduleID     string              `json:"scheduleId,omitempty"`
	ResponseStatus int                 `json:"responseStatus,omitempty"`
	ResponseHeader map[string][]string `json:"responseHeader,omitempty"`
	ResponseBody   string              `json:"responseBody,omitempty"`
}

// ListDLQParams are parameters for listing dead-lettered messages.
type ListDLQParams struct {
	Cursor     *string
	MessageID  *string
	URL        *string
	TopicName  *string
	ScheduleID *string
	QueueName  *string
	Count      *int
}

func (p *ListDLQParams) query() (url.Values, error) {
	q := url.Values{}
	if p == nil {
		return q, nil
	}
	for _, kv := range []struct {
		name  string
		value any
	}{
		{"cursor", p.Cursor},
		{"messageId", p.MessageID},
		{"url", p.URL},
		{"topicName", p.TopicName},
		{"scheduleId", p.ScheduleID},
		{"queueName", p.QueueName},
		{"count", p.Count},
	} {
		if err := addQuery(q, kv.name, kv.value); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// ListDLQResponse is one page of dead-lettered messages. An empty cursor
// means there are no more pages.
type ListDLQResponse struct {
	Cursor   string       `json:"cursor,omitempty"`
	Messages []DLQMessage `json:"messages"`
}

// List retrieves a page of dead-lettered messages.
func (r *DLQResource) List(ctx context.Context, params *ListDLQParams) (*ListDLQResponse, error) {
	query, err := params.query()
	if err != nil {
		return nil, err
	}
	var result ListDLQResponse
	if err := r.base.GetWithQuery(ctx, "/v2/dlq", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get retrieves a dead-lettered message.
func (r *DLQResource) Get(ctx context.Context, dlqID string) (*DLQMessage, error) {
	path, err := route("/v2/dlq", "dlqId", dlqID)
	if err != nil {
		return nil, err
	}
	var result DLQMessage
	if err := r.base.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a message from the dead-letter queue.
func (r *DLQResource) Delete(ctx context.Context, dlqID string) error {
	path, err := route("/v2/dlq", "dlqId", dlqID)
	if err != nil {
		return err
	}
	return r.base.Delete(ctx, path)
}

// DeleteManyResponse reports how many messages were removed.
type DeleteManyResponse struct {
	Deleted int `json:"deleted"`
}

// DeleteMany removes several messages from the dead-letter queue.
func (r *DLQResource) DeleteMany(ctx context.Context, dlqIDs []string) (*DeleteManyResponse, error) {
	var result DeleteManyResponse
	body := map[string][]string{"dlqIds": dlqIDs}
	if err := r.base.DeleteWithBody(ctx, "/v2/dlq", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
