package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
)

// MessagesResource provides access to publish, enqueue and message operations.
type MessagesResource struct {
	base *Base
}

// NewMessagesResource creates a new MessagesResource.
func NewMessagesResource(transport *httpx.Transport) *MessagesResource {
	return &MessagesResource{base: NewBase(transport)}
}

// PublishOptions controls delivery of a published message. Every field is
// optional and maps onto an Upstash-* request header.
type PublishOptions struct {
	// Headers are sent as-is on the publish request, e.g. Content-Type.
	Headers http.Header
	// ForwardHeaders are delivered to the destination with the message.
	ForwardHeaders map[string]string

	Method                    string
	Delay                     time.Duration
	NotBefore                 time.Time
	Retries                   *int
	Callback                  string
	FailureCallback           string
	Timeout                   time.Duration
	DeduplicationID           string
	ContentBasedDeduplication bool
}

// Header renders the options as request headers.
func (o *PublishOptions) Header() http.Header {
	h := http.Header{}
	if o == nil {
		return h
	}
	for k, vs := range o.Headers {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	for k, v := range o.ForwardHeaders {
		h.Set("Upstash-Forward-"+k, v)
	}
	if o.Method != "" {
		h.Set("Upstash-Method", o.Method)
	}
	if o.Delay > 0 {
		h.Set("Upstash-Delay", seconds(o.Delay))
	}
	if !o.NotBefore.IsZero() {
		h.Set("Upstash-Not-Before", strconv.FormatInt(o.NotBefore.Unix(), 10))
	}
	if o.Retries != nil {
		h.Set("Upstash-Retries", strconv.Itoa(*o.Retries))
	}
	if o.Callback != "" {
		h.Set("Upstash-Callback", o.Callback)
	}
	if o.FailureCallback != "" {
		h.Set("Upstash-Failure-Callback", o.FailureCallback)
	}
	if o.Timeout > 0 {
		h.Set("Upstash-Timeout", seconds(o.Timeout))
	}
	if o.DeduplicationID != "" {
		h.Set("Upstash-Deduplication-Id", o.DeduplicationID)
	}
	if o.ContentBasedDeduplication {
		h.Set("Upstash-Content-Based-Deduplication", "true")
	}
	return h
}

func seconds(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Second), 10) + "s"
}

// PublishResponse describes one accepted message.
type PublishResponse struct {
	MessageID    string `json:"messageId"`
	URL          string `json:"url,omitempty"`
	Deduplicated bool   `json:"deduplicated,omitempty"`
}

// PublishResult holds one response per resolved destination. Publishing to
// a URL yields a single response; publishing to a URL group yields one per
// endpoint.
type PublishResult []PublishResponse

// UnmarshalJSON accepts either a single object or an array of objects.
func (r *PublishResult) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var many []PublishResponse
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*r = many
		return nil
	}
	var one PublishResponse
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*r = PublishResult{one}
	return nil
}

// Publish sends body to destination, which is a URL or a URL group name.
func (r *MessagesResource) Publish(ctx context.Context, destination string, body []byte, opts *PublishOptions) (PublishResult, error) {
	dest, err := checkDestination(destination)
	if err != nil {
		return nil, err
	}
	var result PublishResult
	if err := r.base.PostRaw(ctx, "/v2/publish/"+dest, body, opts.Header(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// PublishJSON marshals v and publishes it with a JSON content type.
func (r *MessagesResource) PublishJSON(ctx context.Context, destination string, v any, opts *PublishOptions) (PublishResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, httpx.NewRequestFailedError(err)
	}
	o := PublishOptions{}
	if opts != nil {
		o = *opts
	}
	o.Headers = o.Headers.Clone()
	if o.Headers == nil {
		o.Headers = http.Header{}
	}
	o.Headers.Set("Content-Type", "application/json")
	return r.Publish(ctx, destination, body, &o)
}

// Enqueue appends a message for destination to the named queue.
func (r *MessagesResource) Enqueue(ctx context.Context, queue, destination string, body []byte, opts *PublishOptions) (PublishResult, error) {
	dest, err := checkDestination(destination)
	if err != nil {
		return nil, err
	}
	path, err := route("/v2/enqueue", "queue", queue, dest)
	if err != nil {
		return nil, err
	}
	var result PublishResult
	if err := r.base.PostRaw(ctx, path, body, opts.Header(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// BatchEntry is one message of a batch publish.
type BatchEntry struct {
	Destination string            `json:"destination"`
	Queue       string            `json:"queue,omitempty"`
	Headers     map[string]string `json:"headers"`
	Body        string            `json:"body,omitempty"`
}

// Batch publishes several messages in one request. The result has one
// entry per batch entry, in order.
func (r *MessagesResource) Batch(ctx context.Context, entries []BatchEntry) ([]PublishResult, error) {
	body := make([]BatchEntry, len(entries))
	for i, e := range entries {
		if e.Headers == nil {
			e.Headers = map[string]string{}
		}
		body[i] = e
	}
	var result []PublishResult
	if err := r.base.Post(ctx, "/v2/batch", body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Message is a message as stored by QStash.
type Message struct {
	MessageID string              `json:"messageId"`
	TopicName string              `json:"topicName,omitempty"`
	URL       string              `json:"url"`
	Method    string              `json:"method"`
	Header    map[string][]string `json:"header,omitempty"`
	Body      string              `json:"body,omitempty"`
	CreatedAt int64               `json:"createdAt"`
}

// Get retrieves a message by id.
func (r *MessagesResource) Get(ctx context.Context, id string) (*Message, error) {
	path, err := route("/v2/messages", "messageId", id)
	if err != nil {
		return nil, err
	}
	var result Message
	if err := r.base.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Cancel stops delivery of a pending message.
func (r *MessagesResource) Cancel(ctx context.Context, id string) error {
	path, err := route("/v2/messages", "messageId", id)
	if err != nil {
		return err
	}
	return r.base.Delete(ctx, path)
}

// CancelManyResponse reports how many messages were cancelled.
type CancelManyResponse struct {
	Cancelled int `json:"cancelled"`
}

// CancelMany cancels several messages at once.
func (r *MessagesResource) CancelMany(ctx context.Context, ids []string) (*CancelManyResponse, error) {
	var result CancelManyResponse
	body := map[string][]string{"messageIds": ids}
	if err := r.base.DeleteWithBody(ctx, "/v2/messages", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
