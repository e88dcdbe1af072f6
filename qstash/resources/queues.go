package resources

import (
	"context"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
)

// QueuesResource provides access to queue operations.
type QueuesResource struct {
	base *Base
}

// NewQueuesResource creates a new QueuesResource.
func NewQueuesResource(transport *httpx.Transport) *QueuesResource {
	return &QueuesResource{base: NewBase(transport)}
}

// Queue represents a queue and its delivery state.
type Queue struct {
	Name        string `json:"name"`
	Parallelism int    `json:"parallelism"`
	Lag         int    `json:"lag"`
	Paused      bool   `json:"paused,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// UpsertQueueRequest is the request to create or update a queue.
type UpsertQueueRequest struct {
	QueueName   string `json:"queueName"`
	Parallelism int    `json:"parallelism"`
}

// Upsert creates a queue or updates its parallelism.
func (r *QueuesResource) Upsert(ctx context.Context, req *UpsertQueueRequest) error {
	if req == nil {
		req = &UpsertQueueRequest{}
	}
	if _, err := pathSegment("queueName", req.QueueName); err != nil {
		return err
	}
	return r.base.Post(ctx, "/v2/queues/", req, nil)
}

// List retrieves all queues.
func (r *QueuesResource) List(ctx context.Context) ([]Queue, error) {
	var result []Queue
	if err := r.base.Get(ctx, "/v2/queues", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Get retrieves a queue by name.
func (r *QueuesResource) Get(ctx context.Context, name string) (*Queue, error) {
	path, err := route("/v2/queues", "queueName", name)
	if err != nil {
		return nil, err
	}
	var result Queue
	if err := r.base.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Remove deletes a queue.
func (r *QueuesResource) Remove(ctx context.Context, name string) error {
	path, err := route("/v2/queues", "queueName", name)
	if err != nil {
		return err
	}
	return r.base.Delete(ctx, path)
}

// Pause stops delivery from a queue. Messages can still be enqueued.
func (r *QueuesResource) Pause(ctx context.Context, name string) error {
	path, err := route("/v2/queues", "queueName", name, "pause")
	if err != nil {
		return err
	}
	return r.base.Post(ctx, path, nil, nil)
}

// Resume restarts delivery from a paused queue.
func (r *QueuesResource) Resume(ctx context.Context, name string) error {
	path, err := route("/v2/queues", "queueName", name, "resume")
	if err != nil {
		return err
	}
	return r.base.Post(ctx, path, nil, nil)
}
