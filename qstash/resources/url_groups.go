package resources

import (
	"context"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
)

// URLGroupsResource provides access to URL group operations. URL groups are
// called topics on the wire.
type URLGroupsResource struct {
	base *Base
}

// NewURLGroupsResource creates a new URLGroupsResource.
func NewURLGroupsResource(transport *httpx.Transport) *URLGroupsResource {
	return &URLGroupsResource{base: NewBase(transport)}
}

// Endpoint is one member of a URL group.
type Endpoint struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// URLGroup is a named fan-out target.
type URLGroup struct {
	Name      string     `json:"name"`
	Endpoints []Endpoint `json:"endpoints"`
	CreatedAt int64      `json:"createdAt"`
	UpdatedAt int64      `json:"updatedAt"`
}

type endpointsBody struct {
	Endpoints []Endpoint `json:"endpoints"`
}

// UpsertEndpoints adds endpoints to a URL group, creating it if needed.
func (r *URLGroupsResource) UpsertEndpoints(ctx context.Context, name string, endpoints []Endpoint) error {
	path, err := route("/v2/topics", "urlGroupName", name, "endpoints")
	if err != nil {
		return err
	}
	return r.base.Post(ctx, path, endpointsBody{Endpoints: endpoints}, nil)
}

// RemoveEndpoints removes endpoints, matched by name or URL, from a URL group.
func (r *URLGroupsResource) RemoveEndpoints(ctx context.Context, name string, endpoints []Endpoint) error {
	path, err := route("/v2/topics", "urlGroupName", name, "endpoints")
	if err != nil {
		return err
	}
	return r.base.DeleteWithBody(ctx, path, endpointsBody{Endpoints: endpoints}, nil)
}

// Get retrieves a URL group by name.
func (r *URLGroupsResource) Get(ctx context.Context, name string) (*URLGroup, error) {
	path, err := route("/v2/topics", "urlGroupName", name)
	if err != nil {
		return nil, err
	}
	var result URLGroup
	if err := r.base.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// List retrieves all URL groups.
func (r *URLGroupsResource) List(ctx context.Context) ([]URLGroup, error) {
	var result []URLGroup
	if err := r.base.Get(ctx, "/v2/topics", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Remove deletes a URL group.
func (r *URLGroupsResource) Remove(ctx context.Context, name string) error {
	path, err := route("/v2/topics", "urlGroupName", name)
	if err != nil {
		return err
	}
	return r.base.Delete(ctx, path)
}
