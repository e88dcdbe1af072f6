package resources

import (
	"context"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
)

// SigningKeysResource provides access to the request signing keys.
type SigningKeysResource struct {
	base *Base
}

// NewSigningKeysResource creates a new SigningKeysResource.
func NewSigningKeysResource(transport *httpx.Transport) *SigningKeysResource {
	return &SigningKeysResource{base: NewBase(transport)}
}

// SigningKeys holds the key currently used to sign deliveries and the one
// that replaces it on the next rotation.
type SigningKeys struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

// Get retrieves the signing keys.
func (r *SigningKeysResource) Get(ctx context.Context) (*SigningKeys, error) {
	var result SigningKeys
	if err := r.base.Get(ctx, "/v2/keys", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Rotate promotes the next key to current and generates a new next key.
func (r *SigningKeysResource) Rotate(ctx context.Context) (*SigningKeys, error) {
	var result SigningKeys
	if err := r.base.Post(ctx, "/v2/keys/rotate", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
