// Package address creates, verifies and lists addresses.
package address

import (
	"context"
	"net/http"

	"github.com/tournevent/shipkit/pkg/shipapi"
)

// Collection is one page of addresses.
type Collection = shipapi.Collection[*shipapi.Address, *shipapi.ListParams]

// Client is the address resource.
type Client struct {
	api *shipapi.Client
}

// New creates an address client.
func New(api *shipapi.Client) *Client {
	return &Client{api: api}
}

// Create creates an address. Verification runs when the params request it,
// but a failed check does not fail the call.
func (c *Client) Create(ctx context.Context, params shipapi.Params) (*shipapi.Address, error) {
	return shipapi.Call[shipapi.Address](ctx, c.api, http.MethodPost, "addresses", nil, params, "")
}

// CreateAndVerify creates an address and fails if it cannot be verified.
func (c *Client) CreateAndVerify(ctx context.Context, params shipapi.Params) (*shipapi.Address, error) {
	return shipapi.Call[shipapi.Address](ctx, c.api, http.MethodPost, "addresses/create_and_verify", nil, params, "address")
}

// Retrieve fetches an address by id.
func (c *Client) Retrieve(ctx context.Context, id string) (*shipapi.Address, error) {
	return shipapi.Call[shipapi.Address](ctx, c.api, http.MethodGet, "addresses/{id}", map[string]string{"id": id}, nil, "")
}

// Verify runs verification on an existing address.
func (c *Client) Verify(ctx context.Context, id string) (*shipapi.Address, error) {
	return shipapi.Call[shipapi.Address](ctx, c.api, http.MethodGet, "addresses/{id}/verify", map[string]string{"id": id}, nil, "address")
}

// All lists addresses, newest first.
func (c *Client) All(ctx context.Context, params *shipapi.ListParams) (*Collection, error) {
	if params == nil {
		params = &shipapi.ListParams{}
	}
	return shipapi.ListCollection[*shipapi.Address](ctx, c.api, "addresses", "addresses", params)
}

// Next fetches the page after page.
func (c *Client) Next(ctx context.Context, page *Collection, pageSize *int) (*Collection, error) {
	return shipapi.NextPage(ctx, page, c.All, pageSize)
}
