// Package rate retrieves individual shipment rates.
package rate

import (
	"context"
	"net/http"

	"github.com/tournevent/shipkit/pkg/shipapi"
)

// Client is the rate resource.
type Client struct {
	api *shipapi.Client
}

// New creates a rate client.
func New(api *shipapi.Client) *Client {
	return &Client{api: api}
}

// Retrieve fetches a rate by id.
func (c *Client) Retrieve(ctx context.Context, id string) (*shipapi.Rate, error) {
	return shipapi.Call[shipapi.Rate](ctx, c.api, http.MethodGet, "rates/{id}", map[string]string{"id": id}, nil, "")
}
