// Package webhook manages webhook endpoints and validates incoming events.
package webhook

import (
	"context"
	"net/http"

	"github.com/tournevent/shipkit/pkg/shipapi"
)

// CreateParams describes a webhook to register.
type CreateParams struct {
	URL           *string
	WebhookSecret *string
}

// Schema implements shipapi.ParameterSet.
func (p *CreateParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "webhook.create",
		Fields: []shipapi.Field{
			{Name: "URL", Path: []string{"webhook", "url"}, Necessity: shipapi.Required, Value: shipapi.Ptr(p.URL)},
			{Name: "WebhookSecret", Path: []string{"webhook", "webhook_secret"}, Value: shipapi.Ptr(p.WebhookSecret)},
		},
	}
}

// UpdateParams re-enables a webhook and optionally rotates its secret.
type UpdateParams struct {
	WebhookSecret *string
}

// Schema implements shipapi.ParameterSet.
func (p *UpdateParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "webhook.update",
		Fields: []shipapi.Field{
			{Name: "WebhookSecret", Path: []string{"webhook", "webhook_secret"}, Value: shipapi.Ptr(p.WebhookSecret)},
		},
	}
}

// Client is the webhook resource.
type Client struct {
	api *shipapi.Client
}

// New creates a webhook client.
func New(api *shipapi.Client) *Client {
	return &Client{api: api}
}

// Create registers a webhook.
func (c *Client) Create(ctx context.Context, params shipapi.Params) (*shipapi.Webhook, error) {
	return shipapi.Call[shipapi.Webhook](ctx, c.api, http.MethodPost, "webhooks", nil, params, "")
}

// Retrieve fetches a webhook by id.
func (c *Client) Retrieve(ctx context.Context, id string) (*shipapi.Webhook, error) {
	return shipapi.Call[shipapi.Webhook](ctx, c.api, http.MethodGet, "webhooks/{id}", map[string]string{"id": id}, nil, "")
}

// All lists every webhook. The endpoint is not paginated.
func (c *Client) All(ctx context.Context) ([]*shipapi.Webhook, error) {
	hooks, err := shipapi.Call[[]*shipapi.Webhook](ctx, c.api, http.MethodGet, "webhooks", nil, nil, "webhooks")
	if err != nil {
		return nil, err
	}
	return *hooks, nil
}

// Update re-enables a disabled webhook.
func (c *Client) Update(ctx context.Context, id string, params shipapi.Params) (*shipapi.Webhook, error) {
	return shipapi.Call[shipapi.Webhook](ctx, c.api, http.MethodPatch, "webhooks/{id}", map[string]string{"id": id}, params, "")
}

// Delete removes a webhook.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := shipapi.NewRequest(http.MethodDelete, "webhooks/{id}", map[string]string{"id": id}, nil, "")
	if err != nil {
		return err
	}
	return c.api.ExecuteNoResponse(ctx, req)
}
