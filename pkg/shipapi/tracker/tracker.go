// Package tracker creates and follows package trackers.
package tracker

import (
	"context"
	"net/http"

	"github.com/tournevent/shipkit/pkg/shipapi"
)

// CreateParams describes a tracker to create.
type CreateParams struct {
	TrackingCode *string
	Carrier      *string
	Amount       *string
}

// Schema implements shipapi.ParameterSet.
func (p *CreateParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "tracker.create",
		Fields: []shipapi.Field{
			{
				Name:  "Carrier",
				Path:  []string{"tracker", "carrier"},
				Value: shipapi.Ptr(p.Carrier),
				Rules: []shipapi.DependentRule{shipapi.Requires("TrackingCode", shipapi.IsSet(p.TrackingCode))},
			},
			{Name: "TrackingCode", Path: []string{"tracker", "tracking_code"}, Necessity: shipapi.Required, Value: shipapi.Ptr(p.TrackingCode)},
			{Name: "Amount", Path: []string{"tracker", "amount"}, Value: shipapi.Ptr(p.Amount)},
		},
	}
}

// ListParams filters the tracker list.
type ListParams struct {
	shipapi.ListParams

	TrackingCode *string
	Carrier      *string
}

// Schema implements shipapi.ParameterSet.
func (l *ListParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "tracker.list",
		Fields: append(l.ListParams.Fields(),
			shipapi.Field{Name: "TrackingCode", Path: []string{"tracking_code"}, Value: shipapi.Ptr(l.TrackingCode)},
			shipapi.Field{Name: "Carrier", Path: []string{"carrier"}, Value: shipapi.Ptr(l.Carrier)},
		),
	}
}

// Clone implements shipapi.Paginated.
func (l *ListParams) Clone() *ListParams {
	if l == nil {
		return &ListParams{}
	}
	return &ListParams{
		ListParams:   l.ListParams.Copy(),
		TrackingCode: shipapi.ClonePtr(l.TrackingCode),
		Carrier:      shipapi.ClonePtr(l.Carrier),
	}
}

// WithCursor implements shipapi.Paginated.
func (l *ListParams) WithCursor(beforeID string, pageSize *int) *ListParams {
	next := l.Clone()
	next.ListParams = next.ListParams.Cursor(beforeID, pageSize)
	return next
}

// Collection is one page of trackers.
type Collection = shipapi.Collection[*shipapi.Tracker, *ListParams]

// Client is the tracker resource.
type Client struct {
	api *shipapi.Client
}

// New creates a tracker client.
func New(api *shipapi.Client) *Client {
	return &Client{api: api}
}

// Create starts tracking a package.
func (c *Client) Create(ctx context.Context, params shipapi.Params) (*shipapi.Tracker, error) {
	return shipapi.Call[shipapi.Tracker](ctx, c.api, http.MethodPost, "trackers", nil, params, "")
}

// Retrieve fetches a tracker by id.
func (c *Client) Retrieve(ctx context.Context, id string) (*shipapi.Tracker, error) {
	return shipapi.Call[shipapi.Tracker](ctx, c.api, http.MethodGet, "trackers/{id}", map[string]string{"id": id}, nil, "")
}

// RetrieveMany fetches several trackers concurrently. Trackers that could
// not be fetched are reported in the returned errors.
func (c *Client) RetrieveMany(ctx context.Context, ids []string) ([]*shipapi.Tracker, []error) {
	return shipapi.FetchAll(ctx, ids, c.Retrieve)
}

// All lists trackers, newest first.
func (c *Client) All(ctx context.Context, params *ListParams) (*Collection, error) {
	if params == nil {
		params = &ListParams{}
	}
	return shipapi.ListCollection[*shipapi.Tracker](ctx, c.api, "trackers", "trackers", params)
}

// Next fetches the page after page.
func (c *Client) Next(ctx context.Context, page *Collection, pageSize *int) (*Collection, error) {
	return shipapi.NextPage(ctx, page, c.All, pageSize)
}
