// Package parcel creates and retrieves parcels.
package parcel

import (
	"context"
	"net/http"

	"github.com/tournevent/shipkit/pkg/shipapi"
)

// CreateParams describes package dimensions (inches) and weight (ounces).
type CreateParams struct {
	// ID references an existing parcel when embedded in a shipment.
	ID                *string
	Length            *float64
	Width             *float64
	Height            *float64
	Weight            *float64
	PredefinedPackage *string
}

// Schema implements shipapi.ParameterSet.
func (p *CreateParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "parcel.create",
		Fields: []shipapi.Field{
			{Name: "Length", Path: []string{"parcel", "length"}, Value: shipapi.Ptr(p.Length)},
			{Name: "Width", Path: []string{"parcel", "width"}, Value: shipapi.Ptr(p.Width)},
			{Name: "Height", Path: []string{"parcel", "height"}, Value: shipapi.Ptr(p.Height)},
			{Name: "Weight", Path: []string{"parcel", "weight"}, Necessity: shipapi.Required, Value: shipapi.Ptr(p.Weight)},
			{Name: "PredefinedPackage", Path: []string{"parcel", "predefined_package"}, Value: shipapi.Ptr(p.PredefinedPackage)},

			{Name: "ID", Path: []string{"id"}, Nesting: shipapi.Nested, Value: shipapi.Ptr(p.ID)},
			{Name: "Length", Path: []string{"length"}, Nesting: shipapi.Nested, Value: shipapi.Ptr(p.Length)},
			{Name: "Width", Path: []string{"width"}, Nesting: shipapi.Nested, Value: shipapi.Ptr(p.Width)},
			{Name: "Height", Path: []string{"height"}, Nesting: shipapi.Nested, Value: shipapi.Ptr(p.Height)},
			{Name: "Weight", Path: []string{"weight"}, Nesting: shipapi.Nested, Value: shipapi.Ptr(p.Weight)},
			{Name: "PredefinedPackage", Path: []string{"predefined_package"}, Nesting: shipapi.Nested, Value: shipapi.Ptr(p.PredefinedPackage)},
		},
	}
}

// Client is the parcel resource.
type Client struct {
	api *shipapi.Client
}

// New creates a parcel client.
func New(api *shipapi.Client) *Client {
	return &Client{api: api}
}

// Create creates a parcel.
func (c *Client) Create(ctx context.Context, params shipapi.Params) (*shipapi.Parcel, error) {
	return shipapi.Call[shipapi.Parcel](ctx, c.api, http.MethodPost, "parcels", nil, params, "")
}

// Retrieve fetches a parcel by id.
func (c *Client) Retrieve(ctx context.Context, id string) (*shipapi.Parcel, error) {
	return shipapi.Call[shipapi.Parcel](ctx, c.api, http.MethodGet, "parcels/{id}", map[string]string{"id": id}, nil, "")
}
