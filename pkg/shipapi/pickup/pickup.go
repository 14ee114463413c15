// Package pickup schedules and manages carrier pickups.
package pickup

import (
	"context"
	"net/http"
	"time"

	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/tournevent/shipkit/pkg/shipapi/address"
)

// CreateParams describes a pickup window for a purchased shipment.
type CreateParams struct {
	Address          *address.CreateParams
	Shipment         *shipapi.Shipment
	MinDatetime      *time.Time
	MaxDatetime      *time.Time
	Reference        *string
	Instructions     *string
	IsAccountAddress *bool
	CarrierAccounts  []string
}

// Schema implements shipapi.ParameterSet.
func (p *CreateParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: address.ParentPickup,
		Fields: []shipapi.Field{
			{Name: "Address", Path: []string{"pickup", "address"}, Necessity: shipapi.Required, Value: shipapi.Nest(p.Address)},
			{Name: "Shipment", Path: []string{"pickup", "shipment"}, Value: shipapi.Object(p.Shipment)},
			{
				Name:      "MinDatetime",
				Path:      []string{"pickup", "min_datetime"},
				Necessity: shipapi.Required,
				Value:     shipapi.Ptr(p.MinDatetime),
				Rules:     []shipapi.DependentRule{shipapi.Requires("MaxDatetime", shipapi.IsSet(p.MaxDatetime))},
			},
			{Name: "MaxDatetime", Path: []string{"pickup", "max_datetime"}, Necessity: shipapi.Required, Value: shipapi.Ptr(p.MaxDatetime)},
			{Name: "Reference", Path: []string{"pickup", "reference"}, Value: shipapi.Ptr(p.Reference)},
			{Name: "Instructions", Path: []string{"pickup", "instructions"}, Value: shipapi.Ptr(p.Instructions)},
			{Name: "IsAccountAddress", Path: []string{"pickup", "is_account_address"}, Value: shipapi.Ptr(p.IsAccountAddress)},
			{Name: "CarrierAccounts", Path: []string{"pickup", "carrier_accounts"}, Value: shipapi.List(p.CarrierAccounts)},
		},
	}
}

// BuyParams selects the pickup rate to purchase.
type BuyParams struct {
	Carrier *string
	Service *string
}

// Schema implements shipapi.ParameterSet.
func (p *BuyParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "pickup.buy",
		Fields: []shipapi.Field{
			{Name: "Carrier", Path: []string{"carrier"}, Necessity: shipapi.Required, Value: shipapi.Ptr(p.Carrier)},
			{Name: "Service", Path: []string{"service"}, Necessity: shipapi.Required, Value: shipapi.Ptr(p.Service)},
		},
	}
}

// Client is the pickup resource.
type Client struct {
	api *shipapi.Client
}

// New creates a pickup client.
func New(api *shipapi.Client) *Client {
	return &Client{api: api}
}

// Create requests pickup rates for a window.
func (c *Client) Create(ctx context.Context, params shipapi.Params) (*shipapi.Pickup, error) {
	return shipapi.Call[shipapi.Pickup](ctx, c.api, http.MethodPost, "pickups", nil, params, "")
}

// Retrieve fetches a pickup by id.
func (c *Client) Retrieve(ctx context.Context, id string) (*shipapi.Pickup, error) {
	return shipapi.Call[shipapi.Pickup](ctx, c.api, http.MethodGet, "pickups/{id}", segments(id), nil, "")
}

// Buy schedules the pickup with the chosen carrier service.
func (c *Client) Buy(ctx context.Context, id string, params *BuyParams) (*shipapi.Pickup, error) {
	if params == nil {
		params = &BuyParams{}
	}
	return shipapi.Call[shipapi.Pickup](ctx, c.api, http.MethodPost, "pickups/{id}/buy", segments(id), shipapi.Typed(params), "")
}

// Cancel cancels a scheduled pickup.
func (c *Client) Cancel(ctx context.Context, id string) (*shipapi.Pickup, error) {
	return shipapi.Call[shipapi.Pickup](ctx, c.api, http.MethodPost, "pickups/{id}/cancel", segments(id), nil, "")
}

func segments(id string) map[string]string {
	return map[string]string{"id": id}
}
