// Package shipment rates, buys and refunds shipments.
package shipment

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/tournevent/shipkit/pkg/shipapi"
)

// ErrNoMatchingRate is returned by LowestRate when no rate passes the filters.
var ErrNoMatchingRate = errors.New("shipment: no rate matches the given filters")

// Collection is one page of shipments.
type Collection = shipapi.Collection[*shipapi.Shipment, *ListParams]

// Client is the shipment resource.
type Client struct {
	api *shipapi.Client
}

// New creates a shipment client.
func New(api *shipapi.Client) *Client {
	return &Client{api: api}
}

// Create creates a shipment and returns it with its rates.
func (c *Client) Create(ctx context.Context, params shipapi.Params) (*shipapi.Shipment, error) {
	return shipapi.Call[shipapi.Shipment](ctx, c.api, http.MethodPost, "shipments", nil, params, "")
}

// Retrieve fetches a shipment by id.
func (c *Client) Retrieve(ctx context.Context, id string) (*shipapi.Shipment, error) {
	return shipapi.Call[shipapi.Shipment](ctx, c.api, http.MethodGet, "shipments/{id}", segments(id), nil, "")
}

// All lists shipments, newest first.
func (c *Client) All(ctx context.Context, params *ListParams) (*Collection, error) {
	if params == nil {
		params = &ListParams{}
	}
	return shipapi.ListCollection[*shipapi.Shipment](ctx, c.api, "shipments", "shipments", params)
}

// Next fetches the page after page.
func (c *Client) Next(ctx context.Context, page *Collection, pageSize *int) (*Collection, error) {
	return shipapi.NextPage(ctx, page, c.All, pageSize)
}

// Buy purchases the selected rate.
func (c *Client) Buy(ctx context.Context, id string, params *BuyParams) (*shipapi.Shipment, error) {
	if params == nil {
		params = &BuyParams{}
	}
	return shipapi.Call[shipapi.Shipment](ctx, c.api, http.MethodPost, "shipments/{id}/buy", segments(id), shipapi.Typed(params), "")
}

// Refund requests a refund of the purchased label.
func (c *Client) Refund(ctx context.Context, id string) (*shipapi.Shipment, error) {
	return shipapi.Call[shipapi.Shipment](ctx, c.api, http.MethodPost, "shipments/{id}/refund", segments(id), nil, "")
}

// RegenerateRates asks the carriers to quote the shipment again.
func (c *Client) RegenerateRates(ctx context.Context, id string) ([]*shipapi.Rate, error) {
	rates, err := shipapi.Call[[]*shipapi.Rate](ctx, c.api, http.MethodPost, "shipments/{id}/rerate", segments(id), nil, "rates")
	if err != nil {
		return nil, err
	}
	return *rates, nil
}

// Label converts the purchased label to format.
func (c *Client) Label(ctx context.Context, id string, format LabelFormat) (*shipapi.Shipment, error) {
	return shipapi.Call[shipapi.Shipment](ctx, c.api, http.MethodGet, "shipments/{id}/label", segments(id), shipapi.Typed(&labelParams{format: format}), "")
}

// LowestRate returns the cheapest rate of s, optionally restricted to the
// given carriers and services. Matching is case-insensitive.
func LowestRate(s *shipapi.Shipment, carriers, services []string) (*shipapi.Rate, error) {
	var (
		lowest      *shipapi.Rate
		lowestPrice float64
	)

	for _, rate := range s.Rates {
		if !matches(carriers, rate.Carrier) || !matches(services, rate.Service) {
			continue
		}
		price, err := strconv.ParseFloat(rate.Rate, 64)
		if err != nil {
			continue
		}
		if lowest == nil || price < lowestPrice {
			lowest, lowestPrice = rate, price
		}
	}

	if lowest == nil {
		return nil, ErrNoMatchingRate
	}
	return lowest, nil
}

func matches(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, value) {
			return true
		}
	}
	return false
}

func segments(id string) map[string]string {
	return map[string]string{"id": id}
}
