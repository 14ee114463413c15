// Package billing funds the wallet and manages payment methods.
package billing

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tournevent/shipkit/pkg/shipapi"
)

// Priority selects one of the two payment methods on file.
type Priority string

const (
	Primary   Priority = "primary"
	Secondary Priority = "secondary"
)

// EnumValue implements shipapi.Enum.
func (p Priority) EnumValue() string { return string(p) }

type fundParams struct {
	amount string
}

func (p *fundParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "billing.fund",
		Fields: []shipapi.Field{
			{Name: "Amount", Path: []string{"amount"}, Necessity: shipapi.Required, Value: func() (any, bool) {
				return p.amount, p.amount != ""
			}},
		},
	}
}

// Client is the billing resource.
type Client struct {
	api *shipapi.Client
}

// New creates a billing client.
func New(api *shipapi.Client) *Client {
	return &Client{api: api}
}

// RetrievePaymentMethods returns the payment methods on file.
func (c *Client) RetrievePaymentMethods(ctx context.Context) (*shipapi.PaymentMethods, error) {
	methods, err := shipapi.Call[shipapi.PaymentMethods](ctx, c.api, http.MethodGet, "payment_methods", nil, nil, "")
	if err != nil {
		return nil, err
	}
	if methods.ID == "" {
		return nil, shipapi.NewError(shipapi.KindInvalidRequest, "billing has not been set up for this account")
	}
	return methods, nil
}

// FundWallet charges amount, in cents, to the payment method of the given
// priority.
func (c *Client) FundWallet(ctx context.Context, amount string, priority Priority) (bool, error) {
	endpoint, id, err := c.paymentMethod(ctx, priority)
	if err != nil {
		return false, err
	}

	req, err := buildRequest(http.MethodPost, endpoint+"/{id}/charges", id, &fundParams{amount: amount})
	if err != nil {
		return false, err
	}
	if err := c.api.ExecuteNoResponse(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}

// DeletePaymentMethod removes the payment method of the given priority.
func (c *Client) DeletePaymentMethod(ctx context.Context, priority Priority) (bool, error) {
	endpoint, id, err := c.paymentMethod(ctx, priority)
	if err != nil {
		return false, err
	}

	req, err := buildRequest(http.MethodDelete, endpoint+"/{id}", id, nil)
	if err != nil {
		return false, err
	}
	if err := c.api.ExecuteNoResponse(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}

func buildRequest(method, path, id string, params shipapi.ParameterSet) (*shipapi.Request, error) {
	var wire *shipapi.WireMap
	if params != nil {
		var err error
		if wire, err = shipapi.Serialize(params); err != nil {
			return nil, err
		}
	}
	return shipapi.NewRequest(method, path, map[string]string{"id": id}, wire, "")
}

// paymentMethod resolves the endpoint and id of the method with priority.
func (c *Client) paymentMethod(ctx context.Context, priority Priority) (string, string, error) {
	methods, err := c.RetrievePaymentMethods(ctx)
	if err != nil {
		return "", "", err
	}

	var method *shipapi.PaymentMethod
	switch priority {
	case Primary:
		method = methods.PrimaryPaymentMethod
	case Secondary:
		method = methods.SecondaryPaymentMethod
	default:
		return "", "", shipapi.NewError(shipapi.KindInvalidParameter, fmt.Sprintf("unknown payment method priority %q", priority))
	}
	if method == nil || method.ID == "" {
		return "", "", shipapi.NewError(shipapi.KindInvalidRequest, fmt.Sprintf("no %s payment method on file", priority))
	}

	switch {
	case method.Object == "CreditCard" || strings.HasPrefix(method.ID, "card_"):
		return "credit_cards", method.ID, nil
	case method.Object == "BankAccount" || strings.HasPrefix(method.ID, "bank_"):
		return "bank_accounts", method.ID, nil
	default:
		return "", "", shipapi.NewError(shipapi.KindInvalidRequest, fmt.Sprintf("unsupported payment method %s", method.ID))
	}
}
