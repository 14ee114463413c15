// Package referral manages customers created on behalf of a partner.
package referral

import (
	"context"
	"net/http"

	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/tournevent/shipkit/pkg/shipapi/billing"
)

// CreateParams describes a referral customer.
type CreateParams struct {
	Name  *string
	Email *string
	Phone *string
}

// Schema implements shipapi.ParameterSet.
func (p *CreateParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "referral.create",
		Fields: []shipapi.Field{
			{Name: "Name", Path: []string{"user", "name"}, Necessity: shipapi.Required, Value: shipapi.Ptr(p.Name)},
			{Name: "Email", Path: []string{"user", "email"}, Necessity: shipapi.Required, Value: shipapi.Ptr(p.Email)},
			{Name: "Phone", Path: []string{"user", "phone_number"}, Necessity: shipapi.Required, Value: shipapi.Ptr(p.Phone)},
		},
	}
}

// CreditCardParams attaches a tokenized card to a referral customer.
type CreditCardParams struct {
	// StripeObjectID is the card token issued by the payment processor.
	StripeObjectID *string
	Priority       *billing.Priority
}

// Schema implements shipapi.ParameterSet.
func (p *CreditCardParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "referral.credit_card",
		Fields: []shipapi.Field{
			{Name: "StripeObjectID", Path: []string{"credit_card", "stripe_object_id"}, Necessity: shipapi.Required, Value: shipapi.Ptr(p.StripeObjectID)},
			{Name: "Priority", Path: []string{"credit_card", "priority"}, Value: shipapi.Ptr(p.Priority)},
		},
	}
}

type emailParams struct {
	email string
}

func (p *emailParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "referral.update",
		Fields: []shipapi.Field{
			{Name: "Email", Path: []string{"user", "email"}, Necessity: shipapi.Required, Value: func() (any, bool) {
				return p.email, p.email != ""
			}},
		},
	}
}

// Collection is one page of referral customers.
type Collection = shipapi.Collection[*shipapi.ReferralCustomer, *shipapi.ListParams]

// Client is the referral customer resource. It must be built with a
// partner API key.
type Client struct {
	api *shipapi.Client
}

// New creates a referral client.
func New(api *shipapi.Client) *Client {
	return &Client{api: api}
}

// Create creates a referral customer.
func (c *Client) Create(ctx context.Context, params shipapi.Params) (*shipapi.ReferralCustomer, error) {
	return shipapi.Call[shipapi.ReferralCustomer](ctx, c.api, http.MethodPost, "referral_customers", nil, params, "")
}

// All lists referral customers.
func (c *Client) All(ctx context.Context, params *shipapi.ListParams) (*Collection, error) {
	if params == nil {
		params = &shipapi.ListParams{}
	}
	return shipapi.ListCollection[*shipapi.ReferralCustomer](ctx, c.api, "referral_customers", "referral_customers", params)
}

// Next fetches the page after page.
func (c *Client) Next(ctx context.Context, page *Collection, pageSize *int) (*Collection, error) {
	return shipapi.NextPage(ctx, page, c.All, pageSize)
}

// UpdateEmail changes the email of a referral customer.
func (c *Client) UpdateEmail(ctx context.Context, userID, email string) error {
	wire, err := shipapi.Serialize(&emailParams{email: email})
	if err != nil {
		return err
	}
	req, err := shipapi.NewRequest(http.MethodPut, "referral_customers/{id}", map[string]string{"id": userID}, wire, "")
	if err != nil {
		return err
	}
	return c.api.ExecuteNoResponse(ctx, req)
}

// AddCreditCard adds a card to the referral customer owning referralAPIKey.
// The call is made with that key; the partner client is left untouched.
func (c *Client) AddCreditCard(ctx context.Context, referralAPIKey string, params *CreditCardParams) (*shipapi.PaymentMethod, error) {
	if params == nil {
		params = &CreditCardParams{}
	}

	var card *shipapi.PaymentMethod
	err := c.api.As(ctx, referralAPIKey, func(ctx context.Context, scoped *shipapi.Client) error {
		var err error
		card, err = shipapi.Call[shipapi.PaymentMethod](ctx, scoped, http.MethodPost, "credit_cards", nil, shipapi.Typed(params), "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}
