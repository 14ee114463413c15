package shipapi

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Addresses
// ============================================================================

// Address is a postal address known to the API.
type Address struct {
	ID            string         `json:"id"`
	Object        string         `json:"object,omitempty"`
	Mode          string         `json:"mode,omitempty"`
	Name          string         `json:"name,omitempty"`
	Company       string         `json:"company,omitempty"`
	Street1       string         `json:"street1,omitempty"`
	Street2       string         `json:"street2,omitempty"`
	City          string         `json:"city,omitempty"`
	State         string         `json:"state,omitempty"`
	Zip           string         `json:"zip,omitempty"`
	Country       string         `json:"country,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Email         string         `json:"email,omitempty"`
	Residential   *bool          `json:"residential,omitempty"`
	Verifications *Verifications `json:"verifications,omitempty"`
	CreatedAt     *time.Time     `json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

// Verifications holds the results of the requested address checks.
type Verifications struct {
	Delivery *Verification `json:"delivery,omitempty"`
	Zip4     *Verification `json:"zip4,omitempty"`
}

// Verification is the outcome of one address check.
type Verification struct {
	Success bool           `json:"success"`
	Errors  []FieldError   `json:"errors,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func (a *Address) GetID() string { return a.ID }

func (a *Address) Projection() map[string]any { return map[string]any{"id": a.ID} }

// ============================================================================
// Parcels, rates and shipments
// ============================================================================

// Parcel describes package dimensions in inches and weight in ounces.
type Parcel struct {
	ID                string     `json:"id"`
	Object            string     `json:"object,omitempty"`
	Length            float64    `json:"length,omitempty"`
	Width             float64    `json:"width,omitempty"`
	Height            float64    `json:"height,omitempty"`
	Weight            float64    `json:"weight"`
	PredefinedPackage string     `json:"predefined_package,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

func (p *Parcel) GetID() string { return p.ID }

func (p *Parcel) Projection() map[string]any { return map[string]any{"id": p.ID} }

// Rate is a priced carrier service offered for a shipment.
type Rate struct {
	ID               string `json:"id"`
	Object           string `json:"object,omitempty"`
	Carrier          string `json:"carrier"`
	Service          string `json:"service"`
	Rate             string `json:"rate"`
	Currency         string `json:"currency,omitempty"`
	ShipmentID       string `json:"shipment_id,omitempty"`
	CarrierAccountID string `json:"carrier_account_id,omitempty"`
	DeliveryDays     *int   `json:"delivery_days,omitempty"`
}

func (r *Rate) GetID() string { return r.ID }

func (r *Rate) Projection() map[string]any { return map[string]any{"id": r.ID} }

// PostageLabel is the purchased label of a shipment.
type PostageLabel struct {
	ID            string `json:"id"`
	LabelURL      string `json:"label_url,omitempty"`
	LabelPDFURL   string `json:"label_pdf_url,omitempty"`
	LabelZPLURL   string `json:"label_zpl_url,omitempty"`
	LabelFileType string `json:"label_file_type,omitempty"`
}

// Message is a carrier message attached to a shipment.
type Message struct {
	Carrier string `json:"carrier"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Shipment ties addresses and a parcel to the rates offered for them.
type Shipment struct {
	ID            string        `json:"id"`
	Object        string        `json:"object,omitempty"`
	Mode          string        `json:"mode,omitempty"`
	Reference     string        `json:"reference,omitempty"`
	Status        string        `json:"status,omitempty"`
	ToAddress     *Address      `json:"to_address,omitempty"`
	FromAddress   *Address      `json:"from_address,omitempty"`
	ReturnAddress *Address      `json:"return_address,omitempty"`
	Parcel        *Parcel       `json:"parcel,omitempty"`
	Rates         []*Rate       `json:"rates,omitempty"`
	SelectedRate  *Rate         `json:"selected_rate,omitempty"`
	PostageLabel  *PostageLabel `json:"postage_label,omitempty"`
	TrackingCode  string        `json:"tracking_code,omitempty"`
	Tracker       *Tracker      `json:"tracker,omitempty"`
	RefundStatus  string        `json:"refund_status,omitempty"`
	Insurance     string        `json:"insurance,omitempty"`
	Messages      []Message     `json:"messages,omitempty"`
	CreatedAt     *time.Time    `json:"created_at,omitempty"`
}

func (s *Shipment) GetID() string { return s.ID }

func (s *Shipment) Projection() map[string]any { return map[string]any{"id": s.ID} }

// ============================================================================
// Tracking
// ============================================================================

// Tracker follows a package through a carrier's network.
type Tracker struct {
	ID              string           `json:"id"`
	Object          string           `json:"object,omitempty"`
	Mode            string           `json:"mode,omitempty"`
	TrackingCode    string           `json:"tracking_code"`
	Carrier         string           `json:"carrier,omitempty"`
	Status          string           `json:"status,omitempty"`
	StatusDetail    string           `json:"status_detail,omitempty"`
	ShipmentID      string           `json:"shipment_id,omitempty"`
	PublicURL       string           `json:"public_url,omitempty"`
	EstDeliveryDate *time.Time       `json:"est_delivery_date,omitempty"`
	TrackingDetails []TrackingDetail `json:"tracking_details,omitempty"`
	CreatedAt       *time.Time       `json:"created_at,omitempty"`
}

// TrackingDetail is one scan event.
type TrackingDetail struct {
	Message          string            `json:"message,omitempty"`
	Status           string            `json:"status,omitempty"`
	StatusDetail     string            `json:"status_detail,omitempty"`
	Source           string            `json:"source,omitempty"`
	Datetime         *time.Time        `json:"datetime,omitempty"`
	TrackingLocation *TrackingLocation `json:"tracking_location,omitempty"`
}

// TrackingLocation is where a scan happened.
type TrackingLocation struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

func (t *Tracker) GetID() string { return t.ID }

// ============================================================================
// Webhooks and events
// ============================================================================

// Webhook is a registered event callback URL.
type Webhook struct {
	ID         string     `json:"id"`
	Object     string     `json:"object,omitempty"`
	Mode       string     `json:"mode,omitempty"`
	URL        string     `json:"url"`
	DisabledAt *time.Time `json:"disabled_at,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

func (w *Webhook) GetID() string { return w.ID }

// Event is a webhook notification.
type Event struct {
	ID                 string          `json:"id"`
	Object             string          `json:"object,omitempty"`
	Mode               string          `json:"mode,omitempty"`
	Description        string          `json:"description"`
	Status             string          `json:"status,omitempty"`
	PreviousAttributes map[string]any  `json:"previous_attributes,omitempty"`
	Result             json.RawMessage `json:"result,omitempty"`
	PendingURLs        []string        `json:"pending_urls,omitempty"`
	CompletedURLs      []string        `json:"completed_urls,omitempty"`
	CreatedAt          *time.Time      `json:"created_at,omitempty"`
}

func (e *Event) GetID() string { return e.ID }

// ============================================================================
// Pickups
// ============================================================================

// Pickup is a scheduled carrier collection.
type Pickup struct {
	ID           string        `json:"id"`
	Object       string        `json:"object,omitempty"`
	Reference    string        `json:"reference,omitempty"`
	Status       string        `json:"status,omitempty"`
	Confirmation string        `json:"confirmation,omitempty"`
	MinDatetime  *time.Time    `json:"min_datetime,omitempty"`
	MaxDatetime  *time.Time    `json:"max_datetime,omitempty"`
	Instructions string        `json:"instructions,omitempty"`
	Address      *Address      `json:"address,omitempty"`
	PickupRates  []*PickupRate `json:"pickup_rates,omitempty"`
}

// PickupRate is a priced pickup option.
type PickupRate struct {
	ID       string `json:"id"`
	Carrier  string `json:"carrier"`
	Service  string `json:"service"`
	Rate     string `json:"rate"`
	Currency string `json:"currency,omitempty"`
}

func (p *Pickup) GetID() string { return p.ID }

func (p *Pickup) Projection() map[string]any { return map[string]any{"id": p.ID} }

// ============================================================================
// Billing and referrals
// ============================================================================

// PaymentMethod is a card or bank account on file.
type PaymentMethod struct {
	ID       string `json:"id"`
	Object   string `json:"object,omitempty"`
	Name     string `json:"name,omitempty"`
	Last4    string `json:"last4,omitempty"`
	ExpMonth int    `json:"exp_month,omitempty"`
	ExpYear  int    `json:"exp_year,omitempty"`
	BankName string `json:"bank_name,omitempty"`
}

// PaymentMethods lists the primary and secondary payment methods of a user.
type PaymentMethods struct {
	ID                     string         `json:"id"`
	PrimaryPaymentMethod   *PaymentMethod `json:"primary_payment_method,omitempty"`
	SecondaryPaymentMethod *PaymentMethod `json:"secondary_payment_method,omitempty"`
}

// APIKey is a credential issued to a user.
type APIKey struct {
	ID   string `json:"id,omitempty"`
	Mode string `json:"mode"`
	Key  string `json:"key"`
}

// ReferralCustomer is a user created on behalf of a partner.
type ReferralCustomer struct {
	ID      string     `json:"id"`
	Object  string     `json:"object,omitempty"`
	Name    string     `json:"name,omitempty"`
	Email   string     `json:"email,omitempty"`
	Phone   string     `json:"phone_number,omitempty"`
	APIKeys []APIKey   `json:"api_keys,omitempty"`
	Created *time.Time `json:"created_at,omitempty"`
}

func (r *ReferralCustomer) GetID() string { return r.ID }

// ProductionKey returns the customer's production API key, if any.
func (r *ReferralCustomer) ProductionKey() (string, bool) {
	for _, key := range r.APIKeys {
		if key.Mode == "production" {
			return key.Key, true
		}
	}
	return "", false
}
