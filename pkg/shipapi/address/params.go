package address

import "github.com/tournevent/shipkit/pkg/shipapi"

// Verification names an address check the API can run.
type Verification string

const (
	VerifyDelivery Verification = "delivery"
	VerifyZip4     Verification = "zip4"
)

// EnumValue implements shipapi.Enum.
func (v Verification) EnumValue() string { return string(v) }

// Parent schema names under which CreateParams may be embedded.
const (
	ParentShipment = "shipment.create"
	ParentPickup   = "pickup.create"
	ParentOrder    = "order.create"
)

// CreateParams describes an address to create, either on its own or embedded
// in a shipment, pickup or order.
type CreateParams struct {
	// ID references an existing address. Only honored when embedded in a
	// shipment or pickup.
	ID *string

	Name            *string
	Company         *string
	Street1         *string
	Street2         *string
	City            *string
	State           *string
	Zip             *string
	Country         *string
	Phone           *string
	Email           *string
	FederalTaxID    *string
	StateTaxID      *string
	CarrierFacility *string

	// Residential is accepted at top level and when embedded in a shipment.
	Residential *bool

	ToVerify       []Verification
	ToVerifyStrict []Verification
}

// Schema implements shipapi.ParameterSet.
func (p *CreateParams) Schema() shipapi.Schema {
	fields := []shipapi.Field{
		{Name: "ID", Path: []string{"id"}, Nesting: shipapi.Nested, Parents: []string{ParentShipment, ParentPickup}, Value: shipapi.Ptr(p.ID)},
	}

	for _, attr := range p.attributes() {
		fields = append(fields,
			shipapi.Field{Name: attr.name, Path: []string{"address", attr.key}, Value: attr.value},
			shipapi.Field{Name: attr.name, Path: []string{attr.key}, Nesting: shipapi.Nested, Value: attr.value},
		)
	}

	return shipapi.Schema{
		Name: "address.create",
		Fields: append(fields,
			shipapi.Field{Name: "Residential", Path: []string{"address", "residential"}, Value: shipapi.Ptr(p.Residential)},
			shipapi.Field{Name: "Residential", Path: []string{"residential"}, Nesting: shipapi.Nested, Parents: []string{ParentShipment}, Value: shipapi.Ptr(p.Residential)},
			shipapi.Field{Name: "ToVerify", Path: []string{"verify"}, Value: shipapi.List(p.ToVerify)},
			shipapi.Field{Name: "ToVerifyStrict", Path: []string{"verify_strict"}, Value: shipapi.List(p.ToVerifyStrict)},
		),
	}
}

type attribute struct {
	name  string
	key   string
	value func() (any, bool)
}

// attributes lists the properties bound in every context.
func (p *CreateParams) attributes() []attribute {
	return []attribute{
		{"Name", "name", shipapi.Ptr(p.Name)},
		{"Company", "company", shipapi.Ptr(p.Company)},
		{"Street1", "street1", shipapi.Ptr(p.Street1)},
		{"Street2", "street2", shipapi.Ptr(p.Street2)},
		{"City", "city", shipapi.Ptr(p.City)},
		{"State", "state", shipapi.Ptr(p.State)},
		{"Zip", "zip", shipapi.Ptr(p.Zip)},
		{"Country", "country", shipapi.Ptr(p.Country)},
		{"Phone", "phone", shipapi.Ptr(p.Phone)},
		{"Email", "email", shipapi.Ptr(p.Email)},
		{"FederalTaxID", "federal_tax_id", shipapi.Ptr(p.FederalTaxID)},
		{"StateTaxID", "state_tax_id", shipapi.Ptr(p.StateTaxID)},
		{"CarrierFacility", "carrier_facility", shipapi.Ptr(p.CarrierFacility)},
	}
}
