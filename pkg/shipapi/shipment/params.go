package shipment

import (
	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/tournevent/shipkit/pkg/shipapi/address"
	"github.com/tournevent/shipkit/pkg/shipapi/parcel"
)

// CreateParams describes a shipment to rate.
type CreateParams struct {
	ToAddress       *address.CreateParams
	FromAddress     *address.CreateParams
	ReturnAddress   *address.CreateParams
	BuyerAddress    *address.CreateParams
	Parcel          *parcel.CreateParams
	CarrierAccounts []string
	Service         *string
	Reference       *string
	IsReturn        *bool
	Options         map[string]any
}

// Schema implements shipapi.ParameterSet.
func (p *CreateParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: address.ParentShipment,
		Fields: []shipapi.Field{
			{Name: "ToAddress", Path: []string{"shipment", "to_address"}, Necessity: shipapi.Required, Value: shipapi.Nest(p.ToAddress)},
			{Name: "FromAddress", Path: []string{"shipment", "from_address"}, Necessity: shipapi.Required, Value: shipapi.Nest(p.FromAddress)},
			{Name: "ReturnAddress", Path: []string{"shipment", "return_address"}, Value: shipapi.Nest(p.ReturnAddress)},
			{Name: "BuyerAddress", Path: []string{"shipment", "buyer_address"}, Value: shipapi.Nest(p.BuyerAddress)},
			{Name: "Parcel", Path: []string{"shipment", "parcel"}, Necessity: shipapi.Required, Value: shipapi.Nest(p.Parcel)},
			{Name: "CarrierAccounts", Path: []string{"shipment", "carrier_accounts"}, Value: shipapi.List(p.CarrierAccounts)},
			{Name: "Service", Path: []string{"shipment", "service"}, Value: shipapi.Ptr(p.Service)},
			{Name: "Reference", Path: []string{"shipment", "reference"}, Value: shipapi.Ptr(p.Reference)},
			{Name: "IsReturn", Path: []string{"shipment", "is_return"}, Value: shipapi.Ptr(p.IsReturn)},
			{Name: "Options", Path: []string{"shipment", "options"}, Value: shipapi.Map(p.Options)},
		},
	}
}

// ListParams filters the shipment list.
type ListParams struct {
	shipapi.ListParams

	Purchased       *bool
	IncludeChildren *bool
}

// Schema implements shipapi.ParameterSet.
func (l *ListParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "shipment.list",
		Fields: append(l.ListParams.Fields(),
			shipapi.Field{Name: "Purchased", Path: []string{"purchased"}, Value: shipapi.Ptr(l.Purchased)},
			shipapi.Field{Name: "IncludeChildren", Path: []string{"include_children"}, Value: shipapi.Ptr(l.IncludeChildren)},
		),
	}
}

// Clone implements shipapi.Paginated.
func (l *ListParams) Clone() *ListParams {
	if l == nil {
		return &ListParams{}
	}
	return &ListParams{
		ListParams:      l.ListParams.Copy(),
		Purchased:       shipapi.ClonePtr(l.Purchased),
		IncludeChildren: shipapi.ClonePtr(l.IncludeChildren),
	}
}

// WithCursor implements shipapi.Paginated.
func (l *ListParams) WithCursor(beforeID string, pageSize *int) *ListParams {
	next := l.Clone()
	next.ListParams = next.ListParams.Cursor(beforeID, pageSize)
	return next
}

// BuyParams selects the rate to purchase.
type BuyParams struct {
	Rate         *shipapi.Rate
	Insurance    *string
	EndShipperID *string
}

// Schema implements shipapi.ParameterSet.
func (p *BuyParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "shipment.buy",
		Fields: []shipapi.Field{
			{Name: "Rate", Path: []string{"rate"}, Necessity: shipapi.Required, Value: shipapi.Object(p.Rate)},
			{Name: "Insurance", Path: []string{"insurance"}, Value: shipapi.Ptr(p.Insurance)},
			{Name: "EndShipperID", Path: []string{"end_shipper_id"}, Value: shipapi.Ptr(p.EndShipperID)},
		},
	}
}

// LabelFormat is a label file type.
type LabelFormat string

const (
	LabelPNG LabelFormat = "PNG"
	LabelPDF LabelFormat = "PDF"
	LabelZPL LabelFormat = "ZPL"
	LabelEPL LabelFormat = "EPL2"
)

// EnumValue implements shipapi.Enum.
func (f LabelFormat) EnumValue() string { return string(f) }

type labelParams struct {
	format LabelFormat
}

func (p *labelParams) Schema() shipapi.Schema {
	return shipapi.Schema{
		Name: "shipment.label",
		Fields: []shipapi.Field{
			{Name: "FileFormat", Path: []string{"file_format"}, Necessity: shipapi.Required, Value: func() (any, bool) {
				return p.format, p.format != ""
			}},
		},
	}
}
