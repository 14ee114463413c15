package shipment_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/tournevent/shipkit/pkg/shipapi/address"
	"github.com/tournevent/shipkit/pkg/shipapi/mock"
	"github.com/tournevent/shipkit/pkg/shipapi/parcel"
	"github.com/tournevent/shipkit/pkg/shipapi/shipment"
)

func ptr[T any](v T) *T { return &v }

func newCreateParams() *shipment.CreateParams {
	return &shipment.CreateParams{
		ToAddress: &address.CreateParams{
			Name:        ptr("Dr. Steve Brule"),
			Street1:     ptr("179 N Harbor Dr"),
			City:        ptr("Redondo Beach"),
			State:       ptr("CA"),
			Zip:         ptr("90277"),
			Country:     ptr("US"),
			Residential: ptr(true),
			ToVerify:    []address.Verification{address.VerifyDelivery},
		},
		FromAddress: &address.CreateParams{ID: ptr("adr_from")},
		Parcel:      &parcel.CreateParams{Weight: ptr(21.2)},
		Reference:   ptr("order-42"),
	}
}

func TestCreateParams_NestedAddresses(t *testing.T) {
	wire, err := shipapi.Serialize(newCreateParams())
	require.NoError(t, err)

	to, ok := wire.Lookup("shipment", "to_address")
	require.True(t, ok)
	toMap := to.(*shipapi.WireMap).ToMap()
	assert.Equal(t, "Dr. Steve Brule", toMap["name"])
	assert.Equal(t, true, toMap["residential"])
	assert.NotContains(t, toMap, "verify")
	assert.NotContains(t, toMap, "address")

	from, ok := wire.Lookup("shipment", "from_address", "id")
	require.True(t, ok)
	assert.Equal(t, "adr_from", from)

	weight, ok := wire.Lookup("shipment", "parcel", "weight")
	require.True(t, ok)
	assert.Equal(t, 21.2, weight)
}

func TestCreateParams_RequiresParcel(t *testing.T) {
	params := newCreateParams()
	params.Parcel = nil

	_, err := shipapi.Serialize(params)

	var apiErr *shipapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, shipapi.KindMissingParameter, apiErr.Kind)
	assert.Equal(t, "Parcel", apiErr.Field)
}

func TestClient_CreateAndBuyLowestRate(t *testing.T) {
	transport := mock.NewTransport().
		Handle(http.MethodPost, "shipments", http.StatusCreated, map[string]any{
			"id": "shp_1",
			"rates": []map[string]any{
				{"id": "rate_a", "carrier": "USPS", "service": "Priority", "rate": "7.58"},
				{"id": "rate_b", "carrier": "USPS", "service": "First", "rate": "5.49"},
				{"id": "rate_c", "carrier": "UPS", "service": "Ground", "rate": "4.99"},
			},
		}).
		Handle(http.MethodPost, "shipments/shp_1/buy", http.StatusOK, map[string]any{
			"id":            "shp_1",
			"tracking_code": "9400100000000000000000",
			"selected_rate": map[string]any{"id": "rate_b"},
		})
	client := shipment.New(transport.Client())
	ctx := context.Background()

	created, err := client.Create(ctx, shipapi.Typed(newCreateParams()))
	require.NoError(t, err)
	require.Len(t, created.Rates, 3)

	rate, err := shipment.LowestRate(created, []string{"usps"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "rate_b", rate.ID)

	bought, err := client.Buy(ctx, created.ID, &shipment.BuyParams{Rate: rate, Insurance: ptr("100.00")})
	require.NoError(t, err)
	assert.Equal(t, "9400100000000000000000", bought.TrackingCode)

	assert.JSONEq(t, `{"rate":{"id":"rate_b"},"insurance":"100.00"}`, string(transport.Last().Body))
}

func TestClient_BuyRequiresRate(t *testing.T) {
	transport := mock.NewTransport()
	client := shipment.New(transport.Client())

	_, err := client.Buy(context.Background(), "shp_1", nil)

	assert.True(t, errors.Is(err, shipapi.ErrMissingParameter))
	assert.Empty(t, transport.Requests())
}

func TestLowestRate_NoMatch(t *testing.T) {
	s := &shipapi.Shipment{Rates: []*shipapi.Rate{{ID: "r", Carrier: "USPS", Service: "Priority", Rate: "1.00"}}}

	_, err := shipment.LowestRate(s, []string{"FedEx"}, nil)
	assert.ErrorIs(t, err, shipment.ErrNoMatchingRate)
}

func TestClient_RegenerateRates(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodPost, "shipments/shp_1/rerate", http.StatusOK,
		`{"rates":[{"id":"rate_x","carrier":"USPS","service":"Priority","rate":"8.00"}]}`)
	client := shipment.New(transport.Client())

	rates, err := client.RegenerateRates(context.Background(), "shp_1")
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "rate_x", rates[0].ID)
	assert.Equal(t, "{}", string(transport.Last().Body))
}

func TestClient_Label(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodGet, "shipments/shp_1/label", http.StatusOK,
		`{"id":"shp_1","postage_label":{"id":"pl_1","label_zpl_url":"https://labels.example/1.zpl"}}`)
	client := shipment.New(transport.Client())

	s, err := client.Label(context.Background(), "shp_1", shipment.LabelZPL)
	require.NoError(t, err)
	assert.Equal(t, "https://labels.example/1.zpl", s.PostageLabel.LabelZPLURL)
	assert.Equal(t, "ZPL", transport.Last().Query.Get("file_format"))
}

func TestClient_Refund(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodPost, "shipments/shp_1/refund", http.StatusOK,
		`{"id":"shp_1","refund_status":"submitted"}`)
	client := shipment.New(transport.Client())

	s, err := client.Refund(context.Background(), "shp_1")
	require.NoError(t, err)
	assert.Equal(t, "submitted", s.RefundStatus)
}

func TestClient_AllWithFilters(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodGet, "shipments", http.StatusOK,
		`{"shipments":[{"id":"shp_2"},{"id":"shp_1"}],"has_more":true}`)
	client := shipment.New(transport.Client())
	ctx := context.Background()

	page, err := client.All(ctx, &shipment.ListParams{Purchased: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "false", transport.Last().Query.Get("purchased"))

	next, err := client.Next(ctx, page, ptr(5))
	require.NoError(t, err)
	query := transport.Last().Query
	assert.Equal(t, "shp_1", query.Get("before_id"))
	assert.Equal(t, "5", query.Get("page_size"))
	assert.Equal(t, "false", query.Get("purchased"))
	assert.False(t, *next.Filters.Purchased)
}
