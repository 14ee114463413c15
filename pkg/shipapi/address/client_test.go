package address_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/tournevent/shipkit/pkg/shipapi/address"
	"github.com/tournevent/shipkit/pkg/shipapi/mock"
)

func ptr[T any](v T) *T { return &v }

func TestCreateParams_NameAndVerify(t *testing.T) {
	params := &address.CreateParams{
		Name:     ptr("Bob"),
		ToVerify: []address.Verification{address.VerifyDelivery},
	}

	wire, err := shipapi.Serialize(params)
	require.NoError(t, err)

	b, err := json.Marshal(wire)
	require.NoError(t, err)
	assert.Equal(t, `{"address":{"name":"Bob"},"verify":["delivery"]}`, string(b))
}

func TestCreateParams_IDIgnoredAtTopLevel(t *testing.T) {
	wire, err := shipapi.Serialize(&address.CreateParams{ID: ptr("adr_1"), City: ptr("Boston")})
	require.NoError(t, err)

	_, ok := wire.Get("id")
	assert.False(t, ok)
	_, ok = wire.Lookup("address", "id")
	assert.False(t, ok)
}

type shipmentLike struct{ To *address.CreateParams }

func (s *shipmentLike) Schema() shipapi.Schema {
	return shipapi.Schema{Name: address.ParentShipment, Fields: []shipapi.Field{
		{Name: "To", Path: []string{"shipment", "to_address"}, Value: shipapi.Nest(s.To)},
	}}
}

type orderLike struct{ To *address.CreateParams }

func (s *orderLike) Schema() shipapi.Schema {
	return shipapi.Schema{Name: address.ParentOrder, Fields: []shipapi.Field{
		{Name: "To", Path: []string{"order", "to_address"}, Value: shipapi.Nest(s.To)},
	}}
}

func TestCreateParams_NestedDependsOnParent(t *testing.T) {
	to := &address.CreateParams{ID: ptr("adr_1"), Residential: ptr(true), Street1: ptr("1 Main St")}

	shipmentWire, err := shipapi.Serialize(&shipmentLike{To: to})
	require.NoError(t, err)
	orderWire, err := shipapi.Serialize(&orderLike{To: to})
	require.NoError(t, err)

	b, _ := json.Marshal(shipmentWire)
	assert.JSONEq(t, `{"shipment":{"to_address":{"id":"adr_1","street1":"1 Main St","residential":true}}}`, string(b))

	b, _ = json.Marshal(orderWire)
	assert.JSONEq(t, `{"order":{"to_address":{"street1":"1 Main St"}}}`, string(b))
}

func TestClient_Create(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodPost, "addresses", http.StatusCreated, map[string]any{
		"id":   "adr_123",
		"name": "BOB",
	})
	client := address.New(transport.Client())

	addr, err := client.Create(context.Background(), shipapi.Typed(&address.CreateParams{
		Name:     ptr("Bob"),
		ToVerify: []address.Verification{address.VerifyDelivery},
	}))
	require.NoError(t, err)
	assert.Equal(t, "adr_123", addr.ID)

	assert.JSONEq(t, `{"address":{"name":"Bob"},"verify":["delivery"]}`, string(transport.Last().Body))
}

func TestClient_CreateRawParams(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodPost, "addresses", http.StatusCreated, map[string]any{"id": "adr_1"})
	client := address.New(transport.Client())

	_, err := client.Create(context.Background(), shipapi.Raw(map[string]any{
		"address": map[string]any{"street1": "417 Montgomery St"},
	}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"address":{"street1":"417 Montgomery St"}}`, string(transport.Last().Body))
}

func TestClient_CreateAndVerify(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodPost, "addresses/create_and_verify", http.StatusOK, map[string]any{
		"address": map[string]any{
			"id": "adr_9",
			"verifications": map[string]any{
				"delivery": map[string]any{"success": true},
			},
		},
	})
	client := address.New(transport.Client())

	addr, err := client.CreateAndVerify(context.Background(), shipapi.Typed(&address.CreateParams{Street1: ptr("1 Main")}))
	require.NoError(t, err)
	assert.Equal(t, "adr_9", addr.ID)
	require.NotNil(t, addr.Verifications)
	assert.True(t, addr.Verifications.Delivery.Success)
}

func TestClient_RetrieveNotFound(t *testing.T) {
	client := address.New(mock.NewTransport().Client())

	_, err := client.Retrieve(context.Background(), "adr_missing")

	assert.True(t, errors.Is(err, shipapi.ErrNotFound))
	var apiErr *shipapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "The requested resource could not be found.", apiErr.Message)
}

func TestClient_RetrieveNotFoundNoDetails(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodGet, "addresses/adr_x", http.StatusNotFound, "not json")
	client := address.New(transport.Client())

	_, err := client.Retrieve(context.Background(), "adr_x")

	var apiErr *shipapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, shipapi.KindNotFound, apiErr.Kind)
	assert.Equal(t, shipapi.GenericErrorMessage, apiErr.Message)
}

func TestClient_Verify(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodGet, "addresses/adr_1/verify", http.StatusOK, `{"address":{"id":"adr_1"}}`)
	client := address.New(transport.Client())

	addr, err := client.Verify(context.Background(), "adr_1")
	require.NoError(t, err)
	assert.Equal(t, "adr_1", addr.ID)
}

func TestClient_AllAndNext(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodGet, "addresses", http.StatusOK,
		`{"addresses":[{"id":"adr_a"},{"id":"adr_b"}],"has_more":true}`)
	client := address.New(transport.Client())
	ctx := context.Background()

	page, err := client.All(ctx, &shipapi.ListParams{PageSize: ptr(2)})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "2", transport.Last().Query.Get("page_size"))

	_, err = client.Next(ctx, page, nil)
	require.NoError(t, err)
	assert.Equal(t, "adr_b", transport.Last().Query.Get("before_id"))
	assert.Equal(t, "2", transport.Last().Query.Get("page_size"))
}

func TestClient_PageKeepsFiltersThatProducedIt(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodGet, "addresses", http.StatusOK,
		`{"addresses":[{"id":"adr_a"},{"id":"adr_b"}],"has_more":true}`)
	client := address.New(transport.Client())
	ctx := context.Background()

	params := &shipapi.ListParams{PageSize: ptr(2)}
	page, err := client.All(ctx, params)
	require.NoError(t, err)

	*params.PageSize = 50
	params.AfterID = ptr("adr_zzz")

	assert.Equal(t, 2, *page.Filters.PageSize)
	assert.Nil(t, page.Filters.AfterID)

	_, err = client.Next(ctx, page, nil)
	require.NoError(t, err)

	query := transport.Last().Query
	assert.Equal(t, "2", query.Get("page_size"))
	assert.Equal(t, "adr_b", query.Get("before_id"))
	assert.False(t, query.Has("after_id"))
}

func TestClient_NextWithNullLastItem(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodGet, "addresses", http.StatusOK,
		`{"addresses":[{"id":"adr_a"},null],"has_more":true}`)
	client := address.New(transport.Client())
	ctx := context.Background()

	page, err := client.All(ctx, nil)
	require.NoError(t, err)

	_, err = client.Next(ctx, page, nil)
	assert.ErrorIs(t, err, shipapi.ErrDeserialization)
	assert.Len(t, transport.Requests(), 1)
}

func TestClient_CreateNilParams(t *testing.T) {
	transport := mock.NewTransport()
	client := address.New(transport.Client())

	var params *address.CreateParams
	_, err := client.Create(context.Background(), shipapi.Typed(params))

	assert.ErrorIs(t, err, shipapi.ErrInvalidParameter)
	assert.Empty(t, transport.Requests())
}
