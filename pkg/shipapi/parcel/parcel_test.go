package parcel_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/tournevent/shipkit/pkg/shipapi/mock"
	"github.com/tournevent/shipkit/pkg/shipapi/parcel"
)

func ptr[T any](v T) *T { return &v }

func TestClient_Create(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodPost, "parcels", http.StatusCreated, map[string]any{
		"id":     "prcl_1",
		"weight": 15.4,
	})
	client := parcel.New(transport.Client())

	p, err := client.Create(context.Background(), shipapi.Typed(&parcel.CreateParams{
		Length: ptr(20.2),
		Weight: ptr(15.4),
	}))
	require.NoError(t, err)
	assert.Equal(t, "prcl_1", p.ID)
	assert.JSONEq(t, `{"parcel":{"length":20.2,"weight":15.4}}`, string(transport.Last().Body))
}

func TestClient_CreateRequiresWeight(t *testing.T) {
	transport := mock.NewTransport()
	client := parcel.New(transport.Client())

	_, err := client.Create(context.Background(), shipapi.Typed(&parcel.CreateParams{Length: ptr(1.0)}))

	assert.True(t, errors.Is(err, shipapi.ErrMissingParameter))
	assert.Empty(t, transport.Requests())
}

func TestClient_Retrieve(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodGet, "parcels/prcl_1", http.StatusOK, `{"id":"prcl_1","weight":1}`)
	client := parcel.New(transport.Client())

	p, err := client.Retrieve(context.Background(), "prcl_1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Weight)
}
