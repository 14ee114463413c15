package rate_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/tournevent/shipkit/pkg/shipapi/mock"
	"github.com/tournevent/shipkit/pkg/shipapi/rate"
)

func TestClient_Retrieve(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodGet, "rates/rate_1", http.StatusOK,
		`{"id":"rate_1","carrier":"USPS","service":"Priority","rate":"7.58","delivery_days":2}`)
	client := rate.New(transport.Client())

	r, err := client.Retrieve(context.Background(), "rate_1")
	require.NoError(t, err)
	assert.Equal(t, "7.58", r.Rate)
	require.NotNil(t, r.DeliveryDays)
	assert.Equal(t, 2, *r.DeliveryDays)
}

func TestClient_RetrieveUnauthorized(t *testing.T) {
	transport := mock.NewTransport().Handle(http.MethodGet, "rates/rate_1", http.StatusUnauthorized,
		`{"error":{"code":"APIKEY.INACTIVE","message":"This api key is no longer active."}}`)
	client := rate.New(transport.Client())

	_, err := client.Retrieve(context.Background(), "rate_1")
	assert.True(t, errors.Is(err, shipapi.ErrUnauthorized))
}
