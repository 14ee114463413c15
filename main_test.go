package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shipkit/internal/config"
	"github.com/tournevent/shipkit/internal/credstore"
	"github.com/tournevent/shipkit/internal/telemetry"
	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/tournevent/shipkit/pkg/shipapi/mock"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, transport *mock.Transport, apiKey, stdin string, args ...string) cliResult {
	t.Helper()

	ring := keyring.NewArrayKeyring(nil)
	t.Cleanup(credstore.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))

	return runWith(newTestApp(transport, apiKey), stdin, args...)
}

func newTestApp(transport *mock.Transport, apiKey string) *app {
	return &app{
		cfg: &config.Config{
			APIKey:      apiKey,
			BaseURL:     mock.BaseURL,
			Timeout:     time.Second,
			WebhookPort: 8080,
		},
		logger:     telemetry.NewNopLogger(),
		clientOpts: []shipapi.Option{shipapi.WithHTTPClient(transport)},
	}
}

func runWith(a *app, stdin string, args ...string) cliResult {
	var stdout, stderr bytes.Buffer
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))

	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func jsonResponse(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func TestAddressCreate(t *testing.T) {
	transport := mock.NewTransport().
		Handle(http.MethodPost, "addresses", http.StatusCreated, `{"id":"adr_1","name":"Bob","city":"Reno"}`)

	res := runCLI(t, transport, "mock_key", "",
		"address", "create", "--name", "Bob", "--city", "Reno", "--verify", "delivery", "--query", ".id")
	require.NoError(t, res.err)

	assert.Equal(t, "\"adr_1\"\n", res.stdout)

	last := transport.Last()
	assert.Equal(t, "Bearer mock_key", last.Header.Get("Authorization"))
	assert.JSONEq(t, `{"address":{"name":"Bob","city":"Reno"},"verify":["delivery"]}`, string(last.Body))
}

func TestAddressList_FollowsCursor(t *testing.T) {
	transport := mock.NewTransport()
	transport.OnRequest = func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("before_id") == "adr_2" {
			return jsonResponse(req, http.StatusOK, `{"addresses":[{"id":"adr_1"}],"has_more":false}`), nil
		}
		return jsonResponse(req, http.StatusOK, `{"addresses":[{"id":"adr_3"},{"id":"adr_2"}],"has_more":true}`), nil
	}

	res := runCLI(t, transport, "mock_key", "", "address", "list", "--pages", "5", "--page-size", "2", "-q", "[.[].id]")
	require.NoError(t, res.err)

	var ids []string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &ids))
	assert.Equal(t, []string{"adr_3", "adr_2", "adr_1"}, ids)

	requests := transport.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "2", requests[0].Query.Get("page_size"))
	assert.Equal(t, "adr_2", requests[1].Query.Get("before_id"))
	assert.Equal(t, "2", requests[1].Query.Get("page_size"))
}

func TestAddressList_SinglePageByDefault(t *testing.T) {
	transport := mock.NewTransport().
		Handle(http.MethodGet, "addresses", http.StatusOK, `{"addresses":[{"id":"adr_3"}],"has_more":true}`)

	res := runCLI(t, transport, "mock_key", "", "address", "list")
	require.NoError(t, res.err)
	assert.Len(t, transport.Requests(), 1)
}

func TestTrackerRetrieve_Many(t *testing.T) {
	transport := mock.NewTransport().
		Handle(http.MethodGet, "trackers/trk_1", http.StatusOK, `{"id":"trk_1","status":"delivered"}`).
		Handle(http.MethodGet, "trackers/trk_2", http.StatusOK, `{"id":"trk_2","status":"in_transit"}`)

	res := runCLI(t, transport, "mock_key", "", "tracker", "retrieve", "trk_1", "trk_missing", "trk_2", "-q", "[.[].status]")
	require.NoError(t, res.err)

	var statuses []string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &statuses))
	assert.Equal(t, []string{"delivered", "in_transit"}, statuses)
}

func TestTrackerCreate_NotFound(t *testing.T) {
	transport := mock.NewTransport()

	res := runCLI(t, transport, "mock_key", "", "tracker", "create", "EZ1000000001", "--carrier", "USPS")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, shipapi.ErrNotFound)
	assert.JSONEq(t, `{"tracker":{"tracking_code":"EZ1000000001","carrier":"USPS"}}`, string(transport.Last().Body))
}

func TestShipmentBuy_LowestRate(t *testing.T) {
	transport := mock.NewTransport().
		Handle(http.MethodGet, "shipments/shp_1", http.StatusOK, `{
			"id": "shp_1",
			"rates": [
				{"id": "rate_ups", "carrier": "UPS", "service": "Ground", "rate": "9.10"},
				{"id": "rate_usps", "carrier": "USPS", "service": "Priority", "rate": "7.25"},
				{"id": "rate_fedex", "carrier": "FedEx", "service": "Ground", "rate": "6.00"}
			]
		}`).
		Handle(http.MethodPost, "shipments/shp_1/buy", http.StatusOK, `{"id":"shp_1","selected_rate":{"id":"rate_usps"}}`)

	res := runCLI(t, transport, "mock_key", "", "shipment", "buy", "shp_1", "--carrier", "USPS,UPS")
	require.NoError(t, res.err)

	assert.JSONEq(t, `{"rate":{"id":"rate_usps"}}`, string(transport.Last().Body))
}

func TestShipmentBuy_ExplicitRate(t *testing.T) {
	transport := mock.NewTransport().
		Handle(http.MethodPost, "shipments/shp_1/buy", http.StatusOK, `{"id":"shp_1"}`)

	res := runCLI(t, transport, "mock_key", "", "shipment", "buy", "shp_1", "--rate", "rate_9", "--insurance", "100.00")
	require.NoError(t, res.err)

	assert.Len(t, transport.Requests(), 1)
	assert.JSONEq(t, `{"rate":{"id":"rate_9"},"insurance":"100.00"}`, string(transport.Last().Body))
}

func TestWebhookList_YAML(t *testing.T) {
	transport := mock.NewTransport().
		Handle(http.MethodGet, "webhooks", http.StatusOK, `{"webhooks":[{"id":"hook_1","url":"https://example.com/hook"}]}`)

	res := runCLI(t, transport, "mock_key", "", "webhook", "list", "-o", "yaml")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "- id: hook_1")
	assert.Contains(t, res.stdout, "example.com/hook")
}

func TestUnknownOutputFormat(t *testing.T) {
	transport := mock.NewTransport().
		Handle(http.MethodGet, "webhooks", http.StatusOK, `{"webhooks":[]}`)

	res := runCLI(t, transport, "mock_key", "", "webhook", "list", "-o", "xml")
	assert.ErrorContains(t, res.err, "unknown output format")
}

func TestAuthLogin_KeyFromKeychain(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	t.Cleanup(credstore.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))
	transport := mock.NewTransport().
		Handle(http.MethodGet, "addresses/adr_1", http.StatusOK, `{"id":"adr_1"}`)

	res := runWith(newTestApp(transport, ""), "EZAK_stored\n", "auth", "login", "--profile", "work")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, `profile "work"`)

	res = runWith(newTestApp(transport, ""), "", "address", "retrieve", "adr_1", "--profile", "work")
	require.NoError(t, res.err)
	assert.Equal(t, "Bearer EZAK_stored", transport.Last().Header.Get("Authorization"))

	res = runWith(newTestApp(transport, ""), "", "auth", "logout", "--profile", "work")
	require.NoError(t, res.err)

	res = runWith(newTestApp(transport, ""), "", "address", "retrieve", "adr_1", "--profile", "work")
	assert.ErrorIs(t, res.err, credstore.ErrNoCredentials)
}

func TestListen_RequiresSecret(t *testing.T) {
	res := runCLI(t, mock.NewTransport(), "mock_key", "", "listen")
	assert.ErrorContains(t, res.err, "webhook secret is required")
}
