package shipapi_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shipkit/pkg/shipapi"
)

func wireOf(pairs ...any) *shipapi.WireMap {
	m := shipapi.NewWireMap()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1])
	}
	return m
}

func TestNewRequest_GetPlacesQuery(t *testing.T) {
	req, err := shipapi.NewRequest(http.MethodGet, "addresses", nil, wireOf("a", "1", "b", "2"), "")
	require.NoError(t, err)

	assert.Equal(t, "1", req.Query.Get("a"))
	assert.Equal(t, "2", req.Query.Get("b"))
	assert.Empty(t, req.Body)
}

func TestNewRequest_PostPlacesBody(t *testing.T) {
	req, err := shipapi.NewRequest(http.MethodPost, "addresses", nil, wireOf("a", "1", "b", "2"), "")
	require.NoError(t, err)

	assert.JSONEq(t, `{"a":"1","b":"2"}`, string(req.Body))
	assert.Empty(t, req.Query)
}

func TestNewRequest_DeletePlacesQuery(t *testing.T) {
	req, err := shipapi.NewRequest(http.MethodDelete, "webhooks/{id}", map[string]string{"id": "hook_1"}, wireOf("force", true), "")
	require.NoError(t, err)

	assert.Equal(t, "webhooks/hook_1", req.Path)
	assert.Equal(t, "true", req.Query.Get("force"))
	assert.Empty(t, req.Body)
}

func TestNewRequest_QueryEncoding(t *testing.T) {
	nested := wireOf("x", 1)
	req, err := shipapi.NewRequest(http.MethodGet, "trackers", nil,
		wireOf("page_size", 20, "ratio", 1.5, "ids", []any{"a", "b"}, "filter", nested), "")
	require.NoError(t, err)

	assert.Equal(t, "20", req.Query.Get("page_size"))
	assert.Equal(t, "1.5", req.Query.Get("ratio"))
	assert.Equal(t, `["a","b"]`, req.Query.Get("ids"))
	assert.Equal(t, `{"x":1}`, req.Query.Get("filter"))
}

func TestNewRequest_PostWithNilParams(t *testing.T) {
	req, err := shipapi.NewRequest(http.MethodPost, "shipments/{id}/refund", map[string]string{"id": "shp_1"}, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "{}", string(req.Body))
}

func TestNewRequest_PathEscaping(t *testing.T) {
	req, err := shipapi.NewRequest(http.MethodGet, "trackers/{id}", map[string]string{"id": "a/b c"}, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "trackers/a%2Fb%20c", req.Path)
	assert.Equal(t, "trackers/{id}", req.Template)
}

func TestNewRequest_MissingSegment(t *testing.T) {
	_, err := shipapi.NewRequest(http.MethodGet, "addresses/{id}", nil, nil, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, shipapi.ErrInvalidRequest))
}

func TestNewRequest_UnterminatedPlaceholder(t *testing.T) {
	_, err := shipapi.NewRequest(http.MethodGet, "addresses/{id", map[string]string{"id": "x"}, nil, "")
	assert.True(t, errors.Is(err, shipapi.ErrInvalidRequest))
}

func TestNewRequest_UnsupportedMethod(t *testing.T) {
	_, err := shipapi.NewRequest(http.MethodHead, "addresses", nil, nil, "")
	assert.True(t, errors.Is(err, shipapi.ErrInvalidRequest))
}

func TestRequest_URL(t *testing.T) {
	req, err := shipapi.NewRequest(http.MethodGet, "addresses", nil, wireOf("page_size", 5), "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v2/addresses?page_size=5", req.URL("https://api.example.com/v2/"))
}
