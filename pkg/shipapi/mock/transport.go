// Package mock provides a scripted HTTP transport for exercising shipapi
// clients without a network.
package mock

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// BaseURL is the base URL clients built by Client point at.
const BaseURL = "https://api.shipkit.test/v2"

const basePath = "/v2/"

// ErrSimulated is returned by Do when SimulateErrors is set.
var ErrSimulated = errors.New("mock: simulated transport failure")

// RecordedRequest is a request seen by the transport.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body.
func (r RecordedRequest) JSON() map[string]any {
	var out map[string]any
	_ = json.Unmarshal(r.Body, &out)
	return out
}

type route struct {
	status int
	body   []byte
}

// Transport is a shipapi.Doer that answers from registered routes.
type Transport struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	// OnRequest, when set, answers every request instead of the routes.
	OnRequest func(req *http.Request) (*http.Response, error)

	mu       sync.Mutex
	routes   map[string]route
	requests []RecordedRequest
}

// NewTransport creates a transport with no routes.
func NewTransport() *Transport {
	return &Transport{routes: make(map[string]route)}
}

// Handle registers the response for method and path. Path is relative to
// BaseURL, e.g. "addresses/adr_1". Body may be a string, []byte, or any
// value encodable as JSON.
func (t *Transport) Handle(method, path string, status int, body any) *Transport {
	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	case []byte:
		raw = b
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			panic(fmt.Sprintf("mock: encoding response for %s %s: %v", method, path, err))
		}
		raw = encoded
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes[method+" "+path] = route{status: status, body: raw}
	return t
}

// Do implements shipapi.Doer.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		if body, err = io.ReadAll(req.Body); err != nil {
			return nil, err
		}
		_ = req.Body.Close()
	}

	path := strings.TrimPrefix(req.URL.Path, basePath)
	t.mu.Lock()
	t.requests = append(t.requests, RecordedRequest{
		Method: req.Method,
		Path:   path,
		Query:  req.URL.Query(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	t.mu.Unlock()

	if t.SimulateLatency > 0 {
		select {
		case <-time.After(t.SimulateLatency):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	if t.SimulateErrors {
		return nil, ErrSimulated
	}

	if t.OnRequest != nil {
		req.Body = io.NopCloser(bytes.NewReader(body))
		return t.OnRequest(req)
	}

	t.mu.Lock()
	r, ok := t.routes[req.Method+" "+path]
	t.mu.Unlock()
	if !ok {
		r = route{
			status: http.StatusNotFound,
			body:   []byte(`{"error":{"code":"NOT_FOUND","message":"The requested resource could not be found."}}`),
		}
	}

	return &http.Response{
		StatusCode: r.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(r.body)),
		Request:    req,
	}, nil
}

// Requests returns every request seen so far.
func (t *Transport) Requests() []RecordedRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]RecordedRequest, len(t.requests))
	copy(out, t.requests)
	return out
}

// Last returns the most recent request, or the zero value if none was made.
func (t *Transport) Last() RecordedRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return RecordedRequest{}
	}
	return t.requests[len(t.requests)-1]
}

// Client builds a shipapi client wired to the transport.
func (t *Transport) Client(opts ...shipapi.Option) *shipapi.Client {
	opts = append([]shipapi.Option{
		shipapi.WithBaseURL(BaseURL),
		shipapi.WithHTTPClient(t),
		shipapi.WithLogger(otelzap.New(zap.NewNop())),
	}, opts...)
	client, err := shipapi.New("mock_key", opts...)
	if err != nil {
		panic(err)
	}
	return client
}

// NewID returns a random resource id with the given prefix, e.g. "adr".
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
