package shipapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.shipkit.io/v2"
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 60 * time.Second
	// Version is the library version reported in the User-Agent header.
	Version = "1.0.0"

	requestIDHeader = "X-Client-Request-Id"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives one notification per executed request.
type Observer interface {
	ObserveRequest(method, path string, statusCode int, kind ErrorKind, duration time.Duration)
}

// Client holds credentials and transport settings. It is safe for concurrent
// use and never mutated after construction.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	timeout    time.Duration
	httpClient Doer
	logger     *otelzap.Logger
	tracer     trace.Tracer
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the transport used to send requests.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTimeout sets the per-request timeout of the default transport.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithUserAgent appends a product token to the User-Agent header.
func WithUserAgent(product string) Option {
	return func(c *Client) {
		c.userAgent = "shipkit-go/" + Version + " " + product
	}
}

// WithLogger sets the logger.
func WithLogger(logger *otelzap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithObserver registers a request observer.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, NewError(KindInvalidRequest, "API key is required")
	}

	c := &Client{
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		userAgent: "shipkit-go/" + Version,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = otelzap.New(zap.NewNop())
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("shipapi")
	}

	return c, nil
}

// WithAPIKey returns a copy of the client that authenticates with apiKey.
// The receiver is left untouched.
func (c *Client) WithAPIKey(apiKey string) *Client {
	cp := *c
	cp.apiKey = apiKey
	return &cp
}

// As runs fn with a client scoped to apiKey. Concurrent callers of the
// original client keep their own credentials.
func (c *Client) As(ctx context.Context, apiKey string, fn func(ctx context.Context, scoped *Client) error) error {
	if apiKey == "" {
		return NewError(KindInvalidRequest, "API key is required")
	}
	return fn(ctx, c.WithAPIKey(apiKey))
}

// Execute sends req and decodes the response into T, unwrapping the root
// element when req names one. When T is bool an empty 2xx body decodes as
// true.
func Execute[T any](ctx context.Context, c *Client, req *Request) (*T, error) {
	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	var out T
	if ok, isBool := any(&out).(*bool); isBool && len(bytes.TrimSpace(body)) == 0 {
		*ok = true
		return &out, nil
	}
	if err := decode(body, req.RootElement, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Call serializes params, builds the request and executes it in one step.
func Call[T any](ctx context.Context, c *Client, method, pathTemplate string, segments map[string]string, params Params, rootElement string) (*T, error) {
	wire, err := Wire(params)
	if err != nil {
		return nil, err
	}
	req, err := NewRequest(method, pathTemplate, segments, wire, rootElement)
	if err != nil {
		return nil, err
	}
	return Execute[T](ctx, c, req)
}

// ExecuteNoResponse sends req and only reports whether it succeeded.
func (c *Client) ExecuteNoResponse(ctx context.Context, req *Request) error {
	_, err := c.send(ctx, req)
	return err
}

// Do builds and sends a request in one step and decodes into out when out is
// non-nil.
func (c *Client) Do(ctx context.Context, method, pathTemplate string, segments map[string]string, params Params, rootElement string, out any) error {
	wire, err := Wire(params)
	if err != nil {
		return err
	}
	req, err := NewRequest(method, pathTemplate, segments, wire, rootElement)
	if err != nil {
		return err
	}

	body, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, rootElement, out)
}

func (c *Client) send(ctx context.Context, req *Request) ([]byte, error) {
	start := time.Now()
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, "shipapi "+req.Method+" "+req.Template,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
			attribute.String("shipapi.request_id", requestID),
		),
	)
	defer span.End()

	httpReq, err := c.newHTTPRequest(ctx, req, requestID)
	if err != nil {
		apiErr := NewError(KindInvalidRequest, "could not build HTTP request").WithCause(err)
		c.finish(ctx, span, req, 0, apiErr, start)
		return nil, apiErr
	}

	c.logger.Ctx(ctx).Debug("Sending API request",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		apiErr := transportError(ctx, err).WithRequestID(requestID)
		c.finish(ctx, span, req, 0, apiErr, start)
		return nil, apiErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := transportError(ctx, err).WithStatusCode(resp.StatusCode).WithRequestID(requestID)
		c.finish(ctx, span, req, resp.StatusCode, apiErr, start)
		return nil, apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseError(resp.StatusCode, body).WithRequestID(requestID)
		c.finish(ctx, span, req, resp.StatusCode, apiErr, start)
		return nil, apiErr
	}

	c.finish(ctx, span, req, resp.StatusCode, nil, start)
	return body, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request, requestID string) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL(c.baseURL), body)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(requestIDHeader, requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}

func (c *Client) finish(ctx context.Context, span trace.Span, req *Request, statusCode int, apiErr *Error, start time.Time) {
	duration := time.Since(start)
	kind := KindUnclassified
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	}

	if apiErr != nil {
		kind = apiErr.Kind
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Message)
		c.logger.Ctx(ctx).Warn("API request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", statusCode),
			zap.String("kind", apiErr.Kind.String()),
			zap.String("request_id", apiErr.RequestID),
			zap.Duration("duration", duration),
			zap.Error(apiErr),
		)
	} else {
		span.SetStatus(codes.Ok, "")
		c.logger.Ctx(ctx).Debug("API request completed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", statusCode),
			zap.Duration("duration", duration),
		)
	}

	if c.observer != nil {
		c.observer.ObserveRequest(req.Method, req.Template, statusCode, kind, duration)
	}
}

func transportError(ctx context.Context, err error) *Error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return NewError(KindCancelled, "request cancelled").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return NewError(KindTimeout, "request timed out").WithCause(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(KindTimeout, "request timed out").WithCause(err)
	}
	return NewError(KindConnectionFailure, "could not reach the API").WithCause(err)
}

func decode(body []byte, rootElement string, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return NewError(KindDeserialization, "empty response body")
	}

	payload := json.RawMessage(body)
	if rootElement != "" {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return NewError(KindDeserialization, "response is not a JSON object").WithCause(err)
		}
		nested, ok := envelope[rootElement]
		if !ok {
			return NewError(KindDeserialization, "response has no "+rootElement+" element")
		}
		payload = nested
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return NewError(KindDeserialization, "could not decode API response").WithCause(err)
	}
	return nil
}
