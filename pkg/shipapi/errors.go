package shipapi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the client can report, local or remote.
type ErrorKind int

const (
	KindUnclassified ErrorKind = iota

	// Transport failures.
	KindConnectionFailure
	KindTimeout
	KindCancelled

	// API failures derived from a status code.
	KindBadRequest
	KindUnauthorized
	KindPaymentRequired
	KindNotFound
	KindMethodNotAllowed
	KindUnprocessableEntity
	KindRateLimited
	KindInternalServerError
	KindServiceUnavailable
	KindGatewayTimeout
	KindUnknownInformational
	KindRedirect
	KindUnknownClientError
	KindUnknownServerError

	// Local failures raised before any network call.
	KindMissingParameter
	KindInvalidParameterPair
	KindInvalidParameter
	KindInvalidRequest

	// Response and pagination failures.
	KindDeserialization
	KindEndOfPagination
)

var kindNames = map[ErrorKind]string{
	KindUnclassified:         "unclassified",
	KindConnectionFailure:    "connection_failure",
	KindTimeout:              "timeout",
	KindCancelled:            "cancelled",
	KindBadRequest:           "bad_request",
	KindUnauthorized:         "unauthorized",
	KindPaymentRequired:      "payment_required",
	KindNotFound:             "not_found",
	KindMethodNotAllowed:     "method_not_allowed",
	KindUnprocessableEntity:  "unprocessable_entity",
	KindRateLimited:          "rate_limited",
	KindInternalServerError:  "internal_server_error",
	KindServiceUnavailable:   "service_unavailable",
	KindGatewayTimeout:       "gateway_timeout",
	KindUnknownInformational: "unknown_informational",
	KindRedirect:             "redirect",
	KindUnknownClientError:   "unknown_client_error",
	KindUnknownServerError:   "unknown_server_error",
	KindMissingParameter:     "missing_parameter",
	KindInvalidParameterPair: "invalid_parameter_pair",
	KindInvalidParameter:     "invalid_parameter",
	KindInvalidRequest:       "invalid_request",
	KindDeserialization:      "deserialization",
	KindEndOfPagination:      "end_of_pagination",
}

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnclassified]
}

// IsLocal reports whether the kind is raised before a request leaves the process.
func (k ErrorKind) IsLocal() bool {
	switch k {
	case KindMissingParameter, KindInvalidParameterPair, KindInvalidParameter, KindInvalidRequest:
		return true
	}
	return false
}

// FieldError is a single field-level problem reported by the API.
type FieldError struct {
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Error is the single error type returned by the client.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Code       string
	Message    string

	// Field and Related name the offending parameters of a local validation error.
	Field   string
	Related string

	Errors    []FieldError
	Body      string
	RequestID string
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Kind)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates a new Error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// The With* builders return a modified copy and leave the receiver, which
// may be one of the Err* sentinels, unchanged.

// WithCause adds a cause to the error.
func (e *Error) WithCause(err error) *Error {
	cp := *e
	cp.Cause = err
	return &cp
}

// WithStatusCode adds an HTTP status code to the error.
func (e *Error) WithStatusCode(code int) *Error {
	cp := *e
	cp.StatusCode = code
	return &cp
}

// WithCode adds the API's machine-readable error code.
func (e *Error) WithCode(code string) *Error {
	cp := *e
	cp.Code = code
	return &cp
}

// WithRequestID records the correlation id of the failed request.
func (e *Error) WithRequestID(id string) *Error {
	cp := *e
	cp.RequestID = id
	return &cp
}

func missingParameter(field string) *Error {
	return &Error{
		Kind:    KindMissingParameter,
		Message: fmt.Sprintf("missing required parameter %s", field),
		Field:   field,
	}
}

func invalidParameterPair(field, related string) *Error {
	return &Error{
		Kind:    KindInvalidParameterPair,
		Message: fmt.Sprintf("parameter %s cannot be used with the current value of %s", field, related),
		Field:   field,
		Related: related,
	}
}

// Sentinel errors for errors.Is checks. Matching is by kind.
var (
	ErrConnectionFailure   = NewError(KindConnectionFailure, "could not reach the API")
	ErrTimeout             = NewError(KindTimeout, "request timed out")
	ErrCancelled           = NewError(KindCancelled, "request cancelled")
	ErrBadRequest          = NewError(KindBadRequest, "bad request")
	ErrUnauthorized        = NewError(KindUnauthorized, "unauthorized")
	ErrPaymentRequired     = NewError(KindPaymentRequired, "payment required")
	ErrNotFound            = NewError(KindNotFound, "not found")
	ErrMethodNotAllowed    = NewError(KindMethodNotAllowed, "method not allowed")
	ErrUnprocessableEntity = NewError(KindUnprocessableEntity, "unprocessable entity")
	ErrRateLimited         = NewError(KindRateLimited, "rate limit exceeded")
	ErrInternalServer      = NewError(KindInternalServerError, "internal server error")
	ErrServiceUnavailable  = NewError(KindServiceUnavailable, "service unavailable")
	ErrGatewayTimeout      = NewError(KindGatewayTimeout, "gateway timeout")

	ErrMissingParameter     = NewError(KindMissingParameter, "missing required parameter")
	ErrInvalidParameterPair = NewError(KindInvalidParameterPair, "invalid parameter pair")
	ErrInvalidParameter     = NewError(KindInvalidParameter, "invalid parameter")
	ErrInvalidRequest       = NewError(KindInvalidRequest, "invalid request")

	ErrDeserialization = NewError(KindDeserialization, "could not decode API response")
	ErrEndOfPagination = NewError(KindEndOfPagination, "there are no more pages to retrieve")
)

// KindOf returns the kind of err, or KindUnclassified when err is not an *Error.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnclassified
}

// IsRetryable reports whether a higher layer may safely retry the failed call.
// The client itself never retries.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindConnectionFailure, KindTimeout, KindRateLimited, KindServiceUnavailable, KindGatewayTimeout:
		return true
	}
	return false
}
