package shipapi

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// GenericErrorMessage is used when a failed response carries no parsable
// error details. The raw body is kept on Error.Body.
const GenericErrorMessage = "API did not return error details"

type errorDetails struct {
	Code    string            `json:"code"`
	Message json.RawMessage   `json:"message"`
	Errors  []json.RawMessage `json:"errors"`
}

// parseError builds the error for a non-2xx response. It accepts a nested
// {"error": {...}} object, an {"error": "text"} string, or flat details.
func parseError(statusCode int, body []byte) *Error {
	apiErr := &Error{
		Kind:       Classify(statusCode),
		StatusCode: statusCode,
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		apiErr.Message = GenericErrorMessage
		apiErr.Body = string(body)
		return apiErr
	}

	if raw, ok := envelope["error"]; ok {
		var details errorDetails
		if err := json.Unmarshal(raw, &details); err == nil && applyDetails(apiErr, details) {
			return apiErr
		}
		var text string
		if err := json.Unmarshal(raw, &text); err == nil && text != "" {
			apiErr.Message = text
			return apiErr
		}
	}

	var flat errorDetails
	if err := json.Unmarshal(body, &flat); err == nil && applyDetails(apiErr, flat) {
		return apiErr
	}

	apiErr.Message = GenericErrorMessage
	apiErr.Body = string(body)
	return apiErr
}

func applyDetails(apiErr *Error, details errorDetails) bool {
	message := messageText(details.Message)
	if message == "" && details.Code == "" {
		return false
	}
	if message == "" {
		message = GenericErrorMessage
	}

	apiErr.Code = details.Code
	apiErr.Message = message
	for _, raw := range details.Errors {
		apiErr.Errors = append(apiErr.Errors, fieldErrorFrom(raw))
	}
	return true
}

// messageText flattens a message that may be a string, a list, or an object
// of per-field messages.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	}

	var object map[string]any
	if err := json.Unmarshal(raw, &object); err == nil {
		keys := make([]string, 0, len(object))
		for k := range object {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", k, object[k]))
		}
		return strings.Join(parts, ", ")
	}

	return ""
}

func fieldErrorFrom(raw json.RawMessage) FieldError {
	var fe FieldError
	if err := json.Unmarshal(raw, &fe); err == nil && (fe.Message != "" || fe.Field != "") {
		return fe
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return FieldError{Message: text}
	}
	return FieldError{Message: string(raw)}
}
