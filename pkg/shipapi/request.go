package shipapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Request is a fully resolved API call, ready for the executor.
type Request struct {
	Method string
	// Template is the unresolved path, kept as a low-cardinality label.
	Template    string
	Path        string
	Query       url.Values
	Body        []byte
	RootElement string
}

// NewRequest resolves pathTemplate against segments and places params in the
// query string for GET and DELETE or in a JSON body for POST, PUT and PATCH.
func NewRequest(method, pathTemplate string, segments map[string]string, params *WireMap, rootElement string) (*Request, error) {
	path, err := resolvePath(pathTemplate, segments)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method:      method,
		Template:    pathTemplate,
		Path:        path,
		RootElement: rootElement,
	}

	switch method {
	case http.MethodGet, http.MethodDelete:
		query, err := encodeQuery(params)
		if err != nil {
			return nil, err
		}
		req.Query = query
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if params == nil {
			params = NewWireMap()
		}
		body, err := json.Marshal(params)
		if err != nil {
			return nil, NewError(KindInvalidParameter, "could not encode request body").WithCause(err)
		}
		req.Body = body
	default:
		return nil, NewError(KindInvalidRequest, fmt.Sprintf("unsupported HTTP method %q", method))
	}

	return req, nil
}

// URL joins the request path and query onto baseURL.
func (r *Request) URL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}

// resolvePath substitutes {name} placeholders with escaped segment values.
func resolvePath(template string, segments map[string]string) (string, error) {
	var b strings.Builder
	rest := template
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return "", NewError(KindInvalidRequest, fmt.Sprintf("unterminated placeholder in path %q", template))
		}
		end += start

		name := rest[start+1 : end]
		value, ok := segments[name]
		if !ok || value == "" {
			return "", &Error{
				Kind:    KindInvalidRequest,
				Message: fmt.Sprintf("missing path segment %s", name),
				Field:   name,
			}
		}
		b.WriteString(rest[:start])
		b.WriteString(url.PathEscape(value))
		rest = rest[end+1:]
	}
	return b.String(), nil
}

func encodeQuery(params *WireMap) (url.Values, error) {
	query := url.Values{}
	for _, key := range params.Keys() {
		v, _ := params.Get(key)
		s, err := queryValue(v)
		if err != nil {
			return nil, NewError(KindInvalidParameter, fmt.Sprintf("could not encode query parameter %s", key)).WithCause(err)
		}
		query.Set(key, s)
	}
	return query, nil
}

func queryValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case json.Number:
		return val.String(), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
