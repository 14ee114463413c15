package shipapi

import "net/http"

var statusKinds = map[int]ErrorKind{
	0:                              KindConnectionFailure,
	http.StatusBadRequest:          KindBadRequest,
	http.StatusUnauthorized:        KindUnauthorized,
	http.StatusPaymentRequired:     KindPaymentRequired,
	http.StatusForbidden:           KindUnauthorized,
	http.StatusNotFound:            KindNotFound,
	http.StatusMethodNotAllowed:    KindMethodNotAllowed,
	http.StatusRequestTimeout:      KindTimeout,
	http.StatusUnprocessableEntity: KindUnprocessableEntity,
	http.StatusTooManyRequests:     KindRateLimited,
	http.StatusInternalServerError: KindInternalServerError,
	http.StatusServiceUnavailable:  KindServiceUnavailable,
	http.StatusGatewayTimeout:      KindGatewayTimeout,
}

// Classify maps an HTTP status code to an ErrorKind. It is total: codes without
// a table entry fall back to the band of their first digit.
func Classify(statusCode int) ErrorKind {
	if kind, ok := statusKinds[statusCode]; ok {
		return kind
	}

	switch statusCode / 100 {
	case 1:
		return KindUnknownInformational
	case 3:
		return KindRedirect
	case 4:
		return KindUnknownClientError
	case 5:
		return KindUnknownServerError
	default:
		return KindUnclassified
	}
}
