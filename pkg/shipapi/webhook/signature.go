package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tournevent/shipkit/pkg/shipapi"
	"golang.org/x/text/unicode/norm"
)

// SignatureHeader carries the HMAC of the event body.
const SignatureHeader = "X-Hmac-Signature"

const signaturePrefix = "hmac-sha256-hex="

var (
	// ErrMissingSignature is returned when the request has no signature header.
	ErrMissingSignature = errors.New("webhook: missing signature header")
	// ErrInvalidSignature is returned when the signature does not match the body.
	ErrInvalidSignature = errors.New("webhook: signature does not match")
)

// Sign returns the header value the API sends for body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(norm.NFKD.String(secret)))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// ValidatePayload checks the signature of an incoming webhook and decodes the
// event it carries. The secret is NFKD-normalized before use.
func ValidatePayload(body []byte, header http.Header, secret string) (*shipapi.Event, error) {
	provided := header.Get(SignatureHeader)
	if provided == "" {
		return nil, ErrMissingSignature
	}

	expected := Sign(body, secret)
	if !hmac.Equal([]byte(strings.ToLower(provided)), []byte(expected)) {
		return nil, ErrInvalidSignature
	}

	var event shipapi.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decoding webhook event: %w", err)
	}
	return &event, nil
}
