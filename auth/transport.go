// Package auth provides http.RoundTripper implementations that attach
// imagery API credentials to outgoing requests.
package auth

import (
	"encoding/base64"
	"net/http"
)

// BasicTransport injects Basic credentials built from a username and API key.
type BasicTransport struct {
	Username string
	APIKey   string
	Base     http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *BasicTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.Username != "" || t.APIKey != "" {
		clone.Header.Set("Authorization", "Basic "+Encode(t.Username, t.APIKey))
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// TokenTransport injects a pre-encoded Basic token, as handed out by the
// provider's developer console.
type TokenTransport struct {
	Token string
	Base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *TokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.Token != "" {
		clone.Header.Set("Authorization", "Basic "+t.Token)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// Encode builds the base64 token for a username and API key pair.
func Encode(username, apiKey string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + apiKey))
}
