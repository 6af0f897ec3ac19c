package core

import "net/http"

// ResourceOwner is the authenticated account as described by a provider's
// resource-owner endpoint.
type ResourceOwner interface {
	// ID returns the provider's identifier for the account.
	ID() string
	// RawAttributes returns the decoded resource-owner response.
	RawAttributes() map[string]any
}

// Provider is the extension point a provider adapter fills in for the
// generic OAuth 2.0 client.
type Provider interface {
	AuthorizationURL() string
	TokenURL() string
	ResourceOwnerDetailsURL(token *AccessToken) string
	DefaultScopes() []string

	// ValidateResponse inspects every HTTP exchange with the provider and
	// returns a non-nil error for failed ones.
	ValidateResponse(statusCode int, body []byte) error

	CreateResourceOwner(body map[string]any, token *AccessToken) ResourceOwner
	CreateAccessToken(body map[string]any, grant Grant) (*AccessToken, error)
}

// HTTPResponseValidator is implemented by providers that derive error
// messages from the full response, status line included. The generic client
// prefers it over Provider.ValidateResponse when a response is available.
type HTTPResponseValidator interface {
	ValidateHTTPResponse(resp *http.Response, body []byte) error
}
