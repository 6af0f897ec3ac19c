// Package quaderno adapts the Quaderno authorization server to the generic
// OAuth 2.0 client in pkg/oauthclient.
package quaderno

import (
	"net/http"
	"time"

	"github.com/go-training/quaderno-connect/pkg/core"

	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURI is the production Quaderno host.
	DefaultBaseURI = "https://quadernoapp.com"

	authorizePath     = "/oauth/authorize"
	tokenPath         = "/oauth/token"
	deauthorizePath   = "/oauth/deauthorize"
	resourceOwnerPath = "/api/authorization"

	// ScopeReadOnly is the scope requested when the caller asks for none.
	ScopeReadOnly = "read_only"

	requestTimeout = 30 * time.Second
)

var _ core.Provider = (*Provider)(nil)

// Options configures a Provider.
type Options struct {
	// BaseURI is the Quaderno host. Defaults to DefaultBaseURI.
	BaseURI      string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// HTTPClient is used by Deauthorize. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client
}

// Provider implements core.Provider for Quaderno.
// It supports sandbox and self-hosted Quaderno instances through BaseURI.
// A Provider is immutable after New and safe for concurrent use.
type Provider struct {
	baseURI      string
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
}

// New creates a new Quaderno provider.
func New(opts Options) *Provider {
	baseURI := opts.BaseURI
	if baseURI == "" {
		baseURI = DefaultBaseURI
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: requestTimeout,
		}
	}
	return &Provider{
		baseURI:      baseURI,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		redirectURI:  opts.RedirectURI,
		httpClient:   httpClient,
	}
}

// BaseURI returns the configured Quaderno host.
func (p *Provider) BaseURI() string {
	return p.baseURI
}

// ClientID returns the configured OAuth client ID.
func (p *Provider) ClientID() string {
	return p.clientID
}

// RedirectURI returns the configured redirect URI.
func (p *Provider) RedirectURI() string {
	return p.redirectURI
}

// AuthorizationURL returns the URL users are redirected to for consent.
func (p *Provider) AuthorizationURL() string {
	return p.baseURI + authorizePath
}

// TokenURL returns the code exchange and refresh endpoint.
func (p *Provider) TokenURL() string {
	return p.baseURI + tokenPath
}

// ResourceOwnerDetailsURL returns the account endpoint. The token travels in
// the Authorization header, never in the URL.
func (p *Provider) ResourceOwnerDetailsURL(_ *core.AccessToken) string {
	return p.baseURI + resourceOwnerPath
}

// DeauthorizationURL returns the token revocation endpoint.
func (p *Provider) DeauthorizationURL() string {
	return p.baseURI + deauthorizePath
}

// DefaultScopes returns the scopes used when none are requested.
func (p *Provider) DefaultScopes() []string {
	return []string{ScopeReadOnly}
}

// Endpoint returns the oauth2.Endpoint for this provider. Quaderno expects
// client credentials in the request body.
func (p *Provider) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   p.AuthorizationURL(),
		TokenURL:  p.TokenURL(),
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// CreateResourceOwner wraps the account response verbatim.
func (p *Provider) CreateResourceOwner(body map[string]any, _ *core.AccessToken) core.ResourceOwner {
	return NewResourceOwner(body)
}

// CreateAccessToken builds the standard token record and then copies every
// response key that is not a standard field into Extra.
func (p *Provider) CreateAccessToken(body map[string]any, _ core.Grant) (*core.AccessToken, error) {
	token, err := core.NewAccessToken(body)
	if err != nil {
		return nil, err
	}

	if token.Extra == nil {
		token.Extra = make(map[string]any, len(body))
	}
	for k, v := range body {
		if core.IsDefinedTokenField(k) {
			continue
		}
		if _, exists := token.Extra[k]; exists {
			continue
		}
		token.Extra[k] = v
	}

	return token, nil
}
