// Package oauthclient drives the OAuth 2.0 authorization-code and refresh
// flows through golang.org/x/oauth2 on behalf of a core.Provider.
package oauthclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-training/quaderno-connect/pkg/core"

	"golang.org/x/oauth2"
)

const requestTimeout = 30 * time.Second

// ErrNoRefreshToken is returned by Refresh when no refresh token is given.
var ErrNoRefreshToken = errors.New("refresh token is required")

// Config holds the client registration used with the provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// HTTPClient is used for every request. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	// AuthStyle overrides how client credentials reach the token endpoint.
	// Zero means the provider's own endpoint style, or auto-detection.
	AuthStyle oauth2.AuthStyle
}

// endpointer is implemented by providers that know their oauth2.Endpoint.
type endpointer interface {
	Endpoint() oauth2.Endpoint
}

// Client binds a provider adapter to x/oauth2.
type Client struct {
	provider   core.Provider
	oauth      *oauth2.Config
	httpClient *http.Client
}

// New creates a Client for provider.
func New(provider core.Provider, cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: requestTimeout,
		}
	}

	endpoint := oauth2.Endpoint{
		AuthURL:  provider.AuthorizationURL(),
		TokenURL: provider.TokenURL(),
	}
	if ep, ok := provider.(endpointer); ok {
		endpoint = ep.Endpoint()
	}
	if cfg.AuthStyle != oauth2.AuthStyleAutoDetect {
		endpoint.AuthStyle = cfg.AuthStyle
	}

	return &Client{
		provider: provider,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       provider.DefaultScopes(),
		},
		httpClient: httpClient,
	}
}

// Provider returns the adapter the client was built for.
func (c *Client) Provider() core.Provider {
	return c.provider
}

// OAuth2Config returns a copy of the underlying x/oauth2 configuration.
func (c *Client) OAuth2Config() oauth2.Config {
	return *c.oauth
}

// AuthCodeURL returns the consent page URL. When scopes is empty the
// provider's default scopes are requested.
func (c *Client) AuthCodeURL(state string, scopes []string, opts ...oauth2.AuthCodeOption) string {
	cfg := *c.oauth
	if len(scopes) > 0 {
		cfg.Scopes = scopes
	}
	return cfg.AuthCodeURL(state, opts...)
}

// validate hands resp to the provider, with its status line when the
// provider can use it.
func (c *Client) validate(resp *http.Response, body []byte) error {
	if resp == nil {
		return nil
	}
	if v, ok := c.provider.(core.HTTPResponseValidator); ok {
		return v.ValidateHTTPResponse(resp, body)
	}
	return c.provider.ValidateResponse(resp.StatusCode, body)
}

// translateError maps token endpoint failures onto the provider's error
// type when the server answered with an HTTP response.
func (c *Client) translateError(err error, resp *http.Response, body []byte) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		resp, body = re.Response, re.Body
	}
	if verr := c.validate(resp, body); verr != nil {
		return verr
	}
	return fmt.Errorf("token request failed: %w", err)
}

// decodeTokenResponse accepts JSON or form-encoded token responses.
func decodeTokenResponse(body []byte) (map[string]any, error) {
	raw, err := core.DecodeObject(body)
	if err == nil {
		return raw, nil
	}

	values, qerr := url.ParseQuery(string(body))
	if qerr != nil || len(values) == 0 {
		return nil, err
	}
	raw = make(map[string]any, len(values))
	for k := range values {
		raw[k] = values.Get(k)
	}
	return raw, nil
}
