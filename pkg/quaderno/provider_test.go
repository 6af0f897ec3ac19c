package quaderno

import (
	"encoding/json"
	"testing"

	"github.com/go-training/quaderno-connect/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNew(t *testing.T) {
	// Test default host
	provider := New(Options{})
	if provider.baseURI != DefaultBaseURI {
		t.Errorf("Expected default base URI to be %s, got %s", DefaultBaseURI, provider.baseURI)
	}
	if provider.httpClient == nil {
		t.Fatal("Expected httpClient to be initialized")
	}
	if provider.httpClient.Timeout != requestTimeout {
		t.Errorf("Expected httpClient timeout %v, got %v", requestTimeout, provider.httpClient.Timeout)
	}

	// Test custom host
	customHost := "https://sandbox-quadernoapp.com"
	provider = New(Options{BaseURI: customHost, ClientID: "id", RedirectURI: "https://example.com/cb"})
	if provider.BaseURI() != customHost {
		t.Errorf("Expected base URI to be %s, got %s", customHost, provider.BaseURI())
	}
	if provider.ClientID() != "id" {
		t.Errorf("Expected client ID id, got %s", provider.ClientID())
	}
	if provider.RedirectURI() != "https://example.com/cb" {
		t.Errorf("Expected redirect URI https://example.com/cb, got %s", provider.RedirectURI())
	}
}

func TestProvider_URLs(t *testing.T) {
	tests := []struct {
		name    string
		baseURI string
	}{
		{name: "default host", baseURI: DefaultBaseURI},
		{name: "sandbox host", baseURI: "https://sandbox-quadernoapp.com"},
		{name: "trailing slash is kept", baseURI: "http://localhost:3000/"},
		{name: "path prefix", baseURI: "https://proxy.example.com/quaderno"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Options{BaseURI: tt.baseURI})

			assert.Equal(t, tt.baseURI+"/oauth/authorize", p.AuthorizationURL())
			assert.Equal(t, tt.baseURI+"/oauth/token", p.TokenURL())
			assert.Equal(t, tt.baseURI+"/api/authorization", p.ResourceOwnerDetailsURL(nil))
			assert.Equal(t, tt.baseURI+"/api/authorization",
				p.ResourceOwnerDetailsURL(&core.AccessToken{AccessToken: "abc"}))
			assert.Equal(t, tt.baseURI+"/oauth/deauthorize", p.DeauthorizationURL())
		})
	}
}

func TestProvider_DefaultScopes(t *testing.T) {
	p := New(Options{})
	assert.Equal(t, []string{"read_only"}, p.DefaultScopes())

	// Callers cannot change the defaults through the returned slice.
	scopes := p.DefaultScopes()
	scopes[0] = "write"
	assert.Equal(t, []string{"read_only"}, p.DefaultScopes())
}

func TestProvider_Endpoint(t *testing.T) {
	p := New(Options{BaseURI: "https://q.example.com"})
	endpoint := p.Endpoint()

	assert.Equal(t, "https://q.example.com/oauth/authorize", endpoint.AuthURL)
	assert.Equal(t, "https://q.example.com/oauth/token", endpoint.TokenURL)
	assert.Equal(t, oauth2.AuthStyleInParams, endpoint.AuthStyle)
}

func TestProvider_CreateAccessToken(t *testing.T) {
	p := New(Options{})

	body := map[string]any{
		"access_token":  "a",
		"refresh_token": "r",
		"token_type":    "bearer",
		"expires_in":    json.Number("3600"),
		"custom_field":  "x",
		"account":       map[string]any{"id": "acct_1"},
	}

	token, err := p.CreateAccessToken(body, core.GrantAuthorizationCode)
	require.NoError(t, err)

	assert.Equal(t, "a", token.AccessToken)
	assert.Equal(t, "r", token.RefreshToken)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, int64(3600), token.ExpiresIn)
	assert.False(t, token.Expiry.IsZero())

	assert.Equal(t, "x", token.Extra["custom_field"])
	assert.Equal(t, map[string]any{"id": "acct_1"}, token.Extra["account"])

	// Standard fields are never copied into the extension map.
	assert.NotContains(t, token.Extra, "access_token")
	assert.NotContains(t, token.Extra, "refresh_token")
	assert.NotContains(t, token.Extra, "expires_in")
	assert.Len(t, token.Extra, 2)
}

func TestProvider_CreateAccessToken_MissingAccessToken(t *testing.T) {
	p := New(Options{})

	_, err := p.CreateAccessToken(map[string]any{"custom_field": "x"}, core.GrantRefreshToken)
	assert.ErrorIs(t, err, core.ErrMissingAccessToken)
}

func TestProvider_CreateResourceOwner(t *testing.T) {
	p := New(Options{})
	body := map[string]any{"account_id": "acct_123", "name": "X"}

	owner := p.CreateResourceOwner(body, &core.AccessToken{AccessToken: "a"})
	require.IsType(t, &ResourceOwner{}, owner)

	assert.Equal(t, "acct_123", owner.ID())
	assert.Equal(t, "acct_123", owner.(*ResourceOwner).AccountID())
	assert.Equal(t, body, owner.RawAttributes())
}
