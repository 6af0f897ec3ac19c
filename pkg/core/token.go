package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// ErrMissingAccessToken is returned when a token response carries no access_token.
var ErrMissingAccessToken = errors.New("token response is missing access_token")

// Grant names the OAuth 2.0 grant that produced a token.
type Grant string

const (
	GrantAuthorizationCode Grant = "authorization_code"
	GrantRefreshToken      Grant = "refresh_token"
	GrantClientCredentials Grant = "client_credentials"
	GrantPassword          Grant = "password"
)

// String returns the grant_type parameter value for the grant.
func (g Grant) String() string {
	return string(g)
}

// definedTokenFields are the token response keys owned by NewAccessToken.
var definedTokenFields = map[string]struct{}{
	"access_token":      {},
	"refresh_token":     {},
	"token_type":        {},
	"expires_in":        {},
	"expires":           {},
	"resource_owner_id": {},
	"scope":             {},
}

// IsDefinedTokenField reports whether key maps onto a well-known AccessToken field.
func IsDefinedTokenField(key string) bool {
	_, ok := definedTokenFields[key]
	return ok
}

// AccessToken is the token record handed back by a code exchange or refresh.
// Provider-specific response fields live in Extra.
type AccessToken struct {
	AccessToken     string         `json:"access_token"`
	RefreshToken    string         `json:"refresh_token,omitempty"`
	TokenType       string         `json:"token_type,omitempty"`
	ExpiresIn       int64          `json:"expires_in,omitempty"`
	Expiry          time.Time      `json:"expiry,omitempty"`
	ResourceOwnerID string         `json:"resource_owner_id,omitempty"`
	Scope           string         `json:"scope,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// NewAccessToken builds the standard token record from a decoded token
// response. Only well-known keys are read; Extra is left empty.
func NewAccessToken(body map[string]any) (*AccessToken, error) {
	accessToken := StringValue(body["access_token"])
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	token := &AccessToken{
		AccessToken:     accessToken,
		RefreshToken:    StringValue(body["refresh_token"]),
		TokenType:       StringValue(body["token_type"]),
		ResourceOwnerID: StringValue(body["resource_owner_id"]),
		Scope:           StringValue(body["scope"]),
		Extra:           map[string]any{},
	}

	now := time.Now()
	if v, ok := body["expires_in"]; ok && v != nil {
		n, err := Int64Value(v)
		if err != nil {
			return nil, fmt.Errorf("invalid expires_in: %w", err)
		}
		token.ExpiresIn = n
		token.Expiry = now.Add(time.Duration(n) * time.Second)
	} else if v, ok := body["expires"]; ok && v != nil {
		n, err := Int64Value(v)
		if err != nil {
			return nil, fmt.Errorf("invalid expires: %w", err)
		}
		// Values in the past are relative lifetimes, not timestamps.
		if n < now.Unix() {
			token.ExpiresIn = n
			token.Expiry = now.Add(time.Duration(n) * time.Second)
		} else {
			token.Expiry = time.Unix(n, 0)
			token.ExpiresIn = n - now.Unix()
		}
	}

	return token, nil
}

// Expired reports whether the token has an expiry that has passed.
func (t *AccessToken) Expired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}

// OAuth2 converts the record to an *oauth2.Token carrying Extra as raw data.
func (t *AccessToken) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
		ExpiresIn:    t.ExpiresIn,
	}
	if len(t.Extra) > 0 {
		return tok.WithExtra(t.Extra)
	}
	return tok
}

// StringValue renders a decoded JSON scalar as a string. Numbers are
// printed without exponent; nil and composite values yield "".
func StringValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// Int64Value converts a decoded JSON number (or numeric string) to int64.
func Int64Value(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		return int64(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
