package oauthclient

import (
	"context"
	"fmt"

	"github.com/go-training/quaderno-connect/pkg/core"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

// Exchange trades an authorization code for a token. Options such as
// oauth2.VerifierOption are passed through to x/oauth2.
func (c *Client) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*core.AccessToken, error) {
	ctx, span := core.StartSpan(ctx, "oauth.exchange",
		attribute.String("oauth.grant_type", core.GrantAuthorizationCode.String()),
		attribute.String("oauth.token_url", c.oauth.Endpoint.TokenURL),
	)
	defer span.End()

	rec, client := newRecorder(c.httpClient)
	tok, err := c.oauth.Exchange(withClient(ctx, client), code, opts...)
	return c.tokenResult(ctx, span, rec, tok, err, core.GrantAuthorizationCode)
}

// Refresh obtains a new token using refreshToken. The previous refresh
// token is kept when the provider does not rotate it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*core.AccessToken, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	ctx, span := core.StartSpan(ctx, "oauth.refresh",
		attribute.String("oauth.grant_type", core.GrantRefreshToken.String()),
		attribute.String("oauth.token_url", c.oauth.Endpoint.TokenURL),
	)
	defer span.End()

	rec, client := newRecorder(c.httpClient)
	src := c.oauth.TokenSource(withClient(ctx, client), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()

	token, err := c.tokenResult(ctx, span, rec, tok, err, core.GrantRefreshToken)
	if err != nil {
		return nil, err
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return token, nil
}

func (c *Client) tokenResult(
	ctx context.Context,
	span trace.Span,
	rec *recorder,
	tok *oauth2.Token,
	err error,
	grant core.Grant,
) (*core.AccessToken, error) {
	logger := core.LoggerFromCtx(ctx)
	resp, body := rec.last()
	var status int
	if resp != nil {
		status = resp.StatusCode
	}
	core.AddRequestAttributes(ctx, attribute.Int("http.status_code", status))

	if err != nil {
		err = c.translateError(err, resp, body)
		span.RecordError(err)
		span.SetStatus(codes.Error, "token request failed")
		logger.Error("Token request failed", "grant_type", grant, "status", status, "error", err)
		return nil, err
	}
	if verr := c.validate(resp, body); verr != nil {
		span.RecordError(verr)
		span.SetStatus(codes.Error, "token request rejected")
		return nil, verr
	}

	raw, err := decodeTokenResponse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	token, err := c.provider.CreateAccessToken(raw, grant)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}
	// x/oauth2 also understands "expires" style lifetimes some servers send.
	if token.Expiry.IsZero() && tok != nil {
		token.Expiry = tok.Expiry
	}

	logger.Debug("Token request succeeded",
		"grant_type", grant,
		"token_type", token.TokenType,
		"expires_in", token.ExpiresIn,
		"extra_fields", len(token.Extra),
	)
	return token, nil
}
