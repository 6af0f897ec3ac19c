package oauthclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-training/quaderno-connect/pkg/core"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ResourceOwner fetches the account behind token from the provider's
// resource-owner endpoint using bearer authorization.
func (c *Client) ResourceOwner(ctx context.Context, token *core.AccessToken) (core.ResourceOwner, error) {
	if token == nil || token.AccessToken == "" {
		return nil, core.ErrMissingAccessToken
	}

	detailsURL := c.provider.ResourceOwnerDetailsURL(token)
	ctx, span := core.StartSpan(ctx, "oauth.resource_owner",
		attribute.String("oauth.resource_owner_url", detailsURL),
	)
	defer span.End()

	logger := core.LoggerFromCtx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailsURL, nil)
	if err != nil {
		return nil, err
	}
	token.OAuth2().SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, fmt.Errorf("failed to fetch resource owner: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read resource owner body: %w", err)
	}
	logger.Debug("Resource owner response", "status", resp.StatusCode, "body_size", len(body))
	core.AddRequestAttributes(ctx, attribute.Int("http.status_code", resp.StatusCode))

	if err := c.validate(resp, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resource owner rejected")
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("failed to fetch resource owner with status %d", resp.StatusCode)
	}

	raw, err := core.DecodeObject(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode resource owner: %w", err)
	}
	return c.provider.CreateResourceOwner(raw, token), nil
}
