package quaderno

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-training/quaderno-connect/pkg/core"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Deauthorize revokes accessToken at Quaderno. The request authenticates
// with the client credentials in the form body, not with the token itself.
// It returns the decoded response body.
func (p *Provider) Deauthorize(ctx context.Context, accessToken string) (map[string]any, error) {
	ctx, span := core.StartSpan(ctx, "quaderno.deauthorize",
		attribute.String("quaderno.url", p.DeauthorizationURL()),
	)
	defer span.End()

	logger := core.LoggerFromCtx(ctx)

	form := url.Values{}
	form.Set("token", accessToken)
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, p.DeauthorizationURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build Quaderno deauthorize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, fmt.Errorf("failed to deauthorize Quaderno token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Quaderno deauthorize response body: %w", err)
	}
	logger.Debug("Quaderno deauthorize response", "status", resp.StatusCode, "body_size", len(body))
	core.AddRequestAttributes(ctx, attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := newIdentityProviderError(resp.StatusCode, reasonPhrase(resp), body)
		span.RecordError(err)
		span.SetStatus(codes.Error, "deauthorize rejected")
		return nil, err
	}

	parsed, err := core.DecodeObject(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Quaderno deauthorize response: %w", err)
	}
	return parsed, nil
}
