// Package account provides MCP tools for inspecting and disconnecting the
// Quaderno account bound to the caller's session.
package account

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-training/quaderno-connect/pkg/core"
	"github.com/go-training/quaderno-connect/pkg/quaderno"

	"github.com/mark3labs/mcp-go/mcp"
)

// Deauthorizer revokes an access token at the provider.
type Deauthorizer interface {
	Deauthorize(ctx context.Context, accessToken string) (map[string]any, error)
}

// ShowAccountTool defines the MCP tool returning the connected account.
var ShowAccountTool = mcp.NewTool("show_account",
	mcp.WithDescription("Show the Quaderno account connected to the current session"),
)

// DeauthorizeAccountTool defines the MCP tool revoking the session's token.
var DeauthorizeAccountTool = mcp.NewTool("deauthorize_account",
	mcp.WithDescription(`Deauthorize Account Tool

Revokes the Quaderno access token of the current session and removes the
session. The caller must reconnect through /login afterwards.`),
)

// accountView is the JSON returned by show_account.
type accountView struct {
	SessionID   string         `json:"session_id"`
	AccountID   string         `json:"account_id"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	Scope       string         `json:"scope,omitempty"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	TokenStatus string         `json:"token_status"`
}

// Handlers serves the account tools.
type Handlers struct {
	deauthorizer Deauthorizer
}

// NewHandlers creates account tool handlers revoking tokens through d.
func NewHandlers(d Deauthorizer) *Handlers {
	return &Handlers{deauthorizer: d}
}

func sessionFromContext(ctx context.Context) (core.Store, *core.Session, error) {
	id, err := core.SessionIDFromContext(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("missing session: %w", err)
	}
	store, err := core.StoreFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	session, err := store.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return store, session, nil
}

// HandleShowAccount returns the session's account ID and raw attributes.
func (h *Handlers) HandleShowAccount(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)
	logger.Info("Handling show_account tool")

	_, session, err := sessionFromContext(ctx)
	if err != nil {
		logger.Error("Failed to resolve session", "error", err)
		return nil, err
	}

	view := accountView{
		SessionID:   session.ID,
		AccountID:   session.AccountID,
		Attributes:  session.Attributes,
		TokenStatus: "active",
	}
	if session.Token != nil {
		view.Scope = session.Token.Scope
		if !session.Token.Expiry.IsZero() {
			expiry := session.Token.Expiry
			view.ExpiresAt = &expiry
		}
		if session.Token.Expired() {
			view.TokenStatus = "expired"
		}
	}

	data, err := json.Marshal(view)
	if err != nil {
		logger.Error("Failed to marshal account to JSON", "error", err)
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// HandleDeauthorizeAccount revokes the token and deletes the session.
// Rejections from Quaderno are reported as tool errors.
func (h *Handlers) HandleDeauthorizeAccount(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)
	logger.Info("Handling deauthorize_account tool")

	store, session, err := sessionFromContext(ctx)
	if err != nil {
		logger.Error("Failed to resolve session", "error", err)
		return nil, err
	}
	if session.Token == nil || session.Token.AccessToken == "" {
		return mcp.NewToolResultError("session has no access token"), nil
	}

	resp, err := h.deauthorizer.Deauthorize(ctx, session.Token.AccessToken)
	if err != nil {
		if ipErr, ok := quaderno.AsIdentityProviderError(err); ok {
			logger.Warn("Quaderno rejected deauthorization",
				"status", ipErr.StatusCode, "message", ipErr.Message)
			return mcp.NewToolResultError(ipErr.Message), nil
		}
		logger.Error("Deauthorize failed", "error", err)
		return nil, err
	}

	if err := store.DeleteSession(ctx, session.ID); err != nil {
		logger.Error("Failed to delete session", "session_id", session.ID, "error", err)
		return nil, err
	}

	data, err := json.Marshal(map[string]any{
		"account_id": session.AccountID,
		"response":   resp,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Account deauthorized", "account_id", session.AccountID)
	return mcp.NewToolResultText(string(data)), nil
}
