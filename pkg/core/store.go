package core

import "context"

// LoginState represents a pending authorization request started by the
// connect service and its associated PKCE verifier.
type LoginState struct {
	State        string   `json:"state"`
	CodeVerifier string   `json:"code_verifier,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
	RedirectTo   string   `json:"redirect_to,omitempty"`
	ExpiresAt    int64    `json:"expires_at"`
	CreatedAt    int64    `json:"created_at"`
}

// Session represents a connected Quaderno account.
type Session struct {
	ID         string         `json:"id"`
	AccountID  string         `json:"account_id"`
	Token      *AccessToken   `json:"token"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  int64          `json:"created_at"`
	UpdatedAt  int64          `json:"updated_at"`
}

// Store defines the interface for storing pending logins and sessions.
type Store interface {
	SaveLoginState(ctx context.Context, state *LoginState) error
	GetLoginState(ctx context.Context, state string) (*LoginState, error)
	DeleteLoginState(ctx context.Context, state string) error

	GetSession(ctx context.Context, id string) (*Session, error)
	CreateSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	DeleteSession(ctx context.Context, id string) error
}
