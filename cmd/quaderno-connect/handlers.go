package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-training/quaderno-connect/pkg/core"
	"github.com/go-training/quaderno-connect/pkg/oauthclient"
	"github.com/go-training/quaderno-connect/pkg/operation/account"
	"github.com/go-training/quaderno-connect/pkg/quaderno"
	"github.com/go-training/quaderno-connect/pkg/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const defaultLoginStateTTL = 10 * time.Minute

// app holds the dependencies shared by the HTTP handlers.
type app struct {
	store        core.Store
	client       *oauthclient.Client
	deauthorizer account.Deauthorizer
	mcp          http.Handler
	stateTTL     time.Duration
	now          func() time.Time
}

func (a *app) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

// router registers every route of the connect service.
func (a *app) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/login", a.handleLogin)
	router.GET("/callback", a.handleCallback)

	sessions := router.Group("/sessions")
	sessions.GET("/:id", a.handleGetSession)
	sessions.POST("/:id/refresh", a.handleRefreshSession)
	sessions.DELETE("/:id", a.handleDeleteSession)

	if a.mcp != nil {
		// Register POST, GET, DELETE methods for the /mcp path, all handled by the MCP server
		auth := a.authMiddleware()
		router.POST("/mcp", auth, gin.WrapH(a.mcp))
		router.GET("/mcp", auth, gin.WrapH(a.mcp))
		router.DELETE("/mcp", auth, gin.WrapH(a.mcp))
	}

	return router
}

func (a *app) handleLogin(c *gin.Context) {
	ttl := a.stateTTL
	if ttl <= 0 {
		ttl = defaultLoginStateTTL
	}
	now := a.clock()

	state := &core.LoginState{
		State:        uuid.NewString(),
		CodeVerifier: oauth2.GenerateVerifier(),
		Scopes:       strings.Fields(c.Query("scope")),
		RedirectTo:   c.Query("redirect_to"),
		CreatedAt:    now.Unix(),
		ExpiresAt:    now.Add(ttl).Unix(),
	}
	if err := a.store.SaveLoginState(c.Request.Context(), state); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	authURL := a.client.AuthCodeURL(state.State, state.Scopes, oauth2.S256ChallengeOption(state.CodeVerifier))
	core.LoggerFromCtx(c.Request.Context()).Debug("Redirecting to Quaderno",
		"state", state.State,
		"scopes", state.Scopes,
	)
	c.Redirect(http.StatusFound, authURL)
}

func (a *app) handleCallback(c *gin.Context) {
	ctx := c.Request.Context()
	log := core.LoggerFromCtx(ctx)

	if e := c.Query("error"); e != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             e,
			"error_description": c.Query("error_description"),
		})
		return
	}

	code := c.Query("code")
	stateParam := c.Query("state")
	if code == "" || stateParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and state are required"})
		return
	}

	state, err := a.store.GetLoginState(ctx, stateParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	// A state is single use, even when the exchange below fails. Only the
	// caller that deletes it may continue.
	if err := a.store.DeleteLoginState(ctx, state.State); err != nil {
		if errors.Is(err, store.ErrStateNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
			return
		}
		log.Error("Failed to delete login state", "state", state.State, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to consume login state"})
		return
	}

	token, err := a.client.Exchange(ctx, code, oauth2.VerifierOption(state.CodeVerifier))
	if err != nil {
		log.Error("Token exchange failed", "error", err)
		providerFailure(c, err)
		return
	}

	owner, err := a.client.ResourceOwner(ctx, token)
	if err != nil {
		log.Error("Failed to fetch resource owner", "error", err)
		providerFailure(c, err)
		return
	}

	now := a.clock().Unix()
	session := &core.Session{
		ID:         uuid.NewString(),
		AccountID:  owner.ID(),
		Token:      token,
		Attributes: owner.RawAttributes(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.store.CreateSession(ctx, session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Info("Quaderno account connected", "account_id", session.AccountID, "session_id", session.ID)

	resp := gin.H{
		"session_id": session.ID,
		"account_id": session.AccountID,
	}
	if state.RedirectTo != "" {
		resp["redirect_to"] = state.RedirectTo
	}
	c.JSON(http.StatusCreated, resp)
}

func (a *app) handleGetSession(c *gin.Context) {
	session, ok := a.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionView(session, a.clock()))
}

func (a *app) handleRefreshSession(c *gin.Context) {
	ctx := c.Request.Context()
	session, ok := a.lookupSession(c)
	if !ok {
		return
	}

	var refreshToken string
	if session.Token != nil {
		refreshToken = session.Token.RefreshToken
	}
	token, err := a.client.Refresh(ctx, refreshToken)
	if errors.Is(err, oauthclient.ErrNoRefreshToken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		core.LoggerFromCtx(ctx).Error("Token refresh failed", "session_id", session.ID, "error", err)
		providerFailure(c, err)
		return
	}

	session.Token = token
	session.UpdatedAt = a.clock().Unix()
	if err := a.store.UpdateSession(ctx, session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newSessionView(session, a.clock()))
}

func (a *app) handleDeleteSession(c *gin.Context) {
	ctx := c.Request.Context()
	session, ok := a.lookupSession(c)
	if !ok {
		return
	}

	resp := map[string]any{}
	if session.Token != nil && session.Token.AccessToken != "" {
		var err error
		resp, err = a.deauthorizer.Deauthorize(ctx, session.Token.AccessToken)
		if err != nil {
			core.LoggerFromCtx(ctx).Error("Deauthorize failed", "session_id", session.ID, "error", err)
			providerFailure(c, err)
			return
		}
	}

	if err := a.store.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account_id": session.AccountID,
		"response":   resp,
	})
}

// lookupSession writes a 404 and reports false when the path session does not exist.
func (a *app) lookupSession(c *gin.Context) (*core.Session, bool) {
	session, err := a.store.GetSession(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, store.ErrSessionNotFound), errors.Is(err, store.ErrEmptySessionID):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return session, true
}

// providerFailure maps an upstream failure to 502.
func providerFailure(c *gin.Context, err error) {
	if ipErr, ok := quaderno.AsIdentityProviderError(err); ok {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":           ipErr.Message,
			"provider_status": ipErr.StatusCode,
		})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

type tokenView struct {
	AccessToken     string         `json:"access_token"`
	TokenType       string         `json:"token_type,omitempty"`
	Scope           string         `json:"scope,omitempty"`
	Expiry          *time.Time     `json:"expiry,omitempty"`
	Expired         bool           `json:"expired"`
	HasRefreshToken bool           `json:"has_refresh_token"`
	Extra           map[string]any `json:"extra,omitempty"`
}

type sessionView struct {
	SessionID  string         `json:"session_id"`
	AccountID  string         `json:"account_id"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Token      *tokenView     `json:"token,omitempty"`
	CreatedAt  int64          `json:"created_at"`
	UpdatedAt  int64          `json:"updated_at"`
}

func newSessionView(session *core.Session, now time.Time) sessionView {
	view := sessionView{
		SessionID:  session.ID,
		AccountID:  session.AccountID,
		Attributes: session.Attributes,
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.UpdatedAt,
	}
	if t := session.Token; t != nil {
		tv := &tokenView{
			AccessToken:     maskToken(t.AccessToken),
			TokenType:       t.TokenType,
			Scope:           t.Scope,
			HasRefreshToken: t.RefreshToken != "",
			Extra:           t.Extra,
		}
		if !t.Expiry.IsZero() {
			expiry := t.Expiry
			tv.Expiry = &expiry
			tv.Expired = !expiry.After(now)
		}
		view.Token = tv
	}
	return view
}

// maskToken keeps the last four characters of long tokens.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
