package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-training/quaderno-connect/pkg/core"
)

// testStore runs the behaviour every core.Store implementation must share.
func testStore(t *testing.T, newStore func(t *testing.T) core.Store) {
	t.Run("SaveLoginState", func(t *testing.T) {
		tests := []struct {
			name    string
			state   *core.LoginState
			wantErr error
		}{
			{
				name: "valid login state",
				state: &core.LoginState{
					State:        "state-valid",
					CodeVerifier: "verifier",
					Scopes:       []string{"read_only"},
					ExpiresAt:    time.Now().Add(10 * time.Minute).Unix(),
					CreatedAt:    time.Now().Unix(),
				},
			},
			{
				name:    "nil login state",
				state:   nil,
				wantErr: ErrNilLoginState,
			},
			{
				name: "empty state string",
				state: &core.LoginState{
					ExpiresAt: time.Now().Add(10 * time.Minute).Unix(),
				},
				wantErr: ErrEmptyState,
			},
			{
				name: "already expired",
				state: &core.LoginState{
					State:     "state-expired",
					ExpiresAt: time.Now().Add(-time.Minute).Unix(),
				},
				wantErr: ErrStateExpired,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := newStore(t)
				err := s.SaveLoginState(context.Background(), tt.state)
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SaveLoginState() error = %v, want %v", err, tt.wantErr)
				}
			})
		}
	})

	t.Run("LoginStateLifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		state := &core.LoginState{
			State:        "state-lifecycle",
			CodeVerifier: "verifier-123",
			Scopes:       []string{"read_only"},
			ExpiresAt:    time.Now().Add(10 * time.Minute).Unix(),
			CreatedAt:    time.Now().Unix(),
		}
		if err := s.SaveLoginState(ctx, state); err != nil {
			t.Fatalf("SaveLoginState() error = %v", err)
		}

		got, err := s.GetLoginState(ctx, "state-lifecycle")
		if err != nil {
			t.Fatalf("GetLoginState() error = %v", err)
		}
		if got.CodeVerifier != "verifier-123" {
			t.Errorf("GetLoginState() verifier = %q, want verifier-123", got.CodeVerifier)
		}
		if len(got.Scopes) != 1 || got.Scopes[0] != "read_only" {
			t.Errorf("GetLoginState() scopes = %v, want [read_only]", got.Scopes)
		}

		if err := s.DeleteLoginState(ctx, "state-lifecycle"); err != nil {
			t.Fatalf("DeleteLoginState() error = %v", err)
		}
		if _, err := s.GetLoginState(ctx, "state-lifecycle"); !errors.Is(err, ErrStateNotFound) {
			t.Errorf("GetLoginState() after delete error = %v, want %v", err, ErrStateNotFound)
		}
		if err := s.DeleteLoginState(ctx, "state-lifecycle"); !errors.Is(err, ErrStateNotFound) {
			t.Errorf("DeleteLoginState() twice error = %v, want %v", err, ErrStateNotFound)
		}
		if _, err := s.GetLoginState(ctx, ""); !errors.Is(err, ErrEmptyState) {
			t.Errorf("GetLoginState(\"\") error = %v, want %v", err, ErrEmptyState)
		}
	})

	t.Run("SessionLifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		session := &core.Session{
			ID:        "session-1",
			AccountID: "acct_123",
			Token: &core.AccessToken{
				AccessToken:  "a",
				RefreshToken: "r",
				Extra:        map[string]any{"custom_field": "x"},
			},
			Attributes: map[string]any{"account_id": "acct_123", "name": "X"},
			CreatedAt:  time.Now().Unix(),
			UpdatedAt:  time.Now().Unix(),
		}

		if err := s.UpdateSession(ctx, session); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("UpdateSession() before create error = %v, want %v", err, ErrSessionNotFound)
		}
		if err := s.CreateSession(ctx, session); err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}

		got, err := s.GetSession(ctx, "session-1")
		if err != nil {
			t.Fatalf("GetSession() error = %v", err)
		}
		if got.AccountID != "acct_123" {
			t.Errorf("GetSession() account = %q, want acct_123", got.AccountID)
		}
		if got.Token == nil || got.Token.AccessToken != "a" {
			t.Fatalf("GetSession() token = %+v, want access token a", got.Token)
		}
		if got.Token.Extra["custom_field"] != "x" {
			t.Errorf("GetSession() extra = %v, want custom_field=x", got.Token.Extra)
		}
		if got.Attributes["name"] != "X" {
			t.Errorf("GetSession() attributes = %v, want name=X", got.Attributes)
		}

		updated := *session
		updated.Token = &core.AccessToken{AccessToken: "b", RefreshToken: "r2"}
		if err := s.UpdateSession(ctx, &updated); err != nil {
			t.Fatalf("UpdateSession() error = %v", err)
		}
		got, err = s.GetSession(ctx, "session-1")
		if err != nil {
			t.Fatalf("GetSession() after update error = %v", err)
		}
		if got.Token.AccessToken != "b" {
			t.Errorf("GetSession() after update token = %q, want b", got.Token.AccessToken)
		}

		if err := s.DeleteSession(ctx, "session-1"); err != nil {
			t.Fatalf("DeleteSession() error = %v", err)
		}
		if _, err := s.GetSession(ctx, "session-1"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("GetSession() after delete error = %v, want %v", err, ErrSessionNotFound)
		}
		if err := s.DeleteSession(ctx, "session-1"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("DeleteSession() twice error = %v, want %v", err, ErrSessionNotFound)
		}
	})

	t.Run("SessionValidation", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.CreateSession(ctx, nil); !errors.Is(err, ErrNilSession) {
			t.Errorf("CreateSession(nil) error = %v, want %v", err, ErrNilSession)
		}
		if err := s.CreateSession(ctx, &core.Session{}); !errors.Is(err, ErrEmptySessionID) {
			t.Errorf("CreateSession(empty) error = %v, want %v", err, ErrEmptySessionID)
		}
		if err := s.UpdateSession(ctx, nil); !errors.Is(err, ErrNilSession) {
			t.Errorf("UpdateSession(nil) error = %v, want %v", err, ErrNilSession)
		}
		if _, err := s.GetSession(ctx, ""); !errors.Is(err, ErrEmptySessionID) {
			t.Errorf("GetSession(\"\") error = %v, want %v", err, ErrEmptySessionID)
		}
		if err := s.DeleteSession(ctx, ""); !errors.Is(err, ErrEmptySessionID) {
			t.Errorf("DeleteSession(\"\") error = %v, want %v", err, ErrEmptySessionID)
		}
	})
}
