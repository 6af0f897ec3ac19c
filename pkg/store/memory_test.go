package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-training/quaderno-connect/pkg/core"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if store == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}
	if store.states == nil {
		t.Error("states map should be initialized")
	}
	if store.sessions == nil {
		t.Error("sessions map should be initialized")
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, func(t *testing.T) core.Store {
		return NewMemoryStore()
	})
}

func TestMemoryStore_ExpiredStateIsDropped(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// Bypass SaveLoginState validation to simulate a state that expired while stored.
	store.states["stale"] = &core.LoginState{
		State:     "stale",
		ExpiresAt: time.Now().Add(-time.Second).Unix(),
	}

	if _, err := store.GetLoginState(ctx, "stale"); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("GetLoginState() error = %v, want %v", err, ErrStateNotFound)
	}
	if _, exists := store.states["stale"]; exists {
		t.Error("expired state should be removed on read")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const numGoroutines = 50
	var wg sync.WaitGroup
	wg.Add(numGoroutines * 2)

	// Concurrent writes
	for i := 0; i < numGoroutines; i++ {
		go func(index int) {
			defer wg.Done()
			session := &core.Session{
				ID:        fmt.Sprintf("session-%d", index),
				AccountID: fmt.Sprintf("acct_%d", index),
				CreatedAt: time.Now().Unix(),
			}
			if err := store.CreateSession(ctx, session); err != nil {
				t.Errorf("CreateSession() error = %v", err)
			}
		}(i)
	}

	// Concurrent reads
	for i := 0; i < numGoroutines; i++ {
		go func(index int) {
			defer wg.Done()
			_, _ = store.GetSession(ctx, fmt.Sprintf("session-%d", index))
		}(i)
	}

	wg.Wait()

	if len(store.sessions) != numGoroutines {
		t.Errorf("expected %d sessions, got %d", numGoroutines, len(store.sessions))
	}
}

func TestMemoryStore_SessionsAreCopied(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := &core.Session{
		ID:         "s1",
		AccountID:  "acct_1",
		Token:      &core.AccessToken{AccessToken: "old", Extra: map[string]any{"k": "v"}},
		Attributes: map[string]any{"name": "Acme"},
	}
	if err := store.CreateSession(ctx, original); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	original.Token.AccessToken = "mutated after create"

	got, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Token.AccessToken != "old" {
		t.Errorf("stored token changed through caller pointer: %q", got.Token.AccessToken)
	}

	// Mutating a read copy without UpdateSession leaves the store untouched.
	got.Token.AccessToken = "unsaved"
	got.Token.Extra["k"] = "unsaved"
	got.Attributes["name"] = "unsaved"
	got.UpdatedAt = 42

	again, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if again.Token.AccessToken != "old" || again.Token.Extra["k"] != "v" ||
		again.Attributes["name"] != "Acme" || again.UpdatedAt != 0 {
		t.Errorf("stored session changed without UpdateSession: %+v token=%+v", again, again.Token)
	}
}

func TestMemoryStore_ConcurrentReadModifyWrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.CreateSession(ctx, &core.Session{
		ID:    "s1",
		Token: &core.AccessToken{AccessToken: "t0"},
	}); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	const numGoroutines = 20
	var wg sync.WaitGroup
	wg.Add(numGoroutines * 2)

	// Writers replace the token on their own copy, as the refresh handler does.
	for i := 0; i < numGoroutines; i++ {
		go func(index int) {
			defer wg.Done()
			session, err := store.GetSession(ctx, "s1")
			if err != nil {
				t.Errorf("GetSession() error = %v", err)
				return
			}
			session.Token = &core.AccessToken{AccessToken: fmt.Sprintf("t%d", index)}
			session.UpdatedAt = time.Now().Unix()
			if err := store.UpdateSession(ctx, session); err != nil {
				t.Errorf("UpdateSession() error = %v", err)
			}
		}(i)
	}

	// Readers inspect the fields the writers replace.
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			session, err := store.GetSession(ctx, "s1")
			if err != nil {
				t.Errorf("GetSession() error = %v", err)
				return
			}
			if session.Token == nil || session.Token.AccessToken == "" || session.UpdatedAt < 0 {
				t.Errorf("unexpected session state: %+v", session)
			}
		}()
	}

	wg.Wait()
}
