package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-training/quaderno-connect/pkg/core"
)

var (
	// ErrStateNotFound is returned when a login state is not found or has expired.
	ErrStateNotFound = errors.New("login state not found")
	// ErrNilLoginState is returned when attempting to save a nil login state.
	ErrNilLoginState = errors.New("login state cannot be nil")
	// ErrEmptyState is returned when the state string is empty.
	ErrEmptyState = errors.New("state cannot be empty")
	// ErrStateExpired is returned when saving a login state that has already expired.
	ErrStateExpired = errors.New("login state is already expired")
	// ErrSessionNotFound is returned when a session is not found in the store.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNilSession is returned when attempting to save a nil session.
	ErrNilSession = errors.New("session cannot be nil")
	// ErrEmptySessionID is returned when the session ID string is empty.
	ErrEmptySessionID = errors.New("session ID cannot be empty")
)

// MemoryStore implements the core.Store interface using an in-memory map.
// It provides thread-safe storage for login states and sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	states   map[string]*core.LoginState
	sessions map[string]*core.Session
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states:   make(map[string]*core.LoginState),
		sessions: make(map[string]*core.Session),
	}
}

// SaveLoginState stores a login state in memory.
// It returns an error if the state is nil, empty or already expired.
func (m *MemoryStore) SaveLoginState(ctx context.Context, state *core.LoginState) error {
	if state == nil {
		return ErrNilLoginState
	}
	if state.State == "" {
		return ErrEmptyState
	}
	if time.Now().Unix() > state.ExpiresAt {
		return ErrStateExpired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[state.State] = cloneLoginState(state)
	return nil
}

// GetLoginState retrieves a login state by its state string.
// Expired states are removed and reported as ErrStateNotFound.
func (m *MemoryStore) GetLoginState(ctx context.Context, state string) (*core.LoginState, error) {
	if state == "" {
		return nil, ErrEmptyState
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loginState, exists := m.states[state]
	if !exists {
		return nil, ErrStateNotFound
	}
	if time.Now().Unix() > loginState.ExpiresAt {
		delete(m.states, state)
		return nil, ErrStateNotFound
	}

	return cloneLoginState(loginState), nil
}

// DeleteLoginState removes a login state from memory.
// It returns ErrStateNotFound if the state does not exist.
func (m *MemoryStore) DeleteLoginState(ctx context.Context, state string) error {
	if state == "" {
		return ErrEmptyState
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.states[state]; !exists {
		return ErrStateNotFound
	}

	delete(m.states, state)
	return nil
}

// GetSession retrieves a session from memory by its ID.
// It returns ErrSessionNotFound if the session does not exist.
func (m *MemoryStore) GetSession(ctx context.Context, id string) (*core.Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return cloneSession(session), nil
}

// CreateSession stores a new session in memory.
// It returns an error if the session is nil or the session ID is empty.
func (m *MemoryStore) CreateSession(ctx context.Context, session *core.Session) error {
	if session == nil {
		return ErrNilSession
	}
	if session.ID == "" {
		return ErrEmptySessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = cloneSession(session)
	return nil
}

// UpdateSession updates an existing session in memory.
// It returns an error if the session is nil, the ID is empty, or the session does not exist.
func (m *MemoryStore) UpdateSession(ctx context.Context, session *core.Session) error {
	if session == nil {
		return ErrNilSession
	}
	if session.ID == "" {
		return ErrEmptySessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; !exists {
		return ErrSessionNotFound
	}

	m.sessions[session.ID] = cloneSession(session)
	return nil
}

// DeleteSession removes a session from memory by its ID.
// It returns ErrSessionNotFound if the session does not exist.
func (m *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptySessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return ErrSessionNotFound
	}

	delete(m.sessions, id)
	return nil
}

// Stored values are copied in and out so callers never share them, as with
// values decoded from Redis.

func cloneLoginState(state *core.LoginState) *core.LoginState {
	c := *state
	c.Scopes = append([]string(nil), state.Scopes...)
	return &c
}

func cloneSession(session *core.Session) *core.Session {
	c := *session
	c.Attributes = cloneMap(session.Attributes)
	if session.Token != nil {
		token := *session.Token
		token.Extra = cloneMap(session.Token.Extra)
		c.Token = &token
	}
	return &c
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
