package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-training/quaderno-connect/pkg/core"
	"github.com/redis/rueidis"
)

const (
	// Key prefixes for Redis storage
	loginStatePrefix = "quaderno:login_state:"
	sessionPrefix    = "quaderno:session:"
)

// RedisStore implements the core.Store interface using Redis via rueidis.
// It provides persistent storage for login states and sessions.
type RedisStore struct {
	client rueidis.Client
}

// NewRedisStore creates a new instance of RedisStore with the provided rueidis client.
func NewRedisStore(client rueidis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

// RedisOptions contains configuration for Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStoreFromOptions creates a new RedisStore with simplified options.
func NewRedisStoreFromOptions(opts RedisOptions) (*RedisStore, error) {
	clientOpts := rueidis.ClientOption{
		InitAddress: []string{opts.Addr},
		Password:    opts.Password,
		SelectDB:    opts.DB,
	}
	return NewRedisStoreFromClientOption(clientOpts)
}

// NewRedisStoreFromClientOption creates a new RedisStore with full rueidis client options.
func NewRedisStoreFromClientOption(opts rueidis.ClientOption) (*RedisStore, error) {
	client, err := rueidis.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return NewRedisStore(client), nil
}

// Close closes the Redis client connection.
func (r *RedisStore) Close() {
	r.client.Close()
}

// SaveLoginState stores a login state in Redis with a TTL matching its expiry.
func (r *RedisStore) SaveLoginState(ctx context.Context, state *core.LoginState) error {
	if state == nil {
		return ErrNilLoginState
	}
	if state.State == "" {
		return ErrEmptyState
	}

	ttl := time.Until(time.Unix(state.ExpiresAt, 0))
	if ttl < time.Second {
		return ErrStateExpired
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal login state: %w", err)
	}

	key := loginStatePrefix + state.State
	cmd := r.client.B().Set().Key(key).Value(string(data)).ExSeconds(int64(ttl.Seconds())).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save login state to redis: %w", err)
	}

	return nil
}

// GetLoginState retrieves a login state from Redis.
// It returns ErrStateNotFound if the state does not exist or has expired.
func (r *RedisStore) GetLoginState(ctx context.Context, state string) (*core.LoginState, error) {
	if state == "" {
		return nil, ErrEmptyState
	}

	key := loginStatePrefix + state
	cmd := r.client.B().Get().Key(key).Build()
	result, err := r.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get login state from redis: %w", err)
	}

	var loginState core.LoginState
	if err := json.Unmarshal([]byte(result), &loginState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal login state: %w", err)
	}

	// Redis TTL has second granularity.
	if time.Now().Unix() > loginState.ExpiresAt {
		_ = r.DeleteLoginState(ctx, state)
		return nil, ErrStateNotFound
	}

	return &loginState, nil
}

// DeleteLoginState removes a login state from Redis.
// It returns ErrStateNotFound if the state does not exist.
func (r *RedisStore) DeleteLoginState(ctx context.Context, state string) error {
	if state == "" {
		return ErrEmptyState
	}

	cmd := r.client.B().Del().Key(loginStatePrefix + state).Build()
	result, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return fmt.Errorf("failed to delete login state from redis: %w", err)
	}
	if result == 0 {
		return ErrStateNotFound
	}

	return nil
}

// GetSession retrieves a session from Redis by its ID.
// It returns ErrSessionNotFound if the session does not exist.
func (r *RedisStore) GetSession(ctx context.Context, id string) (*core.Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	key := sessionPrefix + id
	cmd := r.client.B().Get().Key(key).Build()
	result, err := r.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var session core.Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// CreateSession stores a new session in Redis.
func (r *RedisStore) CreateSession(ctx context.Context, session *core.Session) error {
	if session == nil {
		return ErrNilSession
	}
	if session.ID == "" {
		return ErrEmptySessionID
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	cmd := r.client.B().Set().Key(sessionPrefix + session.ID).Value(string(data)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to create session in redis: %w", err)
	}

	return nil
}

// UpdateSession replaces an existing session in Redis.
// It returns ErrSessionNotFound if the session does not exist.
func (r *RedisStore) UpdateSession(ctx context.Context, session *core.Session) error {
	if session == nil {
		return ErrNilSession
	}
	if session.ID == "" {
		return ErrEmptySessionID
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// SET XX only writes when the key already exists.
	key := sessionPrefix + session.ID
	cmd := r.client.B().Set().Key(key).Value(string(data)).Xx().Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to update session in redis: %w", err)
	}

	return nil
}

// DeleteSession removes a session from Redis by its ID.
// It returns ErrSessionNotFound if the session does not exist.
func (r *RedisStore) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptySessionID
	}

	cmd := r.client.B().Del().Key(sessionPrefix + id).Build()
	result, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	if result == 0 {
		return ErrSessionNotFound
	}

	return nil
}
