package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// AuthKey is a custom context key type for storing the auth header in context.
type AuthKey struct{}

// RequestIDKey is a custom context key type for storing the request ID in context.
type RequestIDKey struct{}

// StoreKey is a custom context key type for storing the Store in context.
type StoreKey struct{}

// WithRequestID returns a new context with a generated request ID set.
func WithRequestID(ctx context.Context) context.Context {
	reqID := uuid.New().String()
	return context.WithValue(ctx, RequestIDKey{}, reqID)
}

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey{}).(string)
	return reqID
}

// WithAuth returns a new context carrying the given Authorization value.
func WithAuth(ctx context.Context, auth string) context.Context {
	return context.WithValue(ctx, AuthKey{}, auth)
}

// AuthFromRequest extracts the Authorization header from the HTTP request
// and stores it in the context.
func AuthFromRequest(ctx context.Context, r *http.Request) context.Context {
	return WithAuth(ctx, r.Header.Get("Authorization"))
}

// TokenFromContext retrieves the auth header from the context.
// Returns the raw header value if present, or an error if missing.
func TokenFromContext(ctx context.Context) (string, error) {
	auth, ok := ctx.Value(AuthKey{}).(string)
	if !ok {
		return "", fmt.Errorf("missing auth")
	}
	return auth, nil
}

// SessionIDFromContext returns the session ID carried as a bearer credential
// in the Authorization header stored in ctx.
func SessionIDFromContext(ctx context.Context) (string, error) {
	auth, err := TokenFromContext(ctx)
	if err != nil {
		return "", err
	}
	var id string
	fields := strings.Fields(auth)
	switch {
	case len(fields) == 2 && strings.EqualFold(fields[0], "bearer"):
		id = fields[1]
	case len(fields) == 1 && !strings.EqualFold(fields[0], "bearer"):
		id = fields[0]
	}
	if id == "" {
		return "", fmt.Errorf("empty session id")
	}
	return id, nil
}

// LoggerFromCtx returns a slog.Logger with request_id field if present in context.
// If no request ID is found, it returns the default logger.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if reqID := RequestIDFromContext(ctx); reqID != "" {
		return slog.Default().With("request_id", reqID)
	}
	return slog.Default()
}

// WithStore returns a new context with the provided Store set.
func WithStore(ctx context.Context, store Store) context.Context {
	return context.WithValue(ctx, StoreKey{}, store)
}

// StoreFromContext retrieves the Store from the context.
// Returns the Store interface if present, or an error if missing.
func StoreFromContext(ctx context.Context) (Store, error) {
	store, ok := ctx.Value(StoreKey{}).(Store)
	if !ok {
		return nil, fmt.Errorf("missing store")
	}
	return store, nil
}
