package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-training/quaderno-connect/pkg/core"

	"github.com/stretchr/testify/assert"
)

func TestMCPAuthMiddleware(t *testing.T) {
	a, _, s := newTestApp(t)
	seedSession(t, s, &core.AccessToken{AccessToken: "access-token-1234"})

	var reached int
	a.mcp = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached++
		w.WriteHeader(http.StatusOK)
	})
	router := a.router()

	tests := []struct {
		name string
		auth string
		want int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bare scheme", "Bearer", http.StatusUnauthorized},
		{"unknown session", "Bearer nope", http.StatusUnauthorized},
		{"known session", "Bearer sess-1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
	assert.Equal(t, 1, reached)
}

func TestCORSMiddleware(t *testing.T) {
	a, _, _ := newTestApp(t)
	router := a.router()

	req := httptest.NewRequest(http.MethodOptions, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Mcp-Protocol-Version")
}

func TestContainsCI(t *testing.T) {
	assert.True(t, containsCI([]string{"Authorization"}, "authorization"))
	assert.False(t, containsCI([]string{"Authorization"}, "X-Custom"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	a, _, _ := newTestApp(t)
	router := a.router()

	do(t, router, http.MethodGet, "/healthz")
	assert.Empty(t, buf.String(), "health checks are not logged")

	do(t, router, http.MethodGet, "/sessions/missing")
	assert.Contains(t, buf.String(), "/sessions/missing")
}
