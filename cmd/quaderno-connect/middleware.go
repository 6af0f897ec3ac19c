package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-training/quaderno-connect/pkg/core"

	sloggin "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
)

var defaultCORSHeaders = []string{"Mcp-Protocol-Version", "Mcp-Session-Id", "Authorization", "Content-Type"}

// corsMiddleware sets permissive CORS headers. Extra allowed headers are
// merged with the defaults, case-insensitively.
func corsMiddleware(allowedHeaders ...string) gin.HandlerFunc {
	headers := append([]string{}, defaultCORSHeaders...)
	for _, h := range allowedHeaders {
		h = strings.TrimSpace(h)
		if h != "" && h != "*" && !containsCI(headers, h) {
			headers = append(headers, h)
		}
	}
	allowHeaders := strings.Join(headers, ", ")
	allowMethods := strings.Join([]string{"GET", "POST", "DELETE", "OPTIONS"}, ", ")

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Vary", "Origin")
		c.Header("Access-Control-Allow-Methods", allowMethods)
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Max-Age", "86400")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// authMiddleware requires a bearer credential naming an existing session.
func (a *app) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := core.AuthFromRequest(c.Request.Context(), c.Request)
		id, err := core.SessionIDFromContext(ctx)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer session"})
			return
		}
		if _, err := a.store.GetSession(ctx, id); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown session"})
			return
		}
		c.Next()
	}
}

// requestLogger logs one line per request through the process-wide slog
// logger. Health checks are skipped.
func requestLogger() gin.HandlerFunc {
	return sloggin.SetLogger(
		sloggin.WithLogger(func(_ *gin.Context, _ *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
		sloggin.WithSkipPath([]string{"/healthz"}),
	)
}

// containsCI checks if slice contains item (case-insensitive).
func containsCI(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
