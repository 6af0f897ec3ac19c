package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-training/quaderno-connect/pkg/core"
	"github.com/go-training/quaderno-connect/pkg/operation"
	"github.com/go-training/quaderno-connect/pkg/operation/account"

	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the underlying MCP server instance.
type MCPServer struct {
	server *server.MCPServer
	store  core.Store
}

// NewMCPServer creates the MCP server and registers the account tools.
func NewMCPServer(s core.Store, d account.Deauthorizer) *MCPServer {
	mcpServer := server.NewMCPServer(
		"quaderno-connect",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	// Register Tool
	operation.RegisterAccountTool(mcpServer, d)

	return &MCPServer{
		server: mcpServer,
		store:  s,
	}
}

// ServeHTTP returns a streamable HTTP server that injects the bearer session
// and the store into the context of every tool call.
func (s *MCPServer) ServeHTTP() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.server,
		server.WithHeartbeatInterval(30*time.Second),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			ctx = core.AuthFromRequest(ctx, r)
			ctx = core.WithStore(ctx, s.store)
			return core.WithRequestID(ctx)
		}),
	)
}

// ServeStdio serves the MCP tools over stdio on behalf of one session.
func (s *MCPServer) ServeStdio(sessionID string) error {
	return server.ServeStdio(s.server, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		ctx = core.WithAuth(ctx, "Bearer "+sessionID)
		ctx = core.WithStore(ctx, s.store)
		return core.WithRequestID(ctx)
	}))
}
