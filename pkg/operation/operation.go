package operation

import (
	"github.com/go-training/quaderno-connect/pkg/operation/account"

	"github.com/mark3labs/mcp-go/server"
)

/*
RegisterAccountTool registers the Quaderno account tools to the specified MCPServer instance.

Parameters:
  - s: Pointer to the MCPServer instance where the tools will be registered.
  - d: The provider used to revoke tokens.

Handlers resolve the session from the bearer credential and the store placed
in the request context.
*/
func RegisterAccountTool(s *server.MCPServer, d account.Deauthorizer) {
	tool := &Tool{}
	handlers := account.NewHandlers(d)

	tool.RegisterRead(server.ServerTool{
		Tool:    account.ShowAccountTool,
		Handler: handlers.HandleShowAccount,
	})
	tool.RegisterWrite(server.ServerTool{
		Tool:    account.DeauthorizeAccountTool,
		Handler: handlers.HandleDeauthorizeAccount,
	})

	s.AddTools(tool.Tools()...)
}

// Tool collects read and write tools before they are added to a server.
type Tool struct {
	write []server.ServerTool
	read  []server.ServerTool
}

// RegisterWrite registers a ServerTool as a write operation.
func (t *Tool) RegisterWrite(s server.ServerTool) {
	t.write = append(t.write, s)
}

// RegisterRead registers a ServerTool as a read operation.
func (t *Tool) RegisterRead(s server.ServerTool) {
	t.read = append(t.read, s)
}

// Tools returns all registered tools, write tools first.
func (t *Tool) Tools() []server.ServerTool {
	tools := make([]server.ServerTool, 0, len(t.write)+len(t.read))
	tools = append(tools, t.write...)
	tools = append(tools, t.read...)
	return tools
}
