package engine

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RequestHandler answers requests for the methods it supports before the engine's own
// dispatcher sees them.
type RequestHandler interface {
	Supports(method string) bool
	Handle(ctx context.Context, method string, req mcp.Request) (mcp.Result, error)
}

// NotificationHandler observes client notifications. Errors are logged and never change
// how the engine handles the notification.
type NotificationHandler interface {
	Supports(method string) bool
	Handle(ctx context.Context, method string, req mcp.Request) error
}

// Loader registers components on a built server, typically ones that can only be known at
// runtime.
type Loader interface {
	Load(ctx context.Context, server *mcp.Server) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, server *mcp.Server) error

func (f LoaderFunc) Load(ctx context.Context, server *mcp.Server) error { return f(ctx, server) }

// ToolCaller is a named tool handler. A plain mcp.ToolHandler works too.
type ToolCaller interface {
	CallTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// ResourceReader is a named resource handler. A plain mcp.ResourceHandler works too.
type ResourceReader interface {
	ReadResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)
}

// PromptGetter is a named prompt handler. A plain mcp.PromptHandler works too.
type PromptGetter interface {
	GetPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)
}
