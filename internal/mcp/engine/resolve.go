package engine

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlanticdynamic/mcpregistry/internal/lookup"
)

// The handler functions below resolve their collaborator on every call, so a handler
// registered after the server was built is still found.

func unresolvedHandler(kind, component, ref string) error {
	return &jsonrpc.Error{
		Code:    jsonrpc.CodeInternalError,
		Message: fmt.Sprintf("%s %q: handler %q is not available", kind, component, ref),
	}
}

func wrongHandlerType(kind, component, ref string, v any) error {
	return &jsonrpc.Error{
		Code:    jsonrpc.CodeInternalError,
		Message: fmt.Sprintf("%s %q: handler %q has unsupported type %T", kind, component, ref, v),
	}
}

func lazyToolHandler(lk lookup.Lookup, name, ref string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v, ok := resolveRef(lk, ref)
		if !ok {
			return nil, unresolvedHandler("tool", name, ref)
		}
		switch h := v.(type) {
		case mcp.ToolHandler:
			return h(ctx, req)
		case func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error):
			return h(ctx, req)
		case ToolCaller:
			return h.CallTool(ctx, req)
		default:
			return nil, wrongHandlerType("tool", name, ref, v)
		}
	}
}

func lazyResourceHandler(lk lookup.Lookup, uri, ref string) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		v, ok := resolveRef(lk, ref)
		if !ok {
			return nil, unresolvedHandler("resource", uri, ref)
		}
		switch h := v.(type) {
		case mcp.ResourceHandler:
			return h(ctx, req)
		case func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error):
			return h(ctx, req)
		case ResourceReader:
			return h.ReadResource(ctx, req)
		default:
			return nil, wrongHandlerType("resource", uri, ref, v)
		}
	}
}

func lazyPromptHandler(lk lookup.Lookup, name, ref string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		v, ok := resolveRef(lk, ref)
		if !ok {
			return nil, unresolvedHandler("prompt", name, ref)
		}
		switch h := v.(type) {
		case mcp.PromptHandler:
			return h(ctx, req)
		case func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error):
			return h(ctx, req)
		case PromptGetter:
			return h.GetPrompt(ctx, req)
		default:
			return nil, wrongHandlerType("prompt", name, ref, v)
		}
	}
}

func resolveRef(lk lookup.Lookup, ref string) (any, bool) {
	if lk == nil || ref == "" || !lk.Has(ref) {
		return nil, false
	}
	return lk.Get(ref)
}
