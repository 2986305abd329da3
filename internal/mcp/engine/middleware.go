package engine

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlanticdynamic/mcpregistry/internal/mcp/events"
)

const (
	methodInitialize   = "initialize"
	methodToolsCall    = "tools/call"
	methodResourceRead = "resources/read"
	methodPromptsGet   = "prompts/get"
)

// middleware runs in front of the engine's dispatcher. Notification handlers observe,
// the first supporting request handler answers, and selected results are post-processed.
func (s *Server) middleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if strings.HasPrefix(method, "notifications/") {
			s.notify(ctx, method, req)
			return next(ctx, method, req)
		}

		var (
			result mcp.Result
			err    error
		)
		if h := s.requestHandlerFor(method); h != nil {
			result, err = h.Handle(ctx, method, req)
		} else {
			result, err = next(ctx, method, req)
		}

		if method == methodInitialize && err == nil && s.protocolVersion != "" {
			if res, ok := result.(*mcp.InitializeResult); ok {
				res.ProtocolVersion = s.protocolVersion
			}
		}
		s.observe(ctx, method, req, err)
		return result, err
	}
}

func (s *Server) requestHandlerFor(method string) RequestHandler {
	for _, h := range s.requestHandlers {
		if h.Supports(method) {
			return h
		}
	}
	return nil
}

func (s *Server) notify(ctx context.Context, method string, req mcp.Request) {
	for _, h := range s.notificationHandlers {
		if !h.Supports(method) {
			continue
		}
		if err := h.Handle(ctx, method, req); err != nil {
			s.logger.Warn("Notification handler failed", "method", method, "error", err)
		}
	}
}

// observe turns completed requests into events.
func (s *Server) observe(ctx context.Context, method string, req mcp.Request, err error) {
	if s.dispatcher == nil {
		return
	}

	attrs := map[string]any{}
	if err != nil {
		attrs["error"] = err.Error()
	}
	if sess := req.GetSession(); sess != nil && sess.ID() != "" {
		attrs["session_id"] = sess.ID()
	}

	var name string
	switch p := req.GetParams().(type) {
	case *mcp.InitializeParams:
		if method != methodInitialize {
			return
		}
		name = events.SessionInitialized
		if p != nil {
			attrs["protocol_version"] = p.ProtocolVersion
			if p.ClientInfo != nil {
				attrs["client"] = p.ClientInfo.Name
			}
		}
	case *mcp.CallToolParamsRaw:
		if method != methodToolsCall {
			return
		}
		name = events.ToolCalled
		if p != nil {
			attrs["tool"] = p.Name
		}
	case *mcp.ReadResourceParams:
		if method != methodResourceRead {
			return
		}
		name = events.ResourceRead
		if p != nil {
			attrs["uri"] = p.URI
		}
	case *mcp.GetPromptParams:
		if method != methodPromptsGet {
			return
		}
		name = events.PromptRetrieved
		if p != nil {
			attrs["prompt"] = p.Name
		}
	default:
		return
	}
	s.dispatch(ctx, name, attrs)
}
