// Package scripts provides tool handlers that can be registered as named collaborators and
// referenced from tool declarations.
package scripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/robbyt/go-polyscript/engines/starlark"
	"github.com/robbyt/go-polyscript/platform"
	"github.com/robbyt/go-polyscript/platform/constants"
	"github.com/robbyt/go-polyscript/platform/data"
)

// DefaultEvalTimeout bounds a single script run when no timeout is configured.
const DefaultEvalTimeout = time.Minute

// StarlarkTool runs a compiled Starlark script for every tool call. The script sees the call
// arguments as ctx["arguments"], the tool name as ctx["tool"] and static data as ctx["data"],
// and returns its result through the "_" variable.
type StarlarkTool struct {
	evaluator platform.Evaluator
	static    data.Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// StarlarkOption configures a StarlarkTool.
type StarlarkOption func(*StarlarkTool)

// WithTimeout bounds each evaluation. Non-positive values keep the default.
func WithTimeout(d time.Duration) StarlarkOption {
	return func(s *StarlarkTool) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithStaticData exposes values to the script under ctx["data"].
func WithStaticData(values map[string]any) StarlarkOption {
	return func(s *StarlarkTool) {
		s.static = data.NewStaticProvider(values)
	}
}

// WithLogHandler sets the handler for compile and evaluation logs.
func WithLogHandler(handler slog.Handler) StarlarkOption {
	return func(s *StarlarkTool) {
		if handler != nil {
			s.logger = slog.New(handler).WithGroup("scripts.StarlarkTool")
		}
	}
}

// NewStarlarkTool compiles the script from inline code or a URI. Exactly one must be set.
func NewStarlarkTool(code, uri string, opts ...StarlarkOption) (*StarlarkTool, error) {
	s := &StarlarkTool{
		static:  data.NewStaticProvider(nil),
		timeout: DefaultEvalTimeout,
		logger:  slog.Default().WithGroup("scripts.StarlarkTool"),
	}
	for _, opt := range opts {
		opt(s)
	}

	scriptLoader, err := newLoader(code, uri)
	if err != nil {
		if errors.Is(err, ErrMissingCodeAndURI) || errors.Is(err, ErrBothCodeAndURI) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrLoaderCreation, err)
	}

	evaluator, err := starlark.FromStarlarkLoader(s.logger.Handler(), scriptLoader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompilationFailed, err)
	}
	s.evaluator = evaluator
	return s, nil
}

// CallTool evaluates the script. Script failures are reported as tool errors so the client
// sees them in the result instead of as protocol errors.
func (s *StarlarkTool) CallTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, toolName, err := toolArguments(req)
	if err != nil {
		return nil, err
	}

	evalCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	static, err := s.static.GetData(evalCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get static data: %w", err)
	}

	scriptData := map[string]any{
		"arguments": args,
		"tool":      toolName,
		"data":      maps.Clone(static),
	}
	enriched, err := data.NewContextProvider(constants.EvalData).AddDataToContext(evalCtx, scriptData)
	if err != nil {
		return nil, fmt.Errorf("failed to add script data: %w", err)
	}

	start := time.Now()
	result, err := s.evaluator.Eval(enriched)
	if err != nil {
		s.logger.Warn("Script evaluation failed", "tool", toolName, "error", err, "duration", time.Since(start))
		msg := err.Error()
		if errors.Is(evalCtx.Err(), context.DeadlineExceeded) {
			msg = "script execution timed out"
		}
		return errorResult(msg), nil
	}
	s.logger.Debug("Script evaluated", "tool", toolName, "duration", time.Since(start))

	return toCallToolResult(result.Interface())
}

func toolArguments(req *mcp.CallToolRequest) (map[string]any, string, error) {
	args := map[string]any{}
	if req == nil || req.Params == nil {
		return args, "", nil
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrInvalidArguments, err)
		}
		if args == nil {
			args = map[string]any{}
		}
	}
	return args, req.Params.Name, nil
}

func toCallToolResult(value any) (*mcp.CallToolResult, error) {
	switch v := value.(type) {
	case nil:
		return &mcp.CallToolResult{Content: []mcp.Content{}}, nil
	case string:
		return textResult(v), nil
	case map[string]any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode script result: %w", err)
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: string(encoded)}},
			StructuredContent: v,
		}, nil
	default:
		if encoded, err := json.Marshal(v); err == nil {
			return textResult(string(encoded)), nil
		}
		return textResult(fmt.Sprintf("%v", v)), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}, IsError: true}
}
