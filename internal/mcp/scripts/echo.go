package scripts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// EchoTool answers every call with its own arguments.
type EchoTool struct {
	// Prefix is prepended to the echoed text.
	Prefix string
}

// CallTool implements the tool caller contract.
func (e EchoTool) CallTool(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _, err := toolArguments(req)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: e.Prefix + string(encoded)}},
		StructuredContent: args,
	}, nil
}
