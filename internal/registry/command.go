package registry

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/mcp/engine"
)

// newCommand creates the CLI command serving srv over a stdio transport. The instance is
// built once; each invocation gets a fresh transport.
func newCommand(cfg *config.Stdio, srv *engine.Server, newTransport func() mcp.Transport) *cli.Command {
	return &cli.Command{
		Name:  cfg.CommandName(),
		Usage: cfg.CommandDescription(),
		Action: func(ctx context.Context, _ *cli.Command) error {
			if err := srv.Run(ctx, newTransport()); err != nil {
				return fmt.Errorf("%s: %w", srv.Info().Key, err)
			}
			return nil
		},
	}
}
