package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/mcpregistry/cmd/mcpregistry/server"
	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/fancy"
	"github.com/atlanticdynamic/mcpregistry/internal/logging"
)

var validateCmd = &cli.Command{
	Name:    "validate",
	Aliases: []string{"lint"},
	Usage:   "Validate a configuration file and try to register its servers",
	Flags: append([]cli.Flag{
		configFlag(),
		&cli.BoolFlag{
			Name:    "tree",
			Aliases: []string{"t"},
			Usage:   "Show detailed tree view of the validated configuration",
		},
	}, logFlags()...),
	Action: validateAction,
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if _, err := setupLogger(cmd, cfg); err != nil {
		return cli.Exit(fmt.Errorf("failed to set up logging: %w", err), 1)
	}

	out := cmd.Root().Writer
	if err := dryRun(ctx, cfg, out); err != nil {
		return cli.Exit(fmt.Errorf("validation failed: %w", err), 1)
	}

	if cmd.Bool("tree") {
		_, err := fmt.Fprintln(out, cfg)
		return err
	}
	_, err = fmt.Fprintln(out, renderConfigSummary(cfg))
	return err
}

// dryRun registers every server without starting anything and prints the collected
// registration log.
func dryRun(ctx context.Context, cfg *config.Config, out io.Writer) error {
	rt, err := server.Boot(ctx, cfg, nil)
	if rt != nil {
		if playErr := rt.Registry.PlayLogs(logging.SetupHandlerText("debug", out)); playErr != nil {
			err = fmt.Errorf("failed to replay registration log: %w", playErr)
		}
	}
	closeErr := rt.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	if _, err := fmt.Fprintln(out, fancy.ValidText("Configuration is valid")); err != nil {
		return err
	}
	return nil
}

// renderConfigSummary creates a formatted summary string for the configuration
func renderConfigSummary(cfg *config.Config) string {
	var enabled int
	for i := range cfg.Servers {
		if cfg.Servers[i].IsEnabled() {
			enabled++
		}
	}

	var summary strings.Builder
	summary.WriteString("\nConfig Summary:\n")
	summary.WriteString(fmt.Sprintf("- Version: %s\n", cfg.Version))
	summary.WriteString(fmt.Sprintf("- Listeners: %d\n", len(cfg.Listeners)))
	summary.WriteString(fmt.Sprintf("- Collaborators: %d\n", len(cfg.Collaborators)))
	summary.WriteString(fmt.Sprintf("- Servers: %d (%d enabled)\n", len(cfg.Servers), enabled))
	summary.WriteString("\nUse --tree for a more detailed view of the config.")
	return summary.String()
}
