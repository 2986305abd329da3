package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/mcpregistry/cmd/mcpregistry/server"
	"github.com/atlanticdynamic/mcpregistry/internal/config"
)

var serveCmd = &cli.Command{
	Name:   "serve",
	Usage:  "Run every HTTP listener until interrupted",
	Flags:  append([]cli.Flag{configFlag()}, logFlags()...),
	Action: serveAction,
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	logger, err := setupLogger(cmd, cfg)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to set up logging: %w", err), 1)
	}

	if err := server.Run(ctx, logger, cfg); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

// loadConfig reads the --config flag, falling back to the first positional argument.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	if path == "" {
		path = cmd.Args().First()
	}
	if path == "" {
		return nil, fmt.Errorf("config file path required (use the --config flag, or provide the config file as positional argument)")
	}
	return loadConfigPath(path)
}

func loadConfigPath(path string) (*config.Config, error) {
	cfg, err := config.NewConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
