package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/mcpregistry/cmd/mcpregistry/server"
	"github.com/atlanticdynamic/mcpregistry/internal/registry"
)

var stdioCmd = &cli.Command{
	Name:      "stdio",
	Usage:     "Serve one registered server over standard input and output",
	ArgsUsage: "<command-name>",
	Flags:     append([]cli.Flag{configFlag(), &cli.BoolFlag{Name: "list", Usage: "List the registered stdio commands"}}, logFlags()...),
	Action:    stdioAction,
}

func stdioAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		return cli.Exit(errors.New("the --config flag is required"), 1)
	}
	cfg, err := loadConfigPath(path)
	if err != nil {
		return cli.Exit(err, 1)
	}

	logger, err := setupLogger(cmd, cfg)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to set up logging: %w", err), 1)
	}

	rt, err := server.Boot(ctx, cfg, logger.Handler(), registry.WithLogHandler(logger.Handler()))
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			logger.Error("Failed to release collaborators", "error", closeErr)
		}
	}()
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to register servers: %w", err), 1)
	}

	commands := rt.Registry.Commands()
	if cmd.Bool("list") {
		return listCommands(cmd.Root().Writer, commands)
	}

	name := cmd.Args().First()
	if name == "" {
		return cli.Exit(errors.New("a command name is required"), 1)
	}
	sub := findCommand(commands, name)
	if sub == nil {
		return cli.Exit(fmt.Errorf("no stdio command named %q", name), 1)
	}

	if err := sub.Run(ctx, cmd.Args().Slice()); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func findCommand(commands []*cli.Command, name string) *cli.Command {
	for _, c := range commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func listCommands(w io.Writer, commands []*cli.Command) error {
	var b strings.Builder
	for _, c := range commands {
		fmt.Fprintf(&b, "%s\t%s\n", c.Name, c.Usage)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
