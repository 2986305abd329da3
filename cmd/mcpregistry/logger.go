package main

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/mcpregistry/internal/config"
	"github.com/atlanticdynamic/mcpregistry/internal/logging"
)

// logFlags are shared by every command that loads a configuration.
func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (trace, debug, info, warn, error); overrides the config file",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format (text, json); overrides the config file",
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the TOML configuration file",
	}
}

// setupLogger installs the process logger. Flags win over the config file's [logging]
// table. Logs always go to stderr.
func setupLogger(cmd *cli.Command, cfg *config.Config) (*slog.Logger, error) {
	opts := logging.Options{}
	if cfg != nil {
		opts.Level = string(cfg.Logging.Level)
		opts.Format = string(cfg.Logging.Format)
	}
	if v := cmd.String("log-level"); v != "" {
		opts.Level = v
	}
	if v := cmd.String("log-format"); v != "" {
		opts.Format = v
	}

	if err := logging.SetupLogger(opts); err != nil {
		return nil, err
	}
	return slog.Default(), nil
}
