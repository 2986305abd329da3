package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "mcpregistry",
		Version: Version,
		Usage:   "Serve configured MCP servers over HTTP and stdio",
		Commands: []*cli.Command{
			serveCmd,
			validateCmd,
			stdioCmd,
			versionCmd,
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
