// Package mcp holds the `momentum mcp` commands.
package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	mcpserver "github.com/felixgeelhaar/momentum/internal/mcp"
	"github.com/felixgeelhaar/momentum/pkg/config"
	"github.com/felixgeelhaar/momentum/pkg/observability"
	"github.com/spf13/cobra"
)

// Cmd groups the MCP commands.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve progress tools to MCP clients",
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on the CLI's store",
	Long: `Serve the progress tools, resources and prompts over streamable HTTP.
The server shares the store this CLI opened, so a local-mode server reads
the same SQLite file. Set MCP_AUTH_TOKEN to require a bearer token.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cli.RequireApp("mcp serve")
		if err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.MCPAddr = serveAddr
		}

		logger := observability.LoggerFor("mcp", cfg.LogLevel, cfg.IsDevelopment(), cfg.IsProduction())
		if err := mcpserver.Serve(cmd.Context(), cfg, app, logger); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides MCP_ADDR")
	Cmd.AddCommand(serveCmd)
}
