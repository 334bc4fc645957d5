// Command momentum-mcp serves the progress tools over MCP without the CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/app"
	mcpserver "github.com/felixgeelhaar/momentum/internal/mcp"
	"github.com/felixgeelhaar/momentum/pkg/config"
	"github.com/felixgeelhaar/momentum/pkg/observability"
	"github.com/google/uuid"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "momentum-mcp:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.LoggerFor("mcp", cfg.LogLevel, cfg.IsDevelopment(), cfg.IsProduction())

	container, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	defer container.Close()

	// Validate has already checked the id.
	userID := uuid.MustParse(cfg.UserID)

	err = mcpserver.Serve(ctx, cfg, cli.NewAppFromContainer(container, userID), logger)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
