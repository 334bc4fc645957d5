package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/adapter/cli/achievement"
	"github.com/felixgeelhaar/momentum/adapter/cli/activity"
	"github.com/felixgeelhaar/momentum/adapter/cli/goal"
	"github.com/felixgeelhaar/momentum/adapter/cli/mcp"
	"github.com/felixgeelhaar/momentum/adapter/cli/stats"
	"github.com/felixgeelhaar/momentum/internal/app"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/momentum/pkg/config"
	"github.com/felixgeelhaar/momentum/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := observability.LoggerFor("cli", "warn", false, false)
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("config invalid, falling back to local development mode", "error", err)
		cfg = &config.Config{AppEnv: "development", LocalMode: true, DatabaseDriver: "sqlite", SQLitePath: database.DefaultSQLitePath()}
	} else {
		// stderr stays quiet unless LOG_LEVEL asks for more.
		logger = observability.LoggerFor("cli", cfg.LogLevel, false, cfg.IsProduction())
	}
	cli.SetLogger(logger)

	container, err := app.Open(ctx, cfg, logger)
	switch {
	case err == nil:
		defer container.Close()
		userID, err := uuid.Parse(cfg.UserID)
		if err != nil {
			logger.Error("invalid MOMENTUM_USER_ID", "error", err)
			return 1
		}
		cli.SetApp(cli.NewAppFromContainer(container, userID))
	case cfg.IsDevelopment():
		// help and version work without storage.
		logger.Warn("storage unavailable, running in limited mode", "error", err)
	default:
		logger.Error("failed to initialize container", "error", err)
		return 1
	}

	for _, cmd := range []*cobra.Command{activity.Cmd, stats.Cmd, achievement.Cmd, goal.Cmd, mcp.Cmd} {
		cli.AddCommand(cmd)
	}
	if err := cli.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
