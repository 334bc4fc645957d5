package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/pkg/observability"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) error {
	srv.Tool("cli.health").
		Description("Report the health of storage, the event outbox and Redis").
		Handler(func(ctx context.Context, _ struct{}) (observability.OverallHealth, error) {
			return deps.App.CheckHealth(ctx), nil
		})

	srv.Tool("cli.version").
		Description("Report the momentum build").
		Handler(func(context.Context, struct{}) (versionInfo, error) {
			return versionInfo{Version: cli.Version, Commit: cli.Commit, BuildDate: cli.BuildDate}, nil
		})

	return nil
}
