// Package mcp exposes the progress commands as MCP tools, resources and
// prompts.
package mcp

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/momentum/adapter/cli"
)

// ToolDependencies is what every tool handler closes over.
type ToolDependencies struct {
	App *cli.App
}

var toolGroups = []struct {
	name     string
	register func(*mcp.Server, ToolDependencies) error
}{
	{"core", registerCoreTools},
	{"activity", registerActivityTools},
	{"stats", registerStatsTools},
	{"achievement", registerAchievementTools},
	{"goal", registerGoalTools},
}

// RegisterCLITools adds one tool per CLI command to srv.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	switch {
	case srv == nil:
		return errors.New("server is required")
	case deps.App == nil:
		return errors.New("app is required")
	}

	for _, group := range toolGroups {
		if err := group.register(srv, deps); err != nil {
			return fmt.Errorf("register %s tools: %w", group.name, err)
		}
	}
	return nil
}
