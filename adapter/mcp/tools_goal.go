package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
)

type goalSetInput struct {
	Points int `json:"points" jsonschema:"required"`
}

func registerGoalTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("goal.get").
		Description("Get the daily points goal").
		Handler(func(ctx context.Context, input struct{}) (map[string]int, error) {
			if err := requireService(app, "daily goal"); err != nil {
				return nil, err
			}
			return map[string]int{"points": app.Service.Metrics.DailyGoal(ctx, app.CurrentUserID)}, nil
		})

	srv.Tool("goal.set").
		Description("Set the daily points goal").
		Handler(func(ctx context.Context, input goalSetInput) (map[string]int, error) {
			if err := requireService(app, "daily goal"); err != nil {
				return nil, err
			}
			if err := app.Service.SetDailyGoal.Handle(ctx, commands.SetDailyGoalCommand{
				UserID: app.CurrentUserID,
				Points: input.Points,
			}); err != nil {
				return nil, err
			}
			if err := app.DeliverEvents(ctx); err != nil {
				return nil, err
			}
			return map[string]int{"points": input.Points}, nil
		})

	return nil
}
