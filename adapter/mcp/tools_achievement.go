package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/progress/application/queries"
	"github.com/felixgeelhaar/momentum/internal/progress/application/services"
)

type achievementListInput struct {
	OnlyUnlocked bool `json:"only_unlocked,omitempty"`
	OnlyNew      bool `json:"only_new,omitempty"`
}

type achievementIDInput struct {
	AchievementID string `json:"achievement_id" jsonschema:"required"`
}

func registerAchievementTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("achievement.list").
		Description("List the achievement catalog with unlock state").
		Handler(func(ctx context.Context, input achievementListInput) ([]services.AchievementView, error) {
			if err := requireService(app, "achievements"); err != nil {
				return nil, err
			}
			return app.Service.ListAchievements.Handle(ctx, queries.ListAchievementsQuery{
				UserID:       app.CurrentUserID,
				OnlyUnlocked: input.OnlyUnlocked,
				OnlyNew:      input.OnlyNew,
			})
		})

	srv.Tool("achievement.evaluate").
		Description("Recompute stats and unlock every achievement whose requirement is met").
		Handler(func(ctx context.Context, input struct{}) (*commands.EvaluateAchievementsResult, error) {
			if err := requireService(app, "achievement evaluation"); err != nil {
				return nil, err
			}
			result, err := app.Service.EvaluateAchievements.Handle(ctx, commands.EvaluateAchievementsCommand{
				UserID: app.CurrentUserID,
			})
			if err != nil {
				return nil, err
			}
			return result, app.DeliverEvents(ctx)
		})

	srv.Tool("achievement.view").
		Description("Mark an unlocked achievement as seen").
		Handler(func(ctx context.Context, input achievementIDInput) (*commands.MarkAchievementViewedResult, error) {
			if err := requireService(app, "achievements"); err != nil {
				return nil, err
			}
			if input.AchievementID == "" {
				return nil, errors.New("achievement_id is required")
			}
			result, err := app.Service.MarkAchievementViewed.Handle(ctx, commands.MarkAchievementViewedCommand{
				UserID:        app.CurrentUserID,
				AchievementID: input.AchievementID,
			})
			if err != nil {
				return nil, err
			}
			return result, app.DeliverEvents(ctx)
		})

	return nil
}
