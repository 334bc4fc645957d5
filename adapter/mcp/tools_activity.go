package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/progress/application/queries"
	"github.com/felixgeelhaar/momentum/internal/progress/application/services"
)

type activityLogInput struct {
	Name         string `json:"name" jsonschema:"required"`
	Category     string `json:"category,omitempty"`
	Intensity    string `json:"intensity,omitempty"`
	Date         string `json:"date,omitempty"`
	Time         string `json:"time,omitempty"`
	DurationMins int    `json:"duration_mins,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type activityLogOutput struct {
	*commands.LogActivityResult
	NewAchievements []services.AchievementView `json:"new_achievements"`
}

type activityListInput struct {
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

type activityIDInput struct {
	ActivityID string `json:"activity_id" jsonschema:"required"`
}

func registerActivityTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("activity.log").
		Description("Log an activity and report any achievements it unlocked").
		Handler(func(ctx context.Context, input activityLogInput) (*activityLogOutput, error) {
			return logActivity(ctx, app, input)
		})

	srv.Tool("activity.list").
		Description("List logged activities, newest first").
		Handler(func(ctx context.Context, input activityListInput) ([]queries.ActivityDTO, error) {
			if err := requireService(app, "activity listing"); err != nil {
				return nil, err
			}
			return app.Service.ListActivities.Handle(ctx, queries.ListActivitiesQuery{
				UserID:     app.CurrentUserID,
				From:       input.From,
				To:         input.To,
				Categories: input.Categories,
				Limit:      input.Limit,
			})
		})

	srv.Tool("activity.delete").
		Description("Delete a logged activity").
		Handler(func(ctx context.Context, input activityIDInput) (map[string]any, error) {
			return deleteActivity(ctx, app, input)
		})

	return nil
}

func logActivity(ctx context.Context, app *cli.App, input activityLogInput) (*activityLogOutput, error) {
	if err := requireService(app, "activity logging"); err != nil {
		return nil, err
	}
	if input.Category == "" {
		input.Category = "others"
	}
	if input.Intensity == "" {
		input.Intensity = "normal"
	}

	result, err := app.Service.LogActivity.Handle(ctx, commands.LogActivityCommand{
		UserID:       app.CurrentUserID,
		Name:         input.Name,
		Category:     input.Category,
		Intensity:    input.Intensity,
		Date:         input.Date,
		Time:         input.Time,
		DurationMins: input.DurationMins,
		Notes:        input.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := app.DeliverEvents(ctx); err != nil {
		return nil, err
	}

	fresh, err := app.Service.ListAchievements.Handle(ctx, queries.ListAchievementsQuery{
		UserID:  app.CurrentUserID,
		OnlyNew: true,
	})
	if err != nil {
		return nil, err
	}
	return &activityLogOutput{LogActivityResult: result, NewAchievements: fresh}, nil
}

func deleteActivity(ctx context.Context, app *cli.App, input activityIDInput) (map[string]any, error) {
	if err := requireService(app, "activity deletion"); err != nil {
		return nil, err
	}
	id, err := parseID("activity_id", input.ActivityID)
	if err != nil {
		return nil, err
	}

	if err := app.Service.DeleteActivity.Handle(ctx, commands.DeleteActivityCommand{
		ActivityID: id,
		UserID:     app.CurrentUserID,
	}); err != nil {
		return nil, err
	}
	if err := app.DeliverEvents(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"activity_id": id, "deleted": true}, nil
}
