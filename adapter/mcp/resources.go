package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/momentum/internal/progress/application/queries"
)

const recentActivityLimit = 50

// RegisterResources registers MCP resources that expose progress data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	resources := []struct {
		uri, name, description string
		load                   func(ctx context.Context) (any, error)
	}{
		{
			uri:         "momentum://dashboard",
			name:        "Dashboard",
			description: "Today's points, streaks, consistency and unseen achievements",
			load: func(ctx context.Context) (any, error) {
				return app.Service.Metrics.Dashboard(ctx, app.CurrentUserID)
			},
		},
		{
			uri:         "momentum://stats/today",
			name:        "Today",
			description: "Points by category and goal progress for today",
			load: func(ctx context.Context) (any, error) {
				return app.Service.Metrics.DailySummary(ctx, app.CurrentUserID, app.Service.Metrics.Today())
			},
		},
		{
			uri:         "momentum://stats/week",
			name:        "Habit Matrix",
			description: "The last seven days, one row per activity name",
			load: func(ctx context.Context) (any, error) {
				return app.Service.Metrics.HabitMatrix(ctx, app.CurrentUserID, app.Service.Metrics.Today())
			},
		},
		{
			uri:         "momentum://stats/month",
			name:        "Monthly Analytics",
			description: "KPIs over the last 30 days",
			load: func(ctx context.Context) (any, error) {
				return app.Service.Metrics.Analytics(ctx, app.CurrentUserID, defaultAnalyticsDays)
			},
		},
		{
			uri:         "momentum://activities/recent",
			name:        "Recent Activities",
			description: "The most recently logged activities",
			load: func(ctx context.Context) (any, error) {
				return app.Service.ListActivities.Handle(ctx, queries.ListActivitiesQuery{
					UserID: app.CurrentUserID,
					Limit:  recentActivityLimit,
				})
			},
		},
		{
			uri:         "momentum://achievements",
			name:        "Achievements",
			description: "The achievement catalog with unlock state",
			load: func(ctx context.Context) (any, error) {
				return app.Service.ListAchievements.Handle(ctx, queries.ListAchievementsQuery{UserID: app.CurrentUserID})
			},
		},
	}

	for _, r := range resources {
		load := r.load
		srv.Resource(r.uri).
			Name(r.name).
			Description(r.description).
			MimeType("application/json").
			Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
				if err := requireService(app, r.name); err != nil {
					return nil, err
				}
				v, err := load(ctx)
				if err != nil {
					return nil, err
				}
				return jsonResource(uri, v)
			})
	}
	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
