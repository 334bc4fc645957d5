package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/momentum/internal/progress/application/services"
	"github.com/felixgeelhaar/momentum/internal/progress/metrics"
)

type dateInput struct {
	Date string `json:"date,omitempty"`
}

type analyticsInput struct {
	Days int `json:"days,omitempty"`
}

const defaultAnalyticsDays = 30

func registerStatsTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("stats.dashboard").
		Description("Today's points against the goal, streaks, consistency, this week and unseen achievements").
		Handler(func(ctx context.Context, input struct{}) (*services.Dashboard, error) {
			if err := requireService(app, "dashboard"); err != nil {
				return nil, err
			}
			d, err := app.Service.Metrics.Dashboard(ctx, app.CurrentUserID)
			if err != nil {
				return nil, err
			}
			return &d, nil
		})

	srv.Tool("stats.daily").
		Description("Points by category and goal progress for one date (default today)").
		Handler(func(ctx context.Context, input dateInput) (*metrics.DailySummary, error) {
			if err := requireService(app, "daily summary"); err != nil {
				return nil, err
			}
			date, err := dateOrToday(app, input.Date)
			if err != nil {
				return nil, err
			}
			s, err := app.Service.Metrics.DailySummary(ctx, app.CurrentUserID, date)
			if err != nil {
				return nil, err
			}
			return &s, nil
		})

	srv.Tool("stats.timeline").
		Description("Points per hour and category for one date (default today)").
		Handler(func(ctx context.Context, input dateInput) (*metrics.Timeline, error) {
			if err := requireService(app, "timeline"); err != nil {
				return nil, err
			}
			date, err := dateOrToday(app, input.Date)
			if err != nil {
				return nil, err
			}
			tl, err := app.Service.Metrics.Timeline(ctx, app.CurrentUserID, date)
			if err != nil {
				return nil, err
			}
			return &tl, nil
		})

	srv.Tool("stats.habit_matrix").
		Description("Seven-day habit matrix ending on date (default today)").
		Handler(func(ctx context.Context, input dateInput) (*metrics.HabitMatrix, error) {
			if err := requireService(app, "habit matrix"); err != nil {
				return nil, err
			}
			date, err := dateOrToday(app, input.Date)
			if err != nil {
				return nil, err
			}
			m, err := app.Service.Metrics.HabitMatrix(ctx, app.CurrentUserID, date)
			if err != nil {
				return nil, err
			}
			return &m, nil
		})

	srv.Tool("stats.analytics").
		Description("KPIs over the trailing number of days (default 30)").
		Handler(func(ctx context.Context, input analyticsInput) (*metrics.Analytics, error) {
			if err := requireService(app, "analytics"); err != nil {
				return nil, err
			}
			if input.Days == 0 {
				input.Days = defaultAnalyticsDays
			}
			if input.Days < 0 {
				return nil, fmt.Errorf("days must be positive")
			}
			a, err := app.Service.Metrics.Analytics(ctx, app.CurrentUserID, input.Days)
			if err != nil {
				return nil, err
			}
			return &a, nil
		})

	return nil
}
