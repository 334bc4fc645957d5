// Package application wires the progress commands, queries and views
// into one entry point for the adapters.
package application

import (
	"log/slog"

	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/progress/application/queries"
	"github.com/felixgeelhaar/momentum/internal/progress/application/services"
	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/felixgeelhaar/momentum/internal/progress/metrics"
	sharedApplication "github.com/felixgeelhaar/momentum/internal/shared/application"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
)

// Repositories are the stores the progress context writes to.
type Repositories struct {
	Activities   domain.ActivityRepository
	Achievements domain.AchievementRepository
	Goals        domain.GoalRepository
	Stats        domain.StatsRepository
	Outbox       outbox.Repository
	UnitOfWork   sharedApplication.UnitOfWork
}

// Options tune the engine. Zero values take defaults.
type Options struct {
	Clock       domain.Clock
	DefaultGoal int
	Consistency metrics.ConsistencyConfig
	Catalog     *metrics.Catalog

	// ActivitySource overrides the read path of the views, e.g. with a
	// circuit breaker. Defaults to Repositories.Activities.
	ActivitySource services.ActivitySource
}

// Service bundles the progress handlers and the metrics facade.
type Service struct {
	LogActivity           *commands.LogActivityHandler
	DeleteActivity        *commands.DeleteActivityHandler
	SetDailyGoal          *commands.SetDailyGoalHandler
	EvaluateAchievements  *commands.EvaluateAchievementsHandler
	MarkAchievementViewed *commands.MarkAchievementViewedHandler
	ListActivities        *queries.ListActivitiesHandler
	ListAchievements      *queries.ListAchievementsHandler
	Metrics               *services.MetricsFacade
}

// NewService builds every handler over the same repositories.
func NewService(repos Repositories, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultGoal <= 0 {
		opts.DefaultGoal = services.DefaultDailyGoal
	}
	if opts.Catalog == nil {
		opts.Catalog = metrics.DefaultCatalog()
	}
	source := opts.ActivitySource
	if source == nil {
		source = repos.Activities
	}
	if opts.Consistency == (metrics.ConsistencyConfig{}) {
		opts.Consistency = metrics.DefaultConsistencyConfig()
	}
	scorer := metrics.NewConsistencyScorer(opts.Consistency)

	facade := services.NewMetricsFacade(source, repos.Goals, repos.Achievements, services.FacadeConfig{
		DefaultGoal: opts.DefaultGoal,
		Clock:       opts.Clock,
		Scorer:      scorer,
		Catalog:     opts.Catalog,
	}, logger.With("component", "metrics_facade"))

	evaluation := commands.EvaluationDeps{
		Activities:   repos.Activities,
		Achievements: repos.Achievements,
		Goals:        repos.Goals,
		Stats:        repos.Stats,
		Outbox:       repos.Outbox,
		UnitOfWork:   repos.UnitOfWork,
	}

	return &Service{
		LogActivity:           commands.NewLogActivityHandler(repos.Activities, repos.Outbox, repos.UnitOfWork, opts.Clock),
		DeleteActivity:        commands.NewDeleteActivityHandler(repos.Activities, repos.Outbox, repos.UnitOfWork),
		SetDailyGoal:          commands.NewSetDailyGoalHandler(repos.Goals, repos.Outbox, repos.UnitOfWork),
		EvaluateAchievements:  commands.NewEvaluateAchievementsHandler(evaluation, metrics.NewEvaluator(opts.Catalog), scorer, opts.Clock, opts.DefaultGoal),
		MarkAchievementViewed: commands.NewMarkAchievementViewedHandler(repos.Achievements, repos.Outbox, repos.UnitOfWork),
		ListActivities:        queries.NewListActivitiesHandler(repos.Activities),
		ListAchievements:      queries.NewListAchievementsHandler(facade),
		Metrics:               facade,
	}
}
