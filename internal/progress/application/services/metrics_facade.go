package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/felixgeelhaar/momentum/internal/progress/metrics"
	"github.com/google/uuid"
)

// DefaultDailyGoal applies when the user has not set a goal.
const DefaultDailyGoal = 100

// DashboardWindowDays is the trailing window of the dashboard's
// completion rate and week points.
const DashboardWindowDays = 7

// ActivitySource reads the activity log.
type ActivitySource interface {
	FindByUserAndDate(ctx context.Context, userID uuid.UUID, date domain.Date) ([]*domain.Activity, error)
	FindByUserAndRange(ctx context.Context, userID uuid.UUID, from, to domain.Date) ([]*domain.Activity, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter domain.ActivityFilter) ([]*domain.Activity, error)
}

// GoalSource reads the user's daily goal.
type GoalSource interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.DailyGoal, error)
}

// AchievementSource reads unlocked achievements.
type AchievementSource interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UnlockedAchievement, error)
}

// FacadeConfig tunes the facade. Zero values take defaults.
type FacadeConfig struct {
	DefaultGoal int
	Clock       domain.Clock
	Scorer      *metrics.ConsistencyScorer
	Catalog     *metrics.Catalog
}

// MetricsFacade assembles the read-side views. Fetch failures never
// surface to callers: they are logged and a zeroed view is returned.
// Invalid records do surface, as a *domain.ValidationError next to the
// zeroed view.
type MetricsFacade struct {
	activities   ActivitySource
	goals        GoalSource
	achievements AchievementSource
	clock        domain.Clock
	scorer       *metrics.ConsistencyScorer
	catalog      *metrics.Catalog
	defaultGoal  int
	logger       *slog.Logger
}

// NewMetricsFacade creates a facade over the given sources.
func NewMetricsFacade(
	activities ActivitySource,
	goals GoalSource,
	achievements AchievementSource,
	cfg FacadeConfig,
	logger *slog.Logger,
) *MetricsFacade {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultGoal <= 0 {
		cfg.DefaultGoal = DefaultDailyGoal
	}
	if cfg.Scorer == nil {
		cfg.Scorer = metrics.NewConsistencyScorer(metrics.DefaultConsistencyConfig())
	}
	if cfg.Catalog == nil {
		cfg.Catalog = metrics.DefaultCatalog()
	}
	return &MetricsFacade{
		activities:   activities,
		goals:        goals,
		achievements: achievements,
		clock:        cfg.Clock,
		scorer:       cfg.Scorer,
		catalog:      cfg.Catalog,
		defaultGoal:  cfg.DefaultGoal,
		logger:       logger,
	}
}

// Today returns the facade clock's current date.
func (f *MetricsFacade) Today() domain.Date {
	return f.clock.Today()
}

// Scorer returns the consistency scorer in use.
func (f *MetricsFacade) Scorer() *metrics.ConsistencyScorer {
	return f.scorer
}

// Catalog returns the achievement catalog in use.
func (f *MetricsFacade) Catalog() *metrics.Catalog {
	return f.catalog
}

// DailyGoal returns the user's goal, or the default when none is set or
// the lookup fails.
func (f *MetricsFacade) DailyGoal(ctx context.Context, userID uuid.UUID) int {
	if f.goals == nil {
		return f.defaultGoal
	}
	goal, err := f.goals.FindByUser(ctx, userID)
	if err != nil {
		f.logger.Warn("daily goal lookup failed", "user_id", userID, "error", err)
		return f.defaultGoal
	}
	if goal == nil {
		return f.defaultGoal
	}
	return goal.Points()
}

// DailySummary returns the points of one date against the daily goal.
func (f *MetricsFacade) DailySummary(ctx context.Context, userID uuid.UUID, date domain.Date) (metrics.DailySummary, error) {
	goal := f.DailyGoal(ctx, userID)

	activities, err := f.activities.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		f.logger.Warn("daily summary fetch failed", "user_id", userID, "date", date.String(), "error", err)
		return metrics.EmptyDailySummary(date, goal), nil
	}
	return metrics.BuildDailySummary(activities, date, goal)
}

// Timeline returns the hourly breakdown of one date.
func (f *MetricsFacade) Timeline(ctx context.Context, userID uuid.UUID, date domain.Date) (metrics.Timeline, error) {
	activities, err := f.activities.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		f.logger.Warn("timeline fetch failed", "user_id", userID, "date", date.String(), "error", err)
		return metrics.EmptyTimeline(date), nil
	}
	return metrics.BuildTimeline(activities, date)
}

// HabitMatrix returns the trailing week grid ending at reference.
func (f *MetricsFacade) HabitMatrix(ctx context.Context, userID uuid.UUID, reference domain.Date) (metrics.HabitMatrix, error) {
	history, err := f.activities.FindByUser(ctx, userID, domain.ActivityFilter{To: reference})
	if err != nil {
		f.logger.Warn("habit matrix fetch failed", "user_id", userID, "error", err)
		return metrics.EmptyHabitMatrix(reference), nil
	}
	return metrics.BuildHabitMatrix(history, reference)
}

// Analytics returns the KPIs of the trailing rangeDays ending today.
func (f *MetricsFacade) Analytics(ctx context.Context, userID uuid.UUID, rangeDays int) (metrics.Analytics, error) {
	reference := f.clock.Today()
	empty := metrics.EmptyAnalytics(reference, rangeDays, f.scorer)
	if rangeDays <= 0 {
		return empty, metrics.ErrInvalidWindow
	}

	// Future-dated records would end the current streak early.
	history, err := f.activities.FindByUser(ctx, userID, domain.ActivityFilter{To: reference})
	if err != nil {
		f.logger.Warn("analytics fetch failed", "user_id", userID, "range_days", rangeDays, "error", err)
		return empty, nil
	}
	inRange := between(history, empty.From, reference)
	return metrics.BuildAnalytics(inRange, history, reference, rangeDays, f.scorer)
}

// AchievementView is a catalog entry joined with the user's unlock state.
type AchievementView struct {
	domain.AchievementDefinition
	Unlocked   bool       `json:"unlocked"`
	IsNew      bool       `json:"is_new"`
	AchievedAt *time.Time `json:"achieved_at,omitempty"`
}

// Dashboard is the landing view.
type Dashboard struct {
	Today           metrics.DailySummary     `json:"today"`
	Streaks         metrics.StreakState      `json:"streaks"`
	Consistency     metrics.ConsistencyScore `json:"consistency"`
	WeekPoints      metrics.Series           `json:"week_points"`
	NewAchievements []AchievementView        `json:"new_achievements"`
}

// Dashboard combines today's summary, streaks, the consistency score,
// this week's points and the achievements the user has not seen yet.
func (f *MetricsFacade) Dashboard(ctx context.Context, userID uuid.UUID) (Dashboard, error) {
	today := f.clock.Today()
	goal := f.DailyGoal(ctx, userID)
	out := Dashboard{
		Today:           metrics.EmptyDailySummary(today, goal),
		Consistency:     metrics.ConsistencyScore{RecoveryRate: f.scorer.Config().RecoveryDefault},
		WeekPoints:      metrics.Series{},
		NewAchievements: f.unseenAchievements(ctx, userID),
	}

	history, err := f.activities.FindByUser(ctx, userID, domain.ActivityFilter{To: today})
	if err != nil {
		f.logger.Warn("dashboard fetch failed", "user_id", userID, "error", err)
		return out, nil
	}

	summary, err := metrics.BuildDailySummary(history, today, goal)
	if err != nil {
		return out, err
	}
	consistency, err := f.scorer.Score(history, DashboardWindowDays, today)
	if err != nil {
		return out, err
	}
	week, err := metrics.Aggregate(between(history, today.AddDays(-(DashboardWindowDays-1)), today), metrics.GroupByDay)
	if err != nil {
		return out, err
	}

	out.Today = summary
	out.Streaks = metrics.StreaksFromActivities(history, today)
	out.Consistency = consistency
	out.WeekPoints = week
	return out, nil
}

// Achievements joins the catalog with the user's unlocks, in catalog order.
func (f *MetricsFacade) Achievements(ctx context.Context, userID uuid.UUID) ([]AchievementView, error) {
	unlocked, err := f.achievements.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return JoinAchievements(f.catalog, unlocked), nil
}

func (f *MetricsFacade) unseenAchievements(ctx context.Context, userID uuid.UUID) []AchievementView {
	views := make([]AchievementView, 0)
	if f.achievements == nil {
		return views
	}
	all, err := f.Achievements(ctx, userID)
	if err != nil {
		f.logger.Warn("achievement fetch failed", "user_id", userID, "error", err)
		return views
	}
	for _, v := range all {
		if v.IsNew {
			views = append(views, v)
		}
	}
	return views
}

// JoinAchievements marks each catalog definition with its unlock, matched
// by id or by legacy title.
func JoinAchievements(catalog *metrics.Catalog, unlocked []*domain.UnlockedAchievement) []AchievementView {
	defs := catalog.Definitions()
	views := make([]AchievementView, 0, len(defs))
	for _, def := range defs {
		view := AchievementView{AchievementDefinition: def}
		for _, u := range unlocked {
			if !metrics.IsUnlocked(def, metrics.NewUnlockedSet(u.AchievementID())) {
				continue
			}
			view.Unlocked = true
			view.IsNew = u.IsNew()
			at := u.AchievedAt()
			view.AchievedAt = &at
			break
		}
		views = append(views, view)
	}
	return views
}

func between(activities []*domain.Activity, from, to domain.Date) []*domain.Activity {
	out := make([]*domain.Activity, 0, len(activities))
	for _, a := range activities {
		if a == nil || a.Date().Before(from) || a.Date().After(to) {
			continue
		}
		out = append(out, a)
	}
	return out
}
