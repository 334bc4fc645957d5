package domain

import (
	"context"

	"github.com/google/uuid"
)

// ActivityFilter narrows FindByUser queries.
type ActivityFilter struct {
	From       Date
	To         Date
	Categories []Category
}

// ActivityRepository stores the activity log.
type ActivityRepository interface {
	Save(ctx context.Context, activity *Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*Activity, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByUserAndDate returns the activities logged on one date, ordered by time of day.
	FindByUserAndDate(ctx context.Context, userID uuid.UUID, date Date) ([]*Activity, error)

	// FindByUserAndRange returns activities in [from, to] inclusive.
	FindByUserAndRange(ctx context.Context, userID uuid.UUID, from, to Date) ([]*Activity, error)

	// FindByUser returns the user's whole history, optionally filtered.
	FindByUser(ctx context.Context, userID uuid.UUID, filter ActivityFilter) ([]*Activity, error)
}

// AchievementRepository stores unlocked achievements.
type AchievementRepository interface {
	Save(ctx context.Context, unlocked *UnlockedAchievement) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*UnlockedAchievement, error)
	FindByUserAndAchievement(ctx context.Context, userID uuid.UUID, achievementID string) (*UnlockedAchievement, error)
}

// GoalRepository stores daily goals.
type GoalRepository interface {
	Save(ctx context.Context, goal *DailyGoal) error
	// FindByUser returns nil, nil when the user never set a goal.
	FindByUser(ctx context.Context, userID uuid.UUID) (*DailyGoal, error)
}

// StatsRepository stores the latest stats snapshot per user.
type StatsRepository interface {
	Save(ctx context.Context, snapshot StatsSnapshot) error
	FindByUser(ctx context.Context, userID uuid.UUID) (*StatsSnapshot, error)
}
