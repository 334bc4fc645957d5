package domain

import (
	"time"

	"github.com/google/uuid"
)

// AggregateStats are the accumulated numbers achievement predicates read.
type AggregateStats struct {
	TotalActivities    int `json:"total_activities"`
	TotalPoints        int `json:"total_points"`
	CurrentStreak      int `json:"current_streak"`
	LongestStreak      int `json:"longest_streak"`
	DailyPoints        int `json:"daily_points"`
	DailyGoal          int `json:"daily_goal"`
	DistinctCategories int `json:"distinct_categories"`
	ActiveDays         int `json:"active_days"`
	StabilityScore     int `json:"stability_score"`
	EarlyActivities    int `json:"early_activities"`
	LateActivities     int `json:"late_activities"`
}

// StatsSnapshot is the last computed AggregateStats of a user.
// It is a read model for consumers; metrics are always recomputed from activities.
type StatsSnapshot struct {
	UserID     uuid.UUID
	Stats      AggregateStats
	ComputedAt time.Time
}
