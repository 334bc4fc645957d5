package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/momentum/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	activityAggregateType    = "Activity"
	achievementAggregateType = "UnlockedAchievement"
	goalAggregateType        = "DailyGoal"
)

// Routing keys published by the progress context.
const (
	RoutingKeyActivityLogged      = "progress.activity.logged"
	RoutingKeyActivityDeleted     = "progress.activity.deleted"
	RoutingKeyAchievementUnlocked = "progress.achievement.unlocked"
	RoutingKeyAchievementViewed   = "progress.achievement.viewed"
	RoutingKeyGoalUpdated         = "progress.goal.updated"
)

// ActivityLogged is emitted when an activity is recorded.
type ActivityLogged struct {
	sharedDomain.EventHeader
	ActivityID uuid.UUID `json:"activity_id"`
	UserID     uuid.UUID `json:"user_id"`
	Category   string    `json:"category"`
	Points     int       `json:"points"`
	Date       string    `json:"date"`
}

// NewActivityLogged creates an ActivityLogged event.
func NewActivityLogged(a *Activity) *ActivityLogged {
	return &ActivityLogged{
		EventHeader: sharedDomain.NewEventHeader(a.ID(), activityAggregateType, RoutingKeyActivityLogged),
		ActivityID:  a.ID(),
		UserID:      a.UserID(),
		Category:    string(a.Category()),
		Points:      a.Points(),
		Date:        a.Date().String(),
	}
}

// ActivityDeleted is emitted when an activity is removed from the log.
type ActivityDeleted struct {
	sharedDomain.EventHeader
	ActivityID uuid.UUID `json:"activity_id"`
	UserID     uuid.UUID `json:"user_id"`
	Date       string    `json:"date"`
}

// NewActivityDeleted creates an ActivityDeleted event.
func NewActivityDeleted(a *Activity) *ActivityDeleted {
	return &ActivityDeleted{
		EventHeader: sharedDomain.NewEventHeader(a.ID(), activityAggregateType, RoutingKeyActivityDeleted),
		ActivityID:  a.ID(),
		UserID:      a.UserID(),
		Date:        a.Date().String(),
	}
}

// AchievementUnlocked is emitted when a catalog predicate first holds for a user.
type AchievementUnlocked struct {
	sharedDomain.EventHeader
	UserID        uuid.UUID `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	AchievedAt    time.Time `json:"achieved_at"`
}

// NewAchievementUnlocked creates an AchievementUnlocked event.
func NewAchievementUnlocked(u *UnlockedAchievement) *AchievementUnlocked {
	return &AchievementUnlocked{
		EventHeader:   sharedDomain.NewEventHeader(u.ID(), achievementAggregateType, RoutingKeyAchievementUnlocked),
		UserID:        u.UserID(),
		AchievementID: u.AchievementID(),
		AchievedAt:    u.AchievedAt(),
	}
}

// AchievementViewed is emitted when the user has seen an unlock.
type AchievementViewed struct {
	sharedDomain.EventHeader
	UserID        uuid.UUID `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
}

// NewAchievementViewed creates an AchievementViewed event.
func NewAchievementViewed(u *UnlockedAchievement) *AchievementViewed {
	return &AchievementViewed{
		EventHeader:   sharedDomain.NewEventHeader(u.ID(), achievementAggregateType, RoutingKeyAchievementViewed),
		UserID:        u.UserID(),
		AchievementID: u.AchievementID(),
	}
}

// GoalUpdated is emitted when the daily points goal changes.
type GoalUpdated struct {
	sharedDomain.EventHeader
	UserID uuid.UUID `json:"user_id"`
	Points int       `json:"points"`
}

// NewGoalUpdated creates a GoalUpdated event.
func NewGoalUpdated(g *DailyGoal) *GoalUpdated {
	return &GoalUpdated{
		EventHeader: sharedDomain.NewEventHeader(g.ID(), goalAggregateType, RoutingKeyGoalUpdated),
		UserID:      g.UserID(),
		Points:      g.Points(),
	}
}
