package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/momentum/internal/shared/domain"
	"github.com/google/uuid"
)

// AchievementCategory classifies catalog entries.
type AchievementCategory string

const (
	AchievementCategoryStreak    AchievementCategory = "streak"
	AchievementCategoryMilestone AchievementCategory = "milestone"
	AchievementCategoryGoal      AchievementCategory = "goal"
	AchievementCategorySpecial   AchievementCategory = "special"
)

// IsValid reports whether c is a known achievement category.
func (c AchievementCategory) IsValid() bool {
	switch c {
	case AchievementCategoryStreak, AchievementCategoryMilestone, AchievementCategoryGoal, AchievementCategorySpecial:
		return true
	}
	return false
}

// AchievementDefinition is an immutable catalog entry.
type AchievementDefinition struct {
	ID          string              `yaml:"id" json:"id"`
	Title       string              `yaml:"title" json:"title"`
	Description string              `yaml:"description" json:"description"`
	Requirement string              `yaml:"requirement" json:"requirement"`
	Category    AchievementCategory `yaml:"category" json:"category"`
}

// UnlockedAchievement records that a user met an achievement's requirement.
// Only isNew ever changes after creation.
type UnlockedAchievement struct {
	sharedDomain.Aggregate
	userID        uuid.UUID
	achievementID string
	achievedAt    time.Time
	isNew         bool
}

// NewUnlockedAchievement creates a fresh, unseen unlock.
func NewUnlockedAchievement(userID uuid.UUID, achievementID string, achievedAt time.Time) *UnlockedAchievement {
	u := &UnlockedAchievement{
		Aggregate:     sharedDomain.NewAggregate(),
		userID:        userID,
		achievementID: achievementID,
		achievedAt:    achievedAt.UTC(),
		isNew:         true,
	}
	u.Record(NewAchievementUnlocked(u))
	return u
}

// RehydrateUnlockedAchievement recreates an unlock from persisted state.
func RehydrateUnlockedAchievement(id, userID uuid.UUID, achievementID string, achievedAt time.Time, isNew bool, updatedAt time.Time) *UnlockedAchievement {
	return &UnlockedAchievement{
		Aggregate:     sharedDomain.RestoreAggregate(id, achievedAt, updatedAt),
		userID:        userID,
		achievementID: achievementID,
		achievedAt:    achievedAt,
		isNew:         isNew,
	}
}

// MarkViewed clears the new flag. It can only happen once.
func (u *UnlockedAchievement) MarkViewed() error {
	if !u.isNew {
		return ErrAchievementAlreadyViewed
	}
	u.isNew = false
	u.Touch()
	u.Record(NewAchievementViewed(u))
	return nil
}

func (u *UnlockedAchievement) UserID() uuid.UUID     { return u.userID }
func (u *UnlockedAchievement) AchievementID() string { return u.achievementID }
func (u *UnlockedAchievement) AchievedAt() time.Time { return u.achievedAt }
func (u *UnlockedAchievement) IsNew() bool           { return u.isNew }
