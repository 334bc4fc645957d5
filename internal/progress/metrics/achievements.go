package metrics

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
)

const (
	earlyBirdBeforeHour = 7
	nightOwlFromHour    = 22
)

func minActivities(n int) Predicate {
	return func(s domain.AggregateStats) bool { return s.TotalActivities >= n }
}

func minStreak(days int) Predicate {
	return func(s domain.AggregateStats) bool { return s.CurrentStreak >= days }
}

func minTotalPoints(points int) Predicate {
	return func(s domain.AggregateStats) bool { return s.TotalPoints >= points }
}

func builtinPredicates() map[string]Predicate {
	return map[string]Predicate{
		"first_steps":    minActivities(1),
		"activities_10":  minActivities(10),
		"activities_50":  minActivities(50),
		"activities_100": minActivities(100),
		"streak_3":       minStreak(3),
		"streak_7":       minStreak(7),
		"streak_14":      minStreak(14),
		"streak_30":      minStreak(30),
		"points_100_day": func(s domain.AggregateStats) bool { return s.DailyPoints >= 100 },
		"daily_goal_met": func(s domain.AggregateStats) bool { return s.DailyGoal > 0 && s.DailyPoints >= s.DailyGoal },
		"points_1000":    minTotalPoints(1000),
		"points_5000":    minTotalPoints(5000),
		"all_rounder":    func(s domain.AggregateStats) bool { return s.DistinctCategories >= len(domain.Categories) },
		"early_bird":     func(s domain.AggregateStats) bool { return s.EarlyActivities >= 5 },
		"night_owl":      func(s domain.AggregateStats) bool { return s.LateActivities >= 5 },
		"steady_hand":    func(s domain.AggregateStats) bool { return s.StabilityScore >= 80 },
	}
}

// Unlock is a newly satisfied achievement. Persisting it is the caller's job.
type Unlock struct {
	AchievementID string    `json:"achievement_id"`
	AchievedAt    time.Time `json:"achieved_at"`
	IsNew         bool      `json:"is_new"`
}

// UnlockedSet holds the keys of achievements a user already has. Keys are
// achievement ids, or titles for records written before ids existed.
type UnlockedSet map[string]struct{}

// NewUnlockedSet builds a set from keys.
func NewUnlockedSet(keys ...string) UnlockedSet {
	s := make(UnlockedSet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts a key.
func (s UnlockedSet) Add(key string) {
	s[key] = struct{}{}
}

// Has reports an exact key match.
func (s UnlockedSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Evaluator matches stats against the catalog.
type Evaluator struct {
	catalog *Catalog
}

// NewEvaluator creates an evaluator. A nil catalog means DefaultCatalog.
func NewEvaluator(catalog *Catalog) *Evaluator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Evaluator{catalog: catalog}
}

// Catalog returns the evaluator's catalog.
func (e *Evaluator) Catalog() *Catalog {
	return e.catalog
}

// Evaluate returns the achievements whose predicate holds and that are not
// in alreadyUnlocked, in catalog order.
func (e *Evaluator) Evaluate(stats domain.AggregateStats, alreadyUnlocked UnlockedSet, at time.Time) []Unlock {
	unlocks := make([]Unlock, 0)
	for _, def := range e.catalog.definitions {
		if IsUnlocked(def, alreadyUnlocked) {
			continue
		}
		if !e.catalog.predicates[def.ID](stats) {
			continue
		}
		unlocks = append(unlocks, Unlock{
			AchievementID: def.ID,
			AchievedAt:    at,
			IsNew:         true,
		})
	}
	return unlocks
}

// IsUnlocked matches by id first, then by legacy title.
func IsUnlocked(def domain.AchievementDefinition, unlocked UnlockedSet) bool {
	if unlocked.Has(def.ID) {
		return true
	}
	return matchLegacyTitle(def, unlocked)
}

// matchLegacyTitle supports records stored under the achievement's title
// instead of its id. Remove once stored records are migrated to ids.
func matchLegacyTitle(def domain.AchievementDefinition, unlocked UnlockedSet) bool {
	title := strings.TrimSpace(def.Title)
	for key := range unlocked {
		if strings.EqualFold(strings.TrimSpace(key), title) {
			return true
		}
	}
	return false
}

// BuildAggregateStats derives the predicate inputs from a full history.
func BuildAggregateStats(activities []*domain.Activity, reference domain.Date, dailyGoal int, scorer *ConsistencyScorer) (domain.AggregateStats, error) {
	if err := validateAll(activities); err != nil {
		return domain.AggregateStats{}, err
	}
	if scorer == nil {
		scorer = NewConsistencyScorer(DefaultConsistencyConfig())
	}

	streaks := StreaksFromActivities(activities, reference)
	stats := domain.AggregateStats{
		TotalActivities: len(activities),
		CurrentStreak:   streaks.Current,
		LongestStreak:   streaks.Longest,
		DailyGoal:       dailyGoal,
		ActiveDays:      len(ActiveDates(activities)),
	}

	categories := make(map[domain.Category]struct{})
	for _, a := range activities {
		stats.TotalPoints += a.Points()
		if a.Date() == reference {
			stats.DailyPoints += a.Points()
		}
		categories[a.Category()] = struct{}{}
		switch hour := a.TimeOfDay().Hour(); {
		case hour < earlyBirdBeforeHour:
			stats.EarlyActivities++
		case hour >= nightOwlFromHour:
			stats.LateActivities++
		}
	}
	stats.DistinctCategories = len(categories)

	score, err := scorer.Score(activities, StabilityWindowDays, reference)
	if err != nil {
		return domain.AggregateStats{}, err
	}
	stats.StabilityScore = score.StabilityScore

	return stats, nil
}
