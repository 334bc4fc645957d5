package commands

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/felixgeelhaar/momentum/internal/progress/metrics"
	sharedApplication "github.com/felixgeelhaar/momentum/internal/shared/application"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// EvaluateAchievementsCommand re-checks the catalog for one user.
type EvaluateAchievementsCommand struct {
	UserID uuid.UUID
}

// EvaluateAchievementsResult lists the achievements unlocked by this run.
type EvaluateAchievementsResult struct {
	Unlocked []metrics.Unlock
	Stats    domain.AggregateStats
}

// EvaluationDeps groups the collaborators of EvaluateAchievementsHandler.
type EvaluationDeps struct {
	Activities   domain.ActivityRepository
	Achievements domain.AchievementRepository
	Goals        domain.GoalRepository
	Stats        domain.StatsRepository
	Outbox       outbox.Repository
	UnitOfWork   sharedApplication.UnitOfWork
}

// EvaluateAchievementsHandler handles the EvaluateAchievementsCommand.
type EvaluateAchievementsHandler struct {
	deps        EvaluationDeps
	evaluator   *metrics.Evaluator
	scorer      *metrics.ConsistencyScorer
	clock       domain.Clock
	defaultGoal int
}

// NewEvaluateAchievementsHandler creates a new EvaluateAchievementsHandler.
func NewEvaluateAchievementsHandler(
	deps EvaluationDeps,
	evaluator *metrics.Evaluator,
	scorer *metrics.ConsistencyScorer,
	clock domain.Clock,
	defaultGoal int,
) *EvaluateAchievementsHandler {
	if evaluator == nil {
		evaluator = metrics.NewEvaluator(nil)
	}
	if scorer == nil {
		scorer = metrics.NewConsistencyScorer(metrics.DefaultConsistencyConfig())
	}
	return &EvaluateAchievementsHandler{
		deps:        deps,
		evaluator:   evaluator,
		scorer:      scorer,
		clock:       clock,
		defaultGoal: defaultGoal,
	}
}

// Handle executes the EvaluateAchievementsCommand. Running it twice without
// new activity unlocks nothing the second time.
func (h *EvaluateAchievementsHandler) Handle(ctx context.Context, cmd EvaluateAchievementsCommand) (*EvaluateAchievementsResult, error) {
	var result *EvaluateAchievementsResult

	err := sharedApplication.WithUnitOfWork(ctx, h.deps.UnitOfWork, func(txCtx context.Context) error {
		now := h.clock.Now()
		today := domain.DateOf(now)

		// Records dated after today count once their day arrives.
		history, err := h.deps.Activities.FindByUser(txCtx, cmd.UserID, domain.ActivityFilter{To: today})
		if err != nil {
			return fmt.Errorf("load activities: %w", err)
		}
		goal, err := h.dailyGoal(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		existing, err := h.deps.Achievements.FindByUser(txCtx, cmd.UserID)
		if err != nil {
			return fmt.Errorf("load achievements: %w", err)
		}

		stats, err := metrics.BuildAggregateStats(history, today, goal, h.scorer)
		if err != nil {
			return err
		}

		unlockedSet := metrics.NewUnlockedSet()
		for _, u := range existing {
			unlockedSet.Add(u.AchievementID())
		}
		unlocks := h.evaluator.Evaluate(stats, unlockedSet, now)

		for _, unlock := range unlocks {
			achievement := domain.NewUnlockedAchievement(cmd.UserID, unlock.AchievementID, unlock.AchievedAt)
			if err := h.deps.Achievements.Save(txCtx, achievement); err != nil {
				return fmt.Errorf("save achievement %s: %w", unlock.AchievementID, err)
			}
			if err := saveEvents(txCtx, h.deps.Outbox, cmd.UserID, achievement.DomainEvents()); err != nil {
				return err
			}
		}

		if h.deps.Stats != nil {
			snapshot := domain.StatsSnapshot{UserID: cmd.UserID, Stats: stats, ComputedAt: now.UTC()}
			if err := h.deps.Stats.Save(txCtx, snapshot); err != nil {
				return fmt.Errorf("save stats snapshot: %w", err)
			}
		}

		result = &EvaluateAchievementsResult{Unlocked: unlocks, Stats: stats}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (h *EvaluateAchievementsHandler) dailyGoal(ctx context.Context, userID uuid.UUID) (int, error) {
	goal, err := h.deps.Goals.FindByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load goal: %w", err)
	}
	if goal == nil {
		return h.defaultGoal, nil
	}
	return goal.Points(), nil
}
