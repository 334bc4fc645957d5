package commands

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	sharedApplication "github.com/felixgeelhaar/momentum/internal/shared/application"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// MarkAchievementViewedCommand acknowledges an unlock.
type MarkAchievementViewedCommand struct {
	UserID        uuid.UUID
	AchievementID string
}

// MarkAchievementViewedResult reports whether the unlock had been seen before.
type MarkAchievementViewedResult struct {
	AchievementID string
	AlreadyViewed bool
}

// MarkAchievementViewedHandler handles the MarkAchievementViewedCommand.
type MarkAchievementViewedHandler struct {
	achievementRepo domain.AchievementRepository
	outboxRepo      outbox.Repository
	uow             sharedApplication.UnitOfWork
}

// NewMarkAchievementViewedHandler creates a new MarkAchievementViewedHandler.
func NewMarkAchievementViewedHandler(achievementRepo domain.AchievementRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *MarkAchievementViewedHandler {
	return &MarkAchievementViewedHandler{
		achievementRepo: achievementRepo,
		outboxRepo:      outboxRepo,
		uow:             uow,
	}
}

// Handle executes the MarkAchievementViewedCommand.
func (h *MarkAchievementViewedHandler) Handle(ctx context.Context, cmd MarkAchievementViewedCommand) (*MarkAchievementViewedResult, error) {
	result := &MarkAchievementViewedResult{AchievementID: cmd.AchievementID}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		achievement, err := h.achievementRepo.FindByUserAndAchievement(txCtx, cmd.UserID, cmd.AchievementID)
		if err != nil {
			return err
		}
		if achievement == nil {
			return domain.ErrAchievementNotFound
		}

		if err := achievement.MarkViewed(); err != nil {
			if errors.Is(err, domain.ErrAchievementAlreadyViewed) {
				result.AlreadyViewed = true
				return nil
			}
			return err
		}

		if err := h.achievementRepo.Save(txCtx, achievement); err != nil {
			return err
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.UserID, achievement.DomainEvents())
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
