package commands

import (
	"context"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	sharedApplication "github.com/felixgeelhaar/momentum/internal/shared/application"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// SetDailyGoalCommand sets the points a user aims for each day.
type SetDailyGoalCommand struct {
	UserID uuid.UUID
	Points int
}

// SetDailyGoalHandler handles the SetDailyGoalCommand.
type SetDailyGoalHandler struct {
	goalRepo   domain.GoalRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewSetDailyGoalHandler creates a new SetDailyGoalHandler.
func NewSetDailyGoalHandler(goalRepo domain.GoalRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SetDailyGoalHandler {
	return &SetDailyGoalHandler{
		goalRepo:   goalRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the SetDailyGoalCommand. It creates the goal on first use.
func (h *SetDailyGoalHandler) Handle(ctx context.Context, cmd SetDailyGoalCommand) error {
	if cmd.Points <= 0 {
		return domain.ErrInvalidGoal
	}

	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		goal, err := h.goalRepo.FindByUser(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if goal == nil {
			if goal, err = domain.NewDailyGoal(cmd.UserID, cmd.Points); err != nil {
				return err
			}
		} else if err := goal.SetPoints(cmd.Points); err != nil {
			return err
		}

		if err := h.goalRepo.Save(txCtx, goal); err != nil {
			return err
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.UserID, goal.DomainEvents())
	})
}
