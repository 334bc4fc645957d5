package commands

import (
	"context"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	sharedApplication "github.com/felixgeelhaar/momentum/internal/shared/application"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// DeleteActivityCommand removes an activity from the log.
type DeleteActivityCommand struct {
	ActivityID uuid.UUID
	UserID     uuid.UUID
}

// DeleteActivityHandler handles the DeleteActivityCommand.
type DeleteActivityHandler struct {
	activityRepo domain.ActivityRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewDeleteActivityHandler creates a new DeleteActivityHandler.
func NewDeleteActivityHandler(activityRepo domain.ActivityRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *DeleteActivityHandler {
	return &DeleteActivityHandler{
		activityRepo: activityRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the DeleteActivityCommand.
func (h *DeleteActivityHandler) Handle(ctx context.Context, cmd DeleteActivityCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		activity, err := h.activityRepo.FindByID(txCtx, cmd.ActivityID)
		if err != nil {
			return err
		}
		if activity == nil {
			return domain.ErrActivityNotFound
		}
		if !activity.BelongsTo(cmd.UserID) {
			return domain.ErrActivityNotOwned
		}

		activity.MarkDeleted()
		if err := h.activityRepo.Delete(txCtx, activity.ID()); err != nil {
			return err
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.UserID, activity.DomainEvents())
	})
}
