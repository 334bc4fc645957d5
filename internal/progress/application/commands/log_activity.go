package commands

import (
	"context"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	sharedApplication "github.com/felixgeelhaar/momentum/internal/shared/application"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// LogActivityCommand contains the data needed to record an activity.
// Empty Date and Time default to the clock's current date and time.
type LogActivityCommand struct {
	UserID       uuid.UUID
	Name         string
	Category     string
	Intensity    string
	Date         string
	Time         string
	DurationMins int
	Notes        string
}

// LogActivityResult contains the result of recording an activity.
type LogActivityResult struct {
	ActivityID uuid.UUID
	Points     int
	Date       domain.Date
}

// LogActivityHandler handles the LogActivityCommand.
type LogActivityHandler struct {
	activityRepo domain.ActivityRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	clock        domain.Clock
}

// NewLogActivityHandler creates a new LogActivityHandler.
func NewLogActivityHandler(
	activityRepo domain.ActivityRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	clock domain.Clock,
) *LogActivityHandler {
	return &LogActivityHandler{
		activityRepo: activityRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		clock:        clock,
	}
}

// Handle executes the LogActivityCommand.
func (h *LogActivityHandler) Handle(ctx context.Context, cmd LogActivityCommand) (*LogActivityResult, error) {
	activity, err := h.build(cmd)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.activityRepo.Save(txCtx, activity); err != nil {
			return err
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.UserID, activity.DomainEvents())
	})
	if err != nil {
		return nil, err
	}

	return &LogActivityResult{
		ActivityID: activity.ID(),
		Points:     activity.Points(),
		Date:       activity.Date(),
	}, nil
}

// Validate reports whether cmd would produce a valid activity, without
// saving anything.
func (h *LogActivityHandler) Validate(cmd LogActivityCommand) error {
	_, err := h.build(cmd)
	return err
}

func (h *LogActivityHandler) build(cmd LogActivityCommand) (*domain.Activity, error) {
	category, err := domain.ParseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	intensity, err := domain.ParseIntensity(cmd.Intensity)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	date := domain.DateOf(now)
	if cmd.Date != "" {
		if date, err = domain.ParseDate(cmd.Date); err != nil {
			return nil, err
		}
	}
	at := domain.TimeOfDayOf(now)
	if cmd.Time != "" {
		if at, err = domain.ParseTimeOfDay(cmd.Time); err != nil {
			return nil, err
		}
	}

	activity, err := domain.NewActivity(cmd.UserID, cmd.Name, category, intensity, date, at)
	if err != nil {
		return nil, err
	}
	if err := activity.SetDetails(cmd.DurationMins, cmd.Notes); err != nil {
		return nil, err
	}
	return activity, nil
}
