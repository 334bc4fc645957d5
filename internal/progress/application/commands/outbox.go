package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/momentum/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/momentum/internal/shared/domain"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// saveEvents stamps the events with command metadata and writes them to the
// outbox inside the caller's transaction.
func saveEvents(ctx context.Context, outboxRepo outbox.Repository, userID uuid.UUID, events []sharedDomain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	sharedApplication.StampEvents(ctx, userID, events)

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return outboxRepo.Append(ctx, msgs...)
}
