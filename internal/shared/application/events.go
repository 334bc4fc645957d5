package application

import (
	"context"

	"github.com/felixgeelhaar/momentum/internal/shared/domain"
	"github.com/felixgeelhaar/momentum/pkg/observability"
	"github.com/google/uuid"
)

// StampEvents gives every event of one command the same metadata. The
// correlation id continues the one in ctx and the request id becomes the
// causation id; either is generated when ctx has none.
func StampEvents(ctx context.Context, userID uuid.UUID, events []domain.DomainEvent) domain.EventMetadata {
	scope := observability.ScopeFrom(ctx)
	meta := domain.EventMetadata{
		CorrelationID: idOrNew(scope.CorrelationID),
		CausationID:   idOrNew(scope.RequestID),
		UserID:        userID,
	}
	for _, event := range events {
		if s, ok := event.(interface{ SetMetadata(domain.EventMetadata) }); ok {
			s.SetMetadata(meta)
		}
	}
	return meta
}

func idOrNew(s string) uuid.UUID {
	if id, err := uuid.Parse(s); err == nil && id != uuid.Nil {
		return id
	}
	return uuid.New()
}
