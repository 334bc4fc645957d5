package outbox

import (
	"context"
	"time"
)

// Repository stores outbox messages.
type Repository interface {
	// Append stores msgs and sets their IDs. It joins the transaction in
	// ctx, which is how events commit together with their change.
	Append(ctx context.Context, msgs ...*Message) error

	// Due returns up to limit undelivered messages whose retry time has
	// come, oldest first.
	Due(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error

	// MarkFailed counts a failed attempt and schedules the next one.
	MarkFailed(ctx context.Context, id int64, reason string, retryAt time.Time) error

	// MarkDead takes a message out of delivery for good.
	MarkDead(ctx context.Context, id int64, reason string) error

	// Purge deletes messages published before the cutoff.
	Purge(ctx context.Context, before time.Time) (int64, error)

	// Backlog counts what has not been delivered.
	Backlog(ctx context.Context) (Backlog, error)
}

// Backlog is the undelivered part of the outbox.
type Backlog struct {
	Pending int64 `json:"pending"`
	Dead    int64 `json:"dead"`
}
