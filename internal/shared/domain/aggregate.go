// Package domain holds what every aggregate shares: an identity, creation
// and update times, and the events recorded since it was loaded.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Aggregate is embedded by aggregate roots.
type Aggregate struct {
	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
	pending   []DomainEvent
}

// NewAggregate starts a new aggregate with a random id.
func NewAggregate() Aggregate {
	now := time.Now().UTC()
	return Aggregate{id: uuid.New(), createdAt: now, updatedAt: now}
}

// RestoreAggregate rebuilds the shared state of a stored aggregate. It has
// no pending events.
func RestoreAggregate(id uuid.UUID, createdAt, updatedAt time.Time) Aggregate {
	return Aggregate{id: id, createdAt: createdAt, updatedAt: updatedAt}
}

func (a *Aggregate) ID() uuid.UUID        { return a.id }
func (a *Aggregate) CreatedAt() time.Time { return a.createdAt }
func (a *Aggregate) UpdatedAt() time.Time { return a.updatedAt }

// Touch moves UpdatedAt to now.
func (a *Aggregate) Touch() {
	a.updatedAt = time.Now().UTC()
}

// Record queues an event for the outbox.
func (a *Aggregate) Record(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// DomainEvents returns the events recorded so far, oldest first.
func (a *Aggregate) DomainEvents() []DomainEvent {
	return a.pending
}

// ClearDomainEvents drops the recorded events once they are stored.
func (a *Aggregate) ClearDomainEvents() {
	a.pending = nil
}
