package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact an aggregate reports to the rest of the system.
// The routing key doubles as the event type.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() uuid.UUID
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata ties the events of one command together.
type EventMetadata struct {
	CorrelationID uuid.UUID `json:"correlation_id"`
	CausationID   uuid.UUID `json:"causation_id"`
	UserID        uuid.UUID `json:"user_id"`
}

// EventHeader implements DomainEvent for embedding. Its fields stay out of
// the event's JSON body; the envelope carries them.
type EventHeader struct {
	id            uuid.UUID
	aggregateID   uuid.UUID
	aggregateType string
	routingKey    string
	occurredAt    time.Time
	meta          EventMetadata
}

// NewEventHeader stamps a new event id and the current time.
func NewEventHeader(aggregateID uuid.UUID, aggregateType, routingKey string) EventHeader {
	return EventHeader{
		id:            uuid.New(),
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		routingKey:    routingKey,
		occurredAt:    time.Now().UTC(),
	}
}

func (h EventHeader) EventID() uuid.UUID      { return h.id }
func (h EventHeader) AggregateID() uuid.UUID  { return h.aggregateID }
func (h EventHeader) AggregateType() string   { return h.aggregateType }
func (h EventHeader) RoutingKey() string      { return h.routingKey }
func (h EventHeader) OccurredAt() time.Time   { return h.occurredAt }
func (h EventHeader) Metadata() EventMetadata { return h.meta }

// SetMetadata attaches command metadata before the event is stored.
func (h *EventHeader) SetMetadata(meta EventMetadata) {
	h.meta = meta
}
