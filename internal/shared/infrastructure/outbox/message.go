// Package outbox stores domain events next to the changes that produced
// them and relays them to a publisher afterwards.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/momentum/internal/shared/domain"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// State is where a message is in its delivery.
type State string

const (
	StatePending   State = "pending"
	StateRetrying  State = "retrying"
	StatePublished State = "published"
	StateDead      State = "dead"
)

// Message is one stored event.
type Message struct {
	ID            int64
	EventID       uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	RoutingKey    string
	Payload       json.RawMessage // the eventbus envelope
	Metadata      json.RawMessage
	CreatedAt     time.Time

	PublishedAt *time.Time
	RetryAt     *time.Time
	Attempts    int
	LastError   string
	DeadAt      *time.Time
	DeadReason  string
}

// NewMessage wraps event in the eventbus envelope, so consumers get the
// ids and metadata along with the event body.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := eventbus.NewEnvelope(event)
	if err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// State derives the delivery state from the timestamps.
func (m *Message) State() State {
	switch {
	case m.DeadAt != nil:
		return StateDead
	case m.PublishedAt != nil:
		return StatePublished
	case m.Attempts > 0:
		return StateRetrying
	default:
		return StatePending
	}
}

// Meta decodes the stored metadata. Unreadable metadata yields zero ids.
func (m *Message) Meta() domain.EventMetadata {
	var meta domain.EventMetadata
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &meta)
	}
	return meta
}
