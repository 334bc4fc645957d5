package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type sampleEvent struct {
	EventHeader
	Points int `json:"points"`
}

func TestAggregate(t *testing.T) {
	t.Run("new aggregates get an id and equal timestamps", func(t *testing.T) {
		a := NewAggregate()
		assert.NotEqual(t, uuid.Nil, a.ID())
		assert.Equal(t, a.CreatedAt(), a.UpdatedAt())
		assert.Empty(t, a.DomainEvents())
	})

	t.Run("restore keeps stored state", func(t *testing.T) {
		id := uuid.New()
		created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
		updated := created.Add(time.Hour)

		a := RestoreAggregate(id, created, updated)
		assert.Equal(t, id, a.ID())
		assert.Equal(t, created, a.CreatedAt())
		assert.Equal(t, updated, a.UpdatedAt())
	})

	t.Run("touch only moves updated", func(t *testing.T) {
		created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
		a := RestoreAggregate(uuid.New(), created, created)
		a.Touch()
		assert.Equal(t, created, a.CreatedAt())
		assert.True(t, a.UpdatedAt().After(created))
	})

	t.Run("events are kept in order until cleared", func(t *testing.T) {
		a := NewAggregate()
		first := &sampleEvent{EventHeader: NewEventHeader(a.ID(), "Sample", "sample.first")}
		second := &sampleEvent{EventHeader: NewEventHeader(a.ID(), "Sample", "sample.second")}
		a.Record(first)
		a.Record(second)

		events := a.DomainEvents()
		if assert.Len(t, events, 2) {
			assert.Equal(t, "sample.first", events[0].RoutingKey())
			assert.Equal(t, "sample.second", events[1].RoutingKey())
		}

		a.ClearDomainEvents()
		assert.Empty(t, a.DomainEvents())
	})
}

func TestEventHeader(t *testing.T) {
	aggregateID := uuid.New()
	e := &sampleEvent{EventHeader: NewEventHeader(aggregateID, "Sample", "sample.happened"), Points: 5}

	assert.NotEqual(t, uuid.Nil, e.EventID())
	assert.Equal(t, aggregateID, e.AggregateID())
	assert.Equal(t, "Sample", e.AggregateType())
	assert.Equal(t, "sample.happened", e.RoutingKey())
	assert.WithinDuration(t, time.Now(), e.OccurredAt(), time.Minute)
	assert.Equal(t, EventMetadata{}, e.Metadata())

	meta := EventMetadata{CorrelationID: uuid.New(), CausationID: uuid.New(), UserID: uuid.New()}
	e.SetMetadata(meta)
	assert.Equal(t, meta, e.Metadata())

	var _ DomainEvent = e
}
