package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// InProcessEventBus delivers published envelopes to registered consumers
// synchronously. Local mode uses it in place of RabbitMQ.
type InProcessEventBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
	// mu serializes dispatch so recomputes for one user never interleave.
	mu sync.Mutex
}

// NewInProcessEventBus creates a bus with no consumers.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer adds a consumer.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Routes lists the routing keys with consumers.
func (b *InProcessEventBus) Routes() []string {
	return b.registry.Routes()
}

// Publish implements Publisher. A consumer failure is returned so the
// outbox retries the message; an envelope that cannot decode is dropped.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event, err := decodeEvent(routingKey, payload)
	if err != nil {
		b.logger.Error("dropping event", "routing_key", routingKey, "error", err)
		return nil
	}
	return b.Dispatch(ctx, event)
}

// Dispatch delivers an already decoded event.
func (b *InProcessEventBus) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	if err := b.registry.Dispatch(ctx, event); err != nil {
		return err
	}
	b.logger.Debug("event dispatched",
		"routing_key", event.RoutingKey,
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close implements Publisher.
func (b *InProcessEventBus) Close() error { return nil }
