package eventbus

import (
	"context"
	"log/slog"
)

// Publisher sends encoded envelopes to a broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// NoopPublisher discards every message. Server mode falls back to it in
// development when RabbitMQ is down.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that only logs.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

// Publish implements Publisher.
func (p *NoopPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("event discarded", "routing_key", routingKey, "size", len(payload))
	return nil
}

// Close implements Publisher.
func (p *NoopPublisher) Close() error { return nil }
