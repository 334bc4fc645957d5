package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultConsumerQueueName is the queue the recompute worker reads.
	DefaultConsumerQueueName = "momentum.progress.recompute"

	defaultPrefetch = 1
)

// DeadLetterQueue names the queue that parks events dropped from queue.
func DeadLetterQueue(queue string) string { return queue + ".dead" }

func deadLetterExchange(exchange string) string { return exchange + ".dlx" }

type settlement int

const (
	settleAck settlement = iota
	settleRequeue
	settleDrop
)

// settle decides the fate of a delivery. Undecodable messages are dropped.
// A failed dispatch is retried once; a redelivered failure is dropped so
// one poison event cannot block the queue.
func settle(err error, redelivered bool) settlement {
	switch {
	case err == nil:
		return settleAck
	case errors.Is(err, errUndecodable), redelivered:
		return settleDrop
	default:
		return settleRequeue
	}
}

// RabbitMQConsumerConfig configures the RabbitMQ consumer.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Exchange  string
	// Prefetch bounds unacknowledged deliveries. Defaults to 1, which keeps
	// per-user recomputes in order.
	Prefetch int
	Logger   *slog.Logger
}

func (cfg *RabbitMQConsumerConfig) applyDefaults() {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultConsumerQueueName
	}
	if cfg.Exchange == "" {
		cfg.Exchange = ExchangeName
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = defaultPrefetch
	}
}

// RabbitMQConsumer feeds a durable queue bound to the event exchange into a
// ConsumerRegistry. Dropped deliveries are dead-lettered to
// DeadLetterQueue(queue) for inspection.
type RabbitMQConsumer struct {
	cfg      RabbitMQConsumerConfig
	conn     *amqp.Connection
	channel  *amqp.Channel
	registry *ConsumerRegistry
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	closed  chan struct{}
	once    sync.Once
}

// NewRabbitMQConsumer dials RabbitMQ and declares the topology.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	cfg.applyDefaults()
	if registry == nil {
		registry = NewConsumerRegistry(cfg.Logger)
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareTopology(ch, cfg); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	cfg.Logger.Info("RabbitMQ consumer connected",
		"queue", cfg.QueueName,
		"exchange", cfg.Exchange,
		"prefetch", cfg.Prefetch,
	)
	return &RabbitMQConsumer{
		cfg:      cfg,
		conn:     conn,
		channel:  ch,
		registry: registry,
		logger:   cfg.Logger,
		closed:   make(chan struct{}),
	}, nil
}

// declareTopology sets up the topic exchange, the work queue and its
// dead-letter pair.
func declareTopology(ch *amqp.Channel, cfg RabbitMQConsumerConfig) error {
	dlx := deadLetterExchange(cfg.Exchange)
	dead := DeadLetterQueue(cfg.QueueName)

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	if err := ch.ExchangeDeclare(dlx, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", dlx, err)
	}
	if _, err := ch.QueueDeclare(dead, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", dead, err)
	}
	if err := ch.QueueBind(dead, "", dlx, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", dead, err)
	}
	args := amqp.Table{"x-dead-letter-exchange": dlx}
	if _, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare queue %s: %w", cfg.QueueName, err)
	}
	return nil
}

// RegisterConsumer adds consumer to the registry and binds the queue to
// each of its routing keys. Bind failures are logged; the routing still
// works for keys bound earlier.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range consumer.EventTypes() {
		if err := c.channel.QueueBind(c.cfg.QueueName, key, c.cfg.Exchange, false, nil); err != nil {
			c.logger.Error("failed to bind routing key", "routing_key", key, "error", err)
			continue
		}
		c.logger.Debug("bound routing key", "queue", c.cfg.QueueName, "routing_key", key)
	}
}

// Start consumes until ctx is cancelled or Close is called. It blocks.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	if err := c.channel.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	deliveries, err := c.channel.ConsumeWithContext(ctx, c.cfg.QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.QueueName, err)
	}
	c.logger.Info("started consuming events", "queue", c.cfg.QueueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closed:
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *RabbitMQConsumer) handle(ctx context.Context, d amqp.Delivery) {
	start := time.Now()
	event, err := decodeEvent(d.RoutingKey, d.Body)
	if err == nil {
		err = c.registry.Dispatch(ctx, event)
	}
	log := c.logger.With("routing_key", d.RoutingKey, "redelivered", d.Redelivered)

	var settleErr error
	switch settle(err, d.Redelivered) {
	case settleAck:
		log.Debug("event processed", "event_id", event.EventID, "duration_ms", time.Since(start).Milliseconds())
		settleErr = d.Ack(false)
	case settleRequeue:
		log.Warn("event dispatch failed, requeueing", "error", err)
		settleErr = d.Nack(false, true)
	case settleDrop:
		log.Error("dead-lettering event", "dead_letter_queue", DeadLetterQueue(c.cfg.QueueName), "error", err)
		settleErr = d.Nack(false, false)
	}
	if settleErr != nil {
		log.Error("failed to settle delivery", "error", settleErr)
	}
}

// Close stops Start and closes the connection. It is safe to call twice.
func (c *RabbitMQConsumer) Close() error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		close(c.closed)
		c.running = false

		if cerr := c.channel.Close(); cerr != nil {
			c.logger.Warn("error closing channel", "error", cerr)
		}
		err = c.conn.Close()
		c.logger.Info("RabbitMQ consumer closed")
	})
	return err
}
