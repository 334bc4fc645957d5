package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/eventbus"
)

// ProcessorConfig tunes the relay loop.
type ProcessorConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// MaxRetries is the number of attempts before a message is dead.
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// DefaultProcessorConfig polls often enough that local delivery feels
// immediate.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval: 100 * time.Millisecond,
		BatchSize:    100,
		MaxRetries:   5,
		BackoffBase:  time.Second,
		BackoffMax:   time.Minute,
	}
}

// Stats describes the relay since it was created.
type Stats struct {
	Running         bool       `json:"running"`
	Published       uint64     `json:"published"`
	Failed          uint64     `json:"failed"`
	Dead            uint64     `json:"dead"`
	LagSeconds      float64    `json:"lag_seconds"`
	LastError       string     `json:"last_error,omitempty"`
	LastErrorAt     *time.Time `json:"last_error_at,omitempty"`
	LastPollAt      *time.Time `json:"last_poll_at,omitempty"`
	OldestPendingAt *time.Time `json:"oldest_pending_at,omitempty"`
}

// Processor relays due messages to a publisher.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	cfg       ProcessorConfig
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	stop    chan struct{}
	done    sync.WaitGroup
	running bool
	stats   Stats
}

// NewProcessor creates a processor. Zero config fields take defaults.
func NewProcessor(repo Repository, publisher eventbus.Publisher, cfg ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultProcessorConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = def.BackoffBase
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = def.BackoffMax
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Start polls in the background until Stop or ctx is done. Starting a
// running processor does nothing.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}
	p.running = true
	p.stop = make(chan struct{})
	p.done.Add(1)
	go p.loop(ctx, p.stop)

	p.logger.Info("outbox processor started", "poll_interval", p.cfg.PollInterval, "batch_size", p.cfg.BatchSize)
	return nil
}

// Stop ends polling and waits for the current batch.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	p.mu.Unlock()

	p.done.Wait()
	p.logger.Info("outbox processor stopped")
}

// IsRunning reports whether the background loop is active.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) loop(ctx context.Context, stop <-chan struct{}) {
	defer p.done.Done()
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if _, err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error("outbox poll failed", "error", err)
			}
		}
	}
}

// ProcessOnce relays one batch and returns how many messages it took.
// Publish failures are recorded on the messages, not returned.
func (p *Processor) ProcessOnce(ctx context.Context) (int, error) {
	msgs, err := p.repo.Due(ctx, p.cfg.BatchSize)
	if err != nil {
		p.record(func(s *Stats) { p.noteError(s, err) })
		return 0, err
	}
	p.notePoll(msgs)

	for _, msg := range msgs {
		p.deliver(ctx, msg)
	}
	return len(msgs), nil
}

// Drain relays batches until none is due or maxPasses is spent. Consumers
// may append follow-up events, so one pass is not always enough.
func (p *Processor) Drain(ctx context.Context, maxPasses int) error {
	for i := 0; i < maxPasses; i++ {
		n, err := p.ProcessOnce(ctx)
		if err != nil || n == 0 {
			return err
		}
	}
	return nil
}

func (p *Processor) deliver(ctx context.Context, msg *Message) {
	err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload)
	if err == nil {
		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			p.logger.Error("failed to mark outbox message published", "id", msg.ID, "error", err)
			return
		}
		p.record(func(s *Stats) { s.Published++ })
		return
	}

	meta := msg.Meta()
	log := p.logger.With(
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"correlation_id", meta.CorrelationID,
		"user_id", meta.UserID,
		"attempt", msg.Attempts+1,
	)

	if msg.Attempts+1 >= p.cfg.MaxRetries {
		log.Error("dead-lettering outbox message", "error", err)
		p.record(func(s *Stats) { s.Dead++; p.noteError(s, err) })
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
			log.Error("failed to dead-letter outbox message", "error", markErr)
		}
		return
	}

	retryAt := p.now().Add(p.backoff(msg.Attempts + 1))
	log.Warn("publish failed, will retry", "retry_at", retryAt, "error", err)
	p.record(func(s *Stats) { s.Failed++; p.noteError(s, err) })
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), retryAt); markErr != nil {
		log.Error("failed to schedule outbox retry", "error", markErr)
	}
}

// backoff doubles from BackoffBase per attempt, capped at BackoffMax.
func (p *Processor) backoff(attempt int) time.Duration {
	d := p.cfg.BackoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.cfg.BackoffMax {
			return p.cfg.BackoffMax
		}
	}
	return min(d, p.cfg.BackoffMax)
}

// Stats returns a copy of the relay statistics.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Running = p.running
	return s
}

func (p *Processor) record(fn func(*Stats)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.stats)
}

func (p *Processor) noteError(s *Stats, err error) {
	now := p.now()
	s.LastError = err.Error()
	s.LastErrorAt = &now
}

func (p *Processor) notePoll(msgs []*Message) {
	now := p.now()
	p.record(func(s *Stats) {
		s.LastPollAt = &now
		s.OldestPendingAt = nil
		s.LagSeconds = 0
		for _, msg := range msgs {
			if s.OldestPendingAt == nil || msg.CreatedAt.Before(*s.OldestPendingAt) {
				created := msg.CreatedAt
				s.OldestPendingAt = &created
			}
		}
		if s.OldestPendingAt != nil {
			s.LagSeconds = now.Sub(*s.OldestPendingAt).Seconds()
		}
	})
}
