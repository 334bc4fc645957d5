package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation and reports it to a logger and a metrics sink.
type Timer struct {
	name    string
	start   time.Time
	logger  *slog.Logger
	metrics Metrics
	tags    []Tag
	now     func() time.Time
}

// StartTimer starts timing the series name. Both sinks are optional.
func StartTimer(name string, logger *slog.Logger, metrics Metrics, tags ...Tag) *Timer {
	return &Timer{
		name:    name,
		start:   time.Now(),
		logger:  logger,
		metrics: metrics,
		tags:    tags,
		now:     time.Now,
	}
}

// Stop records the elapsed time. A non-nil err is also counted under
// errorCounter when one is given.
func (t *Timer) Stop(err error, errorCounter string) time.Duration {
	elapsed := t.now().Sub(t.start)

	if t.metrics != nil {
		t.metrics.Timing(t.name, elapsed, t.tags...)
		if err != nil && errorCounter != "" {
			t.metrics.Counter(errorCounter, 1, t.tags...)
		}
	}

	if t.logger != nil {
		if err != nil {
			t.logger.Warn("operation failed", "operation", t.name, "duration_ms", elapsed.Milliseconds(), "error", err)
		} else {
			t.logger.Debug("operation completed", "operation", t.name, "duration_ms", elapsed.Milliseconds())
		}
	}
	return elapsed
}
