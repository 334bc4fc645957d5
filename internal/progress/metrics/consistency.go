package metrics

import (
	"errors"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
)

// ErrInvalidWindow is returned for a non-positive scoring window.
var ErrInvalidWindow = errors.New("window must be at least one day")

// StabilityWindowDays is the fixed horizon of StabilityScore, so scores
// compare across users and ranges.
const StabilityWindowDays = 30

// ConsistencyConfig holds the scorer's tunables.
type ConsistencyConfig struct {
	// RecoveryMinRecords is the record count below which RecoveryRate
	// falls back to RecoveryDefault.
	RecoveryMinRecords int
	// RecoveryDefault is reported for sparse histories.
	RecoveryDefault int
}

// DefaultConsistencyConfig returns the production defaults.
func DefaultConsistencyConfig() ConsistencyConfig {
	return ConsistencyConfig{
		RecoveryMinRecords: 10,
		RecoveryDefault:    75,
	}
}

// ConsistencyScore holds percentages in [0,100].
type ConsistencyScore struct {
	CompletionRate int `json:"completion_rate"`
	StabilityScore int `json:"stability_score"`
	RecoveryRate   int `json:"recovery_rate"`
}

// ConsistencyScorer derives percentage metrics over trailing windows.
type ConsistencyScorer struct {
	config ConsistencyConfig
}

// NewConsistencyScorer creates a scorer. A non-positive threshold takes its
// default; RecoveryDefault is used as given, clamped to [0,100].
func NewConsistencyScorer(config ConsistencyConfig) *ConsistencyScorer {
	defaults := DefaultConsistencyConfig()
	if config.RecoveryMinRecords <= 0 {
		config.RecoveryMinRecords = defaults.RecoveryMinRecords
	}
	config.RecoveryDefault = clampPercent(config.RecoveryDefault)
	return &ConsistencyScorer{config: config}
}

// Config returns the effective configuration.
func (s *ConsistencyScorer) Config() ConsistencyConfig {
	return s.config
}

// Score computes completion over windowDays and stability over the fixed
// stability window, both ending at reference (inclusive).
func (s *ConsistencyScorer) Score(activities []*domain.Activity, windowDays int, reference domain.Date) (ConsistencyScore, error) {
	if windowDays <= 0 {
		return ConsistencyScore{}, ErrInvalidWindow
	}
	if err := validateAll(activities); err != nil {
		return ConsistencyScore{}, err
	}

	active := make(map[domain.Date]struct{}, len(activities))
	for _, a := range activities {
		active[a.Date()] = struct{}{}
	}

	return ConsistencyScore{
		CompletionRate: clampPercent(percent(activeDaysIn(active, windowDays, reference), windowDays)),
		StabilityScore: clampPercent(percent(activeDaysIn(active, StabilityWindowDays, reference), StabilityWindowDays)),
		RecoveryRate:   clampPercent(s.recoveryRate(active, len(activities), windowDays, reference)),
	}, nil
}

// recoveryRate is the share of missed days that were followed by a return
// to activity the next day. Sparse histories get the configured default.
func (s *ConsistencyScorer) recoveryRate(active map[domain.Date]struct{}, records, windowDays int, reference domain.Date) int {
	if records < s.config.RecoveryMinRecords {
		return s.config.RecoveryDefault
	}

	start := reference.AddDays(-(windowDays - 1))
	if first, ok := earliest(active); ok && first.After(start) {
		start = first
	}

	missed, resumed := 0, 0
	for d := start; !d.After(reference); d = d.AddDays(1) {
		if _, ok := active[d]; ok {
			continue
		}
		missed++
		next := d.AddDays(1)
		if next.After(reference) {
			continue
		}
		if _, ok := active[next]; ok {
			resumed++
		}
	}
	if missed == 0 {
		return 100
	}
	return percent(resumed, missed)
}

func activeDaysIn(active map[domain.Date]struct{}, windowDays int, reference domain.Date) int {
	start := reference.AddDays(-(windowDays - 1))
	count := 0
	for d := range active {
		if !d.Before(start) && !d.After(reference) {
			count++
		}
	}
	return count
}

func earliest(active map[domain.Date]struct{}) (domain.Date, bool) {
	var first domain.Date
	found := false
	for d := range active {
		if !found || d.Before(first) {
			first = d
			found = true
		}
	}
	return first, found
}

func clampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
