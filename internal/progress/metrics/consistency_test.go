package metrics

import (
	"math/rand"
	"testing"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func daily(from string, days int) []*domain.Activity {
	start := d(from)
	out := make([]*domain.Activity, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, act(start.AddDays(i).String(), 10, domain.CategoryFitness))
	}
	return out
}

func TestConsistencyScorer_CompletionAndStability(t *testing.T) {
	scorer := NewConsistencyScorer(DefaultConsistencyConfig())
	reference := d("2024-01-30")

	// Active on the last 15 days only.
	activities := daily("2024-01-16", 15)

	got, err := scorer.Score(activities, 7, reference)
	require.NoError(t, err)

	assert.Equal(t, 100, got.CompletionRate)
	assert.Equal(t, 50, got.StabilityScore)
}

func TestConsistencyScorer_StabilityIgnoresDisplayWindow(t *testing.T) {
	scorer := NewConsistencyScorer(DefaultConsistencyConfig())
	activities := daily("2024-01-21", 10)

	week, err := scorer.Score(activities, 7, d("2024-01-30"))
	require.NoError(t, err)
	quarter, err := scorer.Score(activities, 90, d("2024-01-30"))
	require.NoError(t, err)

	assert.Equal(t, week.StabilityScore, quarter.StabilityScore)
	assert.Equal(t, 30, StabilityWindowDays)
	assert.Equal(t, 33, week.StabilityScore, "10 of the last 30 days")
	assert.Equal(t, 11, quarter.CompletionRate)
}

func TestConsistencyScorer_RecoveryDefaultForSparseData(t *testing.T) {
	scorer := NewConsistencyScorer(ConsistencyConfig{RecoveryMinRecords: 10, RecoveryDefault: 60})

	got, err := scorer.Score(daily("2024-01-01", 9), 30, d("2024-01-30"))
	require.NoError(t, err)

	assert.Equal(t, 60, got.RecoveryRate)
}

func TestConsistencyScorer_RecoveryRate(t *testing.T) {
	scorer := NewConsistencyScorer(DefaultConsistencyConfig())
	reference := d("2024-01-14")

	// Active on odd days 1..13 plus day 14: every missed day is followed by activity.
	var activities []*domain.Activity
	for day := 1; day <= 13; day += 2 {
		activities = append(activities, act(d("2024-01-01").AddDays(day-1).String(), 10, domain.CategoryWork))
	}
	activities = append(activities, act("2024-01-14", 10, domain.CategoryWork))
	activities = append(activities, daily("2024-01-13", 2)...)
	require.GreaterOrEqual(t, len(activities), 10)

	got, err := scorer.Score(activities, 14, reference)
	require.NoError(t, err)
	assert.Equal(t, 100, got.RecoveryRate)

	// A trailing gap with no resumption lowers the rate.
	got, err = scorer.Score(activities, 14, d("2024-01-16"))
	require.NoError(t, err)
	assert.Less(t, got.RecoveryRate, 100)
}

func TestConsistencyScorer_NoMissedDays(t *testing.T) {
	scorer := NewConsistencyScorer(DefaultConsistencyConfig())

	got, err := scorer.Score(daily("2024-01-01", 12), 7, d("2024-01-12"))
	require.NoError(t, err)

	assert.Equal(t, 100, got.RecoveryRate)
	assert.Equal(t, 100, got.CompletionRate)
}

func TestConsistencyScorer_Clamped(t *testing.T) {
	scorer := NewConsistencyScorer(DefaultConsistencyConfig())
	rng := rand.New(rand.NewSource(7))
	reference := d("2024-06-30")

	for i := 0; i < 100; i++ {
		var activities []*domain.Activity
		n := rng.Intn(60)
		for j := 0; j < n; j++ {
			// Some dates land after the reference on purpose.
			activities = append(activities, act(reference.AddDays(rng.Intn(80)-70).String(), 10, domain.CategoryFitness))
		}
		window := rng.Intn(45) + 1

		got, err := scorer.Score(activities, window, reference)
		require.NoError(t, err)
		for _, v := range []int{got.CompletionRate, got.StabilityScore, got.RecoveryRate} {
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
	}
}

func TestConsistencyScorer_Errors(t *testing.T) {
	scorer := NewConsistencyScorer(DefaultConsistencyConfig())

	_, err := scorer.Score(nil, 0, d("2024-01-01"))
	assert.ErrorIs(t, err, ErrInvalidWindow)

	got, err := scorer.Score(nil, 7, d("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, ConsistencyScore{RecoveryRate: 75}, got)
}

func TestNewConsistencyScorer_Defaults(t *testing.T) {
	scorer := NewConsistencyScorer(ConsistencyConfig{RecoveryDefault: 150})

	cfg := scorer.Config()
	assert.Equal(t, 10, cfg.RecoveryMinRecords)
	assert.Equal(t, 100, cfg.RecoveryDefault)
}
