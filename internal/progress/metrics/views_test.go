package metrics

import (
	"testing"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySummary(t *testing.T) {
	activities := []*domain.Activity{
		act("2024-01-01", 50, domain.CategoryFitness),
		act("2024-01-02", 30, domain.CategoryMindset),
	}

	summary, err := BuildDailySummary(activities, d("2024-01-02"), 100)
	require.NoError(t, err)

	assert.Equal(t, 30, summary.DailyPoints)
	assert.Equal(t, 1, summary.ActivityCount)
	assert.Equal(t, 30, summary.GoalProgress)
	assert.Equal(t, Series{{Key: "mindset", Value: 30, Share: 100}}, summary.ByCategory)
}

func TestGoalProgress(t *testing.T) {
	assert.Equal(t, 0, GoalProgress(50, 0))
	assert.Equal(t, 67, GoalProgress(2, 3))
	assert.Equal(t, 100, GoalProgress(100, 100))
	assert.Equal(t, 100, GoalProgress(250, 100))
}

func TestBuildDailySummary_Empty(t *testing.T) {
	summary, err := BuildDailySummary(nil, d("2024-01-02"), 100)
	require.NoError(t, err)

	assert.Equal(t, EmptyDailySummary(d("2024-01-02"), 100), summary)
	assert.NotNil(t, summary.ByCategory)
}

func TestBuildTimeline(t *testing.T) {
	activities := []*domain.Activity{
		actAt("2024-01-02", 7, 50, domain.CategoryFitness),
		actAt("2024-01-02", 7, 30, domain.CategoryMindset),
		actAt("2024-01-02", 18, 20, domain.CategoryFitness),
		actAt("2024-01-01", 7, 99, domain.CategoryFitness),
	}

	timeline, err := BuildTimeline(activities, d("2024-01-02"))
	require.NoError(t, err)

	require.Len(t, timeline.Categories, len(domain.Categories))
	assert.Equal(t, domain.CategoryFitness, timeline.Categories[0].Category)
	assert.Equal(t, 50, timeline.Categories[0].Hours[7])
	assert.Equal(t, 20, timeline.Categories[0].Hours[18])
	assert.Equal(t, 30, timeline.Categories[1].Hours[7])
	assert.Equal(t, 80, timeline.Totals[7])
	assert.Equal(t, 20, timeline.Totals[18])
	assert.Less(t, timeline.Totals[8], timeline.Totals[7], "totals are per hour, not cumulative")
}

func TestBuildHabitMatrix(t *testing.T) {
	reference := d("2024-01-07")
	activities := []*domain.Activity{
		named("Run", "2024-01-05", 7, 35, domain.CategoryFitness, domain.IntensityLight),
		named("Run", "2024-01-06", 7, 75, domain.CategoryFitness, domain.IntensityIntense),
		named("Run", "2024-01-06", 19, 35, domain.CategoryFitness, domain.IntensityLight),
		named("Run", "2024-01-07", 7, 50, domain.CategoryFitness, domain.IntensityNormal),
		named("Run", "2023-12-20", 7, 50, domain.CategoryFitness, domain.IntensityNormal),
		named("Meditate", "2024-01-01", 21, 40, domain.CategoryMindset, domain.IntensityNormal),
		named("Old habit", "2023-11-01", 9, 20, domain.CategoryOthers, domain.IntensityNormal),
	}

	matrix, err := BuildHabitMatrix(activities, reference)
	require.NoError(t, err)

	require.Len(t, matrix.Days, 7)
	assert.Equal(t, d("2024-01-01"), matrix.Days[0])
	assert.Equal(t, reference, matrix.Days[6])

	require.Len(t, matrix.Rows, 2, "names outside the week are skipped")
	meditate, run := matrix.Rows[0], matrix.Rows[1]

	assert.Equal(t, "Meditate", meditate.Name)
	assert.True(t, meditate.Cells[0].Completed)
	assert.Equal(t, 0, meditate.CurrentStreak)
	assert.Equal(t, 1, meditate.BestStreak)
	assert.Equal(t, 14, meditate.CompletionRate)

	assert.Equal(t, "Run", run.Name)
	assert.Equal(t, domain.CategoryFitness, run.Category)
	assert.Equal(t, 0.5, run.Cells[4].Intensity)
	assert.Equal(t, 0.9, run.Cells[5].Intensity, "strongest intensity of the day wins")
	assert.Equal(t, 110, run.Cells[5].Points)
	assert.Equal(t, 0.7, run.Cells[6].Intensity)
	assert.False(t, run.Cells[3].Completed)
	assert.Equal(t, 3, run.CurrentStreak)
	assert.Equal(t, 3, run.BestStreak)
	assert.Equal(t, 43, run.CompletionRate)
}

func TestBuildHabitMatrix_Empty(t *testing.T) {
	matrix, err := BuildHabitMatrix(nil, d("2024-01-07"))
	require.NoError(t, err)

	assert.Len(t, matrix.Days, 7)
	assert.NotNil(t, matrix.Rows)
	assert.Empty(t, matrix.Rows)
}

func TestBuildAnalytics(t *testing.T) {
	reference := d("2024-01-07")
	history := []*domain.Activity{
		actAt("2023-12-01", 8, 50, domain.CategoryFitness),
		actAt("2024-01-05", 8, 50, domain.CategoryFitness),
		actAt("2024-01-06", 20, 30, domain.CategoryMindset),
		actAt("2024-01-07", 8, 20, domain.CategoryFitness),
	}
	inRange := history[1:]

	got, err := BuildAnalytics(inRange, history, reference, 7, nil)
	require.NoError(t, err)

	assert.Equal(t, d("2024-01-01"), got.From)
	assert.Equal(t, reference, got.To)
	assert.Equal(t, 100, got.TotalPoints)
	assert.Equal(t, 3, got.TotalActivities)
	assert.Equal(t, 3, got.ActiveDays)
	assert.Equal(t, 33, got.AvgPointsPerDay)
	assert.Equal(t, domain.CategoryFitness, got.TopCategory)
	assert.Equal(t, "Friday", got.BestWeekday)
	assert.Equal(t, StreakState{Current: 3, Longest: 3}, got.Streaks)
	assert.Equal(t, 43, got.Consistency.CompletionRate)
	assert.Equal(t, 70, got.CategoryShares.Value("fitness"))
	assert.Equal(t, 70, got.CategoryShares[0].Share)
	assert.Len(t, got.HourlyDistribution, 24)
	assert.Len(t, got.WeekdayAverages, 7)
}

func TestBuildAnalytics_EmptyIsWellFormed(t *testing.T) {
	got, err := BuildAnalytics(nil, nil, d("2024-01-07"), 30, nil)
	require.NoError(t, err)

	assert.Zero(t, got.TotalPoints)
	assert.Len(t, got.HourlyDistribution, 24)
	assert.Len(t, got.WeekdayAverages, 7)
	assert.Empty(t, got.TopCategory)

	_, err = BuildAnalytics(nil, nil, d("2024-01-07"), 0, nil)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
