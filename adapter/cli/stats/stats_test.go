package stats

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/momentum/adapter/cli/clitest"
	"github.com/felixgeelhaar/momentum/internal/app"
	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/progress/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logActivity(t *testing.T, container *app.Container, name, category, intensity, date, at string) {
	t.Helper()
	_, err := container.Service.LogActivity.Handle(context.Background(), commands.LogActivityCommand{
		UserID:    clitest.UserID,
		Name:      name,
		Category:  category,
		Intensity: intensity,
		Date:      date,
		Time:      at,
	})
	require.NoError(t, err)
}

func TestDayCommand(t *testing.T) {
	container := clitest.SetupLocalApp(t)
	logActivity(t, container, "Run", "fitness", "normal", "2024-03-01", "07:00")
	logActivity(t, container, "Journal", "mindset", "light", "2024-03-01", "21:00")

	out, err := clitest.Run(t, dayCmd, map[string]string{"date": "2024-03-01"})
	require.NoError(t, err)
	assert.Contains(t, out, "78 / 100 points")
	assert.Contains(t, out, "2 activities")

	out, err = clitest.Run(t, dayCmd, map[string]string{"date": "2024-03-01", "json": "true"})
	require.NoError(t, err)
	var summary metrics.DailySummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 78, summary.DailyPoints)
	assert.Equal(t, 78, summary.GoalProgress)
	assert.Equal(t, 50, summary.ByCategory.Value("fitness"))
}

func TestDayCommandRejectsBadDate(t *testing.T) {
	clitest.SetupLocalApp(t)

	_, err := clitest.Run(t, dayCmd, map[string]string{"date": "03/01/2024"})
	assert.Error(t, err)
}

func TestTimelineCommand(t *testing.T) {
	container := clitest.SetupLocalApp(t)

	out, err := clitest.Run(t, timelineCmd, map[string]string{"date": "2024-03-01"})
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing logged.")

	logActivity(t, container, "Run", "fitness", "normal", "2024-03-01", "07:10")
	logActivity(t, container, "Lift", "fitness", "normal", "2024-03-01", "07:50")

	out, err = clitest.Run(t, timelineCmd, map[string]string{"date": "2024-03-01", "json": "true"})
	require.NoError(t, err)
	var timeline metrics.Timeline
	require.NoError(t, json.Unmarshal([]byte(out), &timeline))
	assert.Equal(t, 100, timeline.Totals[7])
	assert.Equal(t, 0, timeline.Totals[8])
}

func TestMatrixCommand(t *testing.T) {
	container := clitest.SetupLocalApp(t)

	out, err := clitest.Run(t, matrixCmd, map[string]string{"date": "2024-03-07"})
	require.NoError(t, err)
	assert.Contains(t, out, "No activities in the last seven days.")

	logActivity(t, container, "Run", "fitness", "intense", "2024-03-06", "07:00")
	logActivity(t, container, "Run", "fitness", "normal", "2024-03-07", "07:00")

	out, err = clitest.Run(t, matrixCmd, map[string]string{"date": "2024-03-07"})
	require.NoError(t, err)
	assert.Contains(t, out, "Run")

	out, err = clitest.Run(t, matrixCmd, map[string]string{"date": "2024-03-07", "json": "true"})
	require.NoError(t, err)
	var matrix metrics.HabitMatrix
	require.NoError(t, json.Unmarshal([]byte(out), &matrix))
	require.Len(t, matrix.Rows, 1)
	assert.Equal(t, 2, matrix.Rows[0].CurrentStreak)
	assert.Len(t, matrix.Rows[0].Cells, metrics.MatrixDays)
}

func TestAnalyticsCommand(t *testing.T) {
	clitest.SetupLocalApp(t)

	out, err := clitest.Run(t, analyticsCmd, map[string]string{"days": "7"})
	require.NoError(t, err)
	assert.Contains(t, out, "(7 days)")
	assert.Contains(t, out, "points: 0")

	_, err = clitest.Run(t, analyticsCmd, map[string]string{"days": "0"})
	assert.EqualError(t, err, "--days must be positive")
}
