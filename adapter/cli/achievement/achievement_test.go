package achievement

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/momentum/adapter/cli/clitest"
	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/progress/application/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommand(t *testing.T) {
	container := clitest.SetupLocalApp(t)

	out, err := clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "first_steps")
	assert.Contains(t, out, "Week Warrior")

	out, err = clitest.Run(t, listCmd, map[string]string{"unlocked": "true"})
	require.NoError(t, err)
	assert.Contains(t, out, "No achievements found.")

	_, err = container.Service.LogActivity.Handle(context.Background(), commands.LogActivityCommand{
		UserID:   clitest.UserID,
		Name:     "Run",
		Category: "fitness",
	})
	require.NoError(t, err)
	require.NoError(t, container.DeliverEvents(context.Background()))

	out, err = clitest.Run(t, listCmd, map[string]string{"new": "true", "json": "true"})
	require.NoError(t, err)
	var views []services.AchievementView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.NotEmpty(t, views)
	assert.Equal(t, "first_steps", views[0].ID)
	for _, v := range views {
		assert.True(t, v.Unlocked)
		assert.True(t, v.IsNew)
	}
}

func TestEvaluateCommandIsIdempotent(t *testing.T) {
	container := clitest.SetupLocalApp(t)

	out, err := clitest.Run(t, evaluateCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No new achievements.")

	// Without delivery the unlock is left to the explicit evaluation.
	_, err = container.Service.LogActivity.Handle(context.Background(), commands.LogActivityCommand{
		UserID:   clitest.UserID,
		Name:     "Run",
		Category: "fitness",
	})
	require.NoError(t, err)

	out, err = clitest.Run(t, evaluateCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Unlocked: First Steps")

	out, err = clitest.Run(t, evaluateCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No new achievements.")
}

func TestViewCommand(t *testing.T) {
	container := clitest.SetupLocalApp(t)

	_, err := clitest.Run(t, viewCmd, nil, "first_steps")
	assert.EqualError(t, err, "achievement first_steps is not unlocked")

	_, err = container.Service.LogActivity.Handle(context.Background(), commands.LogActivityCommand{
		UserID:   clitest.UserID,
		Name:     "Run",
		Category: "fitness",
	})
	require.NoError(t, err)
	require.NoError(t, container.DeliverEvents(context.Background()))

	out, err := clitest.Run(t, viewCmd, nil, "first_steps")
	require.NoError(t, err)
	assert.Contains(t, out, "Marked first_steps as viewed")

	out, err = clitest.Run(t, viewCmd, nil, "first_steps")
	require.NoError(t, err)
	assert.Contains(t, out, "already viewed")
}
