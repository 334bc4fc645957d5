package activity

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/adapter/cli/clitest"
	"github.com/felixgeelhaar/momentum/internal/progress/application/queries"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCommand(t *testing.T) {
	container := clitest.SetupLocalApp(t)

	out, err := clitest.Run(t, logCmd, map[string]string{
		"category":  "fitness",
		"intensity": "intense",
		"date":      "2024-03-01",
		"time":      "07:15",
		"duration":  "30",
	}, "Morning run")
	require.NoError(t, err)
	assert.Contains(t, out, "+75 points")
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "Achievement: First Steps")

	acts, err := container.Service.ListActivities.Handle(context.Background(), queries.ListActivitiesQuery{UserID: clitest.UserID})
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "07:15", acts[0].Time)
	assert.Equal(t, 30, acts[0].DurationMins)
}

func TestLogCommandRejectsUnknownCategory(t *testing.T) {
	clitest.SetupLocalApp(t)

	_, err := clitest.Run(t, logCmd, map[string]string{"category": "gardening"}, "Weeding")
	assert.Error(t, err)
}

func TestListCommand(t *testing.T) {
	clitest.SetupLocalApp(t)

	out, err := clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No activities found")

	_, err = clitest.Run(t, logCmd, map[string]string{"category": "mindset", "date": "2024-03-01"}, "Meditation")
	require.NoError(t, err)
	_, err = clitest.Run(t, logCmd, map[string]string{"category": "social", "date": "2024-03-02"}, "Call a friend")
	require.NoError(t, err)

	out, err = clitest.Run(t, listCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Activities (2)")
	assert.Contains(t, out, "Meditation")

	out, err = clitest.Run(t, listCmd, map[string]string{"category": "social", "json": "true"})
	require.NoError(t, err)
	var listed []queries.ActivityDTO
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Call a friend", listed[0].Name)
	assert.Equal(t, 30, listed[0].Points)
}

func TestDeleteCommand(t *testing.T) {
	container := clitest.SetupLocalApp(t)
	ctx := context.Background()

	_, err := clitest.Run(t, logCmd, nil, "Stretching")
	require.NoError(t, err)
	acts, err := container.Service.ListActivities.Handle(ctx, queries.ListActivitiesQuery{UserID: clitest.UserID})
	require.NoError(t, err)
	require.Len(t, acts, 1)

	out, err := clitest.Run(t, deleteCmd, nil, acts[0].ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted activity")

	_, err = clitest.Run(t, deleteCmd, nil, acts[0].ID.String())
	assert.EqualError(t, err, "activity "+acts[0].ID.String()+" not found")

	_, err = clitest.Run(t, deleteCmd, nil, "not-a-uuid")
	assert.ErrorContains(t, err, "invalid activity ID")
}

func TestCommandsRequireApp(t *testing.T) {
	cli.SetApp(nil)

	_, err := clitest.Run(t, deleteCmd, nil, uuid.NewString())
	var unavailable *cli.ServiceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}
