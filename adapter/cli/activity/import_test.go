package activity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/momentum/adapter/cli/clitest"
	"github.com/felixgeelhaar/momentum/internal/progress/application/queries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImport(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestImportCommand(t *testing.T) {
	container := clitest.SetupLocalApp(t)
	path := writeImport(t, `
- name: Morning run
  category: fitness
  intensity: intense
  date: 2024-03-01
  time: "07:30"
- name: Reading
  category: mindset
  date: 2024-03-01
`)

	out, err := clitest.Run(t, importCmd, nil, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 activities")
	assert.Contains(t, out, "+115 points")

	acts, err := container.Service.ListActivities.Handle(context.Background(), queries.ListActivitiesQuery{UserID: clitest.UserID})
	require.NoError(t, err)
	assert.Len(t, acts, 2)
}

func TestImportCommandAcceptsJSON(t *testing.T) {
	clitest.SetupLocalApp(t)
	path := writeImport(t, `[{"name": "Salad", "category": "nutrition", "date": "2024-03-02"}]`)

	out, err := clitest.Run(t, importCmd, nil, path)
	require.NoError(t, err)
	assert.Contains(t, out, "+30 points")
}

func TestImportCommandValidatesEverythingFirst(t *testing.T) {
	container := clitest.SetupLocalApp(t)
	path := writeImport(t, `
- name: Walk
  category: fitness
  date: 2024-03-01
- name: Weeding
  category: gardening
`)

	_, err := clitest.Run(t, importCmd, nil, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 2")

	acts, err := container.Service.ListActivities.Handle(context.Background(), queries.ListActivitiesQuery{UserID: clitest.UserID})
	require.NoError(t, err)
	assert.Empty(t, acts, "nothing is written when any entry is invalid")
}

func TestImportCommandDryRun(t *testing.T) {
	container := clitest.SetupLocalApp(t)
	path := writeImport(t, "- name: Walk\n  date: 2024-03-01\n")

	out, err := clitest.Run(t, importCmd, map[string]string{"dry-run": "true"}, path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 activities are valid")

	acts, err := container.Service.ListActivities.Handle(context.Background(), queries.ListActivitiesQuery{UserID: clitest.UserID})
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestImportCommandRejectsEmptyFile(t *testing.T) {
	clitest.SetupLocalApp(t)

	_, err := clitest.Run(t, importCmd, nil, writeImport(t, "[]"))
	assert.EqualError(t, err, "no activities in file")
}
