package goal

import (
	"testing"

	"github.com/felixgeelhaar/momentum/adapter/cli/clitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalCommands(t *testing.T) {
	clitest.SetupLocalApp(t)

	out, err := clitest.Run(t, showCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Daily goal: 100 points")

	out, err = clitest.Run(t, setCmd, nil, "150")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily goal set to 150 points")

	out, err = clitest.Run(t, showCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Daily goal: 150 points")
}

func TestSetGoalRejectsInvalidPoints(t *testing.T) {
	clitest.SetupLocalApp(t)

	_, err := clitest.Run(t, setCmd, nil, "0")
	assert.EqualError(t, err, "daily goal must be a positive number of points")

	_, err = clitest.Run(t, setCmd, nil, "lots")
	assert.ErrorContains(t, err, "invalid points")
}
