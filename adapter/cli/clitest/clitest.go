// Package clitest runs CLI commands against a throwaway local-mode store.
package clitest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	internalApp "github.com/felixgeelhaar/momentum/internal/app"
	"github.com/felixgeelhaar/momentum/pkg/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// UserID is the user every test app acts as.
var UserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// SetupLocalApp installs a CLI app backed by a fresh SQLite file and
// returns its container. The global app is reset on cleanup.
func SetupLocalApp(t *testing.T) *internalApp.Container {
	t.Helper()

	cfg := &config.Config{
		AppEnv:         "test",
		LocalMode:      true,
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "momentum.db"),
		UserID:         UserID.String(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := internalApp.NewLocalContainer(context.Background(), cfg, logger)
	require.NoError(t, err)

	cli.SetApp(cli.NewAppFromContainer(container, UserID))

	t.Cleanup(func() {
		cli.SetApp(nil)
		container.Close()
	})
	return container
}

// Run executes cmd.RunE with flags applied and returns what it printed.
func Run(t *testing.T, cmd *cobra.Command, flags map[string]string, args ...string) (string, error) {
	t.Helper()

	// Pulls the parents' persistent flags into cmd.Flags().
	_ = cmd.InheritedFlags()
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value), "flag %s", name)
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if !f.Changed {
				return
			}
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	})

	err := cmd.RunE(cmd, args)
	return out.String(), err
}
