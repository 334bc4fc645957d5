package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/felixgeelhaar/momentum/pkg/observability"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *slog.Logger
)

type startedAtKey struct{}

var rootCmd = &cobra.Command{
	Use:   "momentum",
	Short: "Momentum - progress metrics for your activity log",
	Long: `Momentum turns the activities you log into streaks, points,
consistency scores and achievements.

Log what you did, then look at your dashboard, habit matrix or analytics.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRun:  beginCommand,
	PersistentPostRun: endCommand,
}

// beginCommand opens a request scope for the invocation so every log line
// and stamped event of one command shares a correlation id.
func beginCommand(cmd *cobra.Command, _ []string) {
	if verbose {
		logger = observability.LoggerFor("cli", "debug", true, false)
	}
	ctx := observability.NewRequestContext(cmd.Context(), "")
	if app := GetApp(); app != nil {
		ctx = observability.WithUserID(ctx, app.CurrentUserID.String())
	}
	ctx = context.WithValue(ctx, startedAtKey{}, time.Now())
	cmd.SetContext(ctx)
	log().DebugContext(ctx, "command start", "command", cmd.CommandPath())
}

func endCommand(cmd *cobra.Command, _ []string) {
	ctx := cmd.Context()
	started, ok := ctx.Value(startedAtKey{}).(time.Time)
	if !ok {
		return
	}
	log().DebugContext(ctx, "command end",
		"command", cmd.CommandPath(),
		"duration_ms", time.Since(started).Milliseconds(),
	)
}

func log() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// ExecuteContext runs the root command under ctx. The error is printed
// here; callers only pick the exit code.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}

// AddCommand registers a subcommand.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}
