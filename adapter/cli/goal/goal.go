package goal

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/spf13/cobra"
)

// Cmd is the goal command group
var Cmd = &cobra.Command{
	Use:   "goal",
	Short: "Show or change the daily points goal",
	RunE:  showCmd.RunE,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the daily goal and today's progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("daily goal")
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		summary, err := app.Service.Metrics.DailySummary(ctx, app.CurrentUserID, app.Service.Metrics.Today())
		if err != nil {
			return fmt.Errorf("failed to load today's progress: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Daily goal: %d points\nToday: %d  %s %d%%\n",
			summary.DailyGoal, summary.DailyPoints, cli.ProgressBar(summary.GoalProgress, 20), summary.GoalProgress)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <points>",
	Short: "Set the daily goal",
	Long: `Set the number of points you aim for each day. Must be positive.

Examples:
  momentum goal set 150`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("daily goal")
		if err != nil {
			return err
		}
		points, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid points %q: %w", args[0], err)
		}

		err = app.Service.SetDailyGoal.Handle(cmd.Context(), commands.SetDailyGoalCommand{
			UserID: app.CurrentUserID,
			Points: points,
		})
		if errors.Is(err, domain.ErrInvalidGoal) {
			return fmt.Errorf("daily goal must be a positive number of points")
		}
		if err != nil {
			return fmt.Errorf("failed to set daily goal: %w", err)
		}
		if err := app.DeliverEvents(cmd.Context()); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Daily goal set to %d points\n", points)
		return nil
	},
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(setCmd)
}
