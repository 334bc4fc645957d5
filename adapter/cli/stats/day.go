package stats

import (
	"fmt"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/spf13/cobra"
)

var dayDate string

var dayCmd = &cobra.Command{
	Use:     "day",
	Aliases: []string{"today"},
	Short:   "Summarize one day",
	Long: `Show the points, activity count and goal progress of one day.

Examples:
  momentum stats day
  momentum stats day --date 2024-03-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("daily summary")
		if err != nil {
			return err
		}
		date, err := resolveDate(app, dayDate)
		if err != nil {
			return err
		}

		summary, err := app.Service.Metrics.DailySummary(cmd.Context(), app.CurrentUserID, date)
		if err != nil {
			return fmt.Errorf("failed to summarize %s: %w", date, err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.WriteJSON(out, summary)
		}

		fmt.Fprintf(out, "%s\n", cli.Title(date.String()))
		fmt.Fprintf(out, "  %d / %d points  %s %d%%\n",
			summary.DailyPoints, summary.DailyGoal, cli.ProgressBar(summary.GoalProgress, 20), summary.GoalProgress)
		fmt.Fprintf(out, "  %d activities\n", summary.ActivityCount)
		if len(summary.ByCategory) > 0 {
			fmt.Fprint(out, cli.RenderSeries(summary.ByCategory, 30))
		}
		return nil
	},
}

func init() {
	dayCmd.Flags().StringVar(&dayDate, "date", "", "date as YYYY-MM-DD (default today)")
}
