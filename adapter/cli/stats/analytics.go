package stats

import (
	"fmt"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/spf13/cobra"
)

var rangeDays int

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show KPIs over a trailing range",
	Long: `Show totals, averages, the top category, the best weekday, streaks
and consistency over the last N days.

Examples:
  momentum stats analytics
  momentum stats analytics --days 90`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("analytics")
		if err != nil {
			return err
		}
		if rangeDays <= 0 {
			return fmt.Errorf("--days must be positive")
		}

		a, err := app.Service.Metrics.Analytics(cmd.Context(), app.CurrentUserID, rangeDays)
		if err != nil {
			return fmt.Errorf("failed to compute analytics: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.WriteJSON(out, a)
		}

		fmt.Fprintf(out, "%s\n", cli.Title(fmt.Sprintf("Analytics %s .. %s (%d days)", a.From, a.To, a.RangeDays)))
		fmt.Fprintf(out, "  points: %d | activities: %d | active days: %d\n", a.TotalPoints, a.TotalActivities, a.ActiveDays)
		fmt.Fprintf(out, "  avg per active day: %d | minutes: %d\n", a.AvgPointsPerDay, a.TotalMinutes)
		if a.TopCategory != "" {
			fmt.Fprintf(out, "  top category: %s | best weekday: %s\n", a.TopCategory, a.BestWeekday)
		}
		fmt.Fprintf(out, "  streak: %d (longest %d)\n", a.Streaks.Current, a.Streaks.Longest)
		fmt.Fprintf(out, "  completion %d%% | stability %d%% | recovery %d%%\n",
			a.Consistency.CompletionRate, a.Consistency.StabilityScore, a.Consistency.RecoveryRate)

		if len(a.CategoryShares) > 0 {
			fmt.Fprintf(out, "\n%s\n", cli.Title("By category"))
			fmt.Fprint(out, cli.RenderSeries(a.CategoryShares, 30))
		}
		fmt.Fprintf(out, "\n%s\n", cli.Title("By weekday"))
		fmt.Fprint(out, cli.RenderSeries(a.WeekdayAverages, 30))
		return nil
	},
}

func init() {
	analyticsCmd.Flags().IntVar(&rangeDays, "days", 30, "length of the trailing range")
}
