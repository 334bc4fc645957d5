package stats

import (
	"fmt"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/metrics"
	"github.com/spf13/cobra"
)

var timelineDate string

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show points per hour of one day",
	Long: `Show how one day's points spread over the hours. Each hour is the
sum of the activities logged in it, not a running total.

Examples:
  momentum stats timeline
  momentum stats timeline --date 2024-03-01 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("timeline")
		if err != nil {
			return err
		}
		date, err := resolveDate(app, timelineDate)
		if err != nil {
			return err
		}

		timeline, err := app.Service.Metrics.Timeline(cmd.Context(), app.CurrentUserID, date)
		if err != nil {
			return fmt.Errorf("failed to build timeline for %s: %w", date, err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.WriteJSON(out, timeline)
		}

		fmt.Fprintf(out, "%s\n", cli.Title("Timeline "+date.String()))
		hours := make(metrics.Series, 0, 24)
		for h, points := range timeline.Totals {
			if points > 0 {
				hours = append(hours, metrics.Point{Key: metrics.HourKey(h), Value: points})
			}
		}
		if len(hours) == 0 {
			fmt.Fprintln(out, "  "+cli.Muted("Nothing logged."))
			return nil
		}
		fmt.Fprint(out, cli.RenderSeries(hours, 30))
		return nil
	},
}

func init() {
	timelineCmd.Flags().StringVar(&timelineDate, "date", "", "date as YYYY-MM-DD (default today)")
}
