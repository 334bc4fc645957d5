package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/momentum/internal/progress/application/services"
	"github.com/spf13/cobra"
)

var dashboardJSON bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show today's progress at a glance",
	Long: `Display today's points against your daily goal, your streaks,
consistency scores, this week's points and any achievements you have not
seen yet.

Examples:
  momentum dashboard
  momentum dash --json`,
	Aliases: []string{"dash", "today"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp("dashboard")
		if err != nil {
			return err
		}

		dashboard, err := app.Service.Metrics.Dashboard(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return fmt.Errorf("failed to build dashboard: %w", err)
		}

		if dashboardJSON {
			return WriteJSON(cmd.OutOrStdout(), dashboard)
		}
		renderDashboard(cmd.OutOrStdout(), dashboard)
		return nil
	},
}

func renderDashboard(w io.Writer, d services.Dashboard) {
	fmt.Fprintf(w, "\n  %s\n", Title(d.Today.Date.Time(nil).Format("Monday, January 2, 2006")))
	fmt.Fprintln(w, strings.Repeat("═", 60))

	fmt.Fprintf(w, "\n  %s\n", Title("TODAY"))
	fmt.Fprintf(w, "    %d / %d points  %s %d%%\n",
		d.Today.DailyPoints, d.Today.DailyGoal, ProgressBar(d.Today.GoalProgress, 20), d.Today.GoalProgress)
	fmt.Fprintf(w, "    %d activities\n", d.Today.ActivityCount)

	fmt.Fprintf(w, "\n  %s\n", Title("STREAKS"))
	fmt.Fprintf(w, "    current: %d days | longest: %d days\n", d.Streaks.Current, d.Streaks.Longest)

	fmt.Fprintf(w, "\n  %s\n", Title("CONSISTENCY"))
	fmt.Fprintf(w, "    completion %3d%%  %s\n", d.Consistency.CompletionRate, ProgressBar(d.Consistency.CompletionRate, 20))
	fmt.Fprintf(w, "    stability  %3d%%  %s\n", d.Consistency.StabilityScore, ProgressBar(d.Consistency.StabilityScore, 20))
	fmt.Fprintf(w, "    recovery   %3d%%  %s\n", d.Consistency.RecoveryRate, ProgressBar(d.Consistency.RecoveryRate, 20))

	fmt.Fprintf(w, "\n  %s\n", Title("THIS WEEK"))
	if len(d.WeekPoints) == 0 {
		fmt.Fprintln(w, "    "+Muted("No activity this week yet."))
	} else {
		fmt.Fprint(w, RenderSeries(d.WeekPoints, 30))
	}

	if len(d.NewAchievements) > 0 {
		fmt.Fprintf(w, "\n  %s\n", Title("NEW ACHIEVEMENTS"))
		for _, a := range d.NewAchievements {
			fmt.Fprintf(w, "    %s %s\n", Good("★ "+a.Title), Muted(a.Description))
		}
		fmt.Fprintln(w, "    "+Muted("Mark them seen with: momentum achievement view <id>"))
	}
	fmt.Fprintln(w)
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "print the dashboard as JSON")
	rootCmd.AddCommand(dashboardCmd)
}
