package activity

import (
	"fmt"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/progress/application/queries"
	"github.com/spf13/cobra"
)

var (
	category  string
	intensity string
	date      string
	at        string
	duration  int
	notes     string
)

var logCmd = &cobra.Command{
	Use:   "log [name]",
	Short: "Log an activity",
	Long: `Log an activity. Points come from the category and intensity:

  fitness 50, mindset 40, work 40, nutrition 30, social 30, others 20
  light x0.7, normal x1.0, intense x1.5

Date and time default to now.

Examples:
  momentum activity log "Morning run" -c fitness -i intense
  momentum activity log "Meditation" -c mindset --duration 15
  momentum activity log "Meal prep" -c nutrition --date 2024-03-01 --time 18:30`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("activity logging")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		result, err := app.Service.LogActivity.Handle(ctx, commands.LogActivityCommand{
			UserID:       app.CurrentUserID,
			Name:         args[0],
			Category:     category,
			Intensity:    intensity,
			Date:         date,
			Time:         at,
			DurationMins: duration,
			Notes:        notes,
		})
		if err != nil {
			return fmt.Errorf("failed to log activity: %w", err)
		}

		fmt.Fprintf(out, "Logged %q on %s: %s\n", args[0], result.Date, cli.Good(fmt.Sprintf("+%d points", result.Points)))
		fmt.Fprintf(out, "  ID: %s\n", result.ActivityID)

		if err := app.DeliverEvents(ctx); err != nil {
			return fmt.Errorf("failed to evaluate achievements: %w", err)
		}
		fresh, err := app.Service.ListAchievements.Handle(ctx, queries.ListAchievementsQuery{
			UserID:  app.CurrentUserID,
			OnlyNew: true,
		})
		if err == nil && len(fresh) > 0 {
			for _, a := range fresh {
				fmt.Fprintf(out, "  %s\n", cli.Good("★ Achievement: "+a.Title))
			}
		}
		return nil
	},
}

func init() {
	logCmd.Flags().StringVarP(&category, "category", "c", "others", "category (fitness, mindset, nutrition, work, social, others)")
	logCmd.Flags().StringVarP(&intensity, "intensity", "i", "normal", "intensity (light, normal, intense)")
	logCmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	logCmd.Flags().StringVar(&at, "time", "", "time of day as HH:MM (default now)")
	logCmd.Flags().IntVarP(&duration, "duration", "d", 0, "duration in minutes")
	logCmd.Flags().StringVarP(&notes, "notes", "n", "", "free-form notes")
}
