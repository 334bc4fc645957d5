package activity

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/application/queries"
	"github.com/spf13/cobra"
)

var (
	from       string
	to         string
	categories []string
	limit      int
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged activities",
	Long: `List activities newest first.

Examples:
  momentum activity list
  momentum activity list --from 2024-03-01 --to 2024-03-07
  momentum activity list -c fitness -c mindset --limit 20`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("activity listing")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		activities, err := app.Service.ListActivities.Handle(cmd.Context(), queries.ListActivitiesQuery{
			UserID:     app.CurrentUserID,
			From:       from,
			To:         to,
			Categories: categories,
			Limit:      limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list activities: %w", err)
		}

		if listJSON {
			return cli.WriteJSON(out, activities)
		}
		if len(activities) == 0 {
			fmt.Fprintln(out, "No activities found. Log one with: momentum activity log \"Morning run\" -c fitness")
			return nil
		}

		fmt.Fprintf(out, "Activities (%d):\n", len(activities))
		fmt.Fprintln(out, strings.Repeat("-", 70))
		for _, a := range activities {
			fmt.Fprintf(out, "%s %s  %-24s %-10s %-8s %4d pts\n",
				a.Date, a.Time, a.Name, a.Category, a.Intensity, a.Points)
			details := "    ID: " + a.ID.String()
			if a.DurationMins > 0 {
				details += fmt.Sprintf(" | %dm", a.DurationMins)
			}
			if a.Notes != "" {
				details += " | " + a.Notes
			}
			fmt.Fprintln(out, cli.Muted(details))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&to, "to", "", "last date (YYYY-MM-DD)")
	listCmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "filter by category (repeatable)")
	listCmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of activities")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print as JSON")
}
