package achievement

import (
	"fmt"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Re-check the catalog against your history",
	Long: `Recompute aggregate stats and unlock every achievement whose
requirement is now met. Running it twice unlocks nothing new.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("achievement evaluation")
		if err != nil {
			return err
		}

		result, err := app.Service.EvaluateAchievements.Handle(cmd.Context(), commands.EvaluateAchievementsCommand{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to evaluate achievements: %w", err)
		}
		if err := app.DeliverEvents(cmd.Context()); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Unlocked) == 0 {
			fmt.Fprintln(out, "No new achievements.")
			return nil
		}
		catalog := app.Service.Metrics.Catalog()
		for _, u := range result.Unlocked {
			title := u.AchievementID
			if def, ok := catalog.Definition(u.AchievementID); ok {
				title = def.Title
			}
			fmt.Fprintf(out, "%s\n", cli.Good("★ Unlocked: "+title))
		}
		return nil
	},
}
