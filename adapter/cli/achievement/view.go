package achievement

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Mark an unlocked achievement as seen",
	Long: `Acknowledge an unlock so it no longer shows up as new.

Examples:
  momentum achievement view first_steps`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("achievements")
		if err != nil {
			return err
		}

		result, err := app.Service.MarkAchievementViewed.Handle(cmd.Context(), commands.MarkAchievementViewedCommand{
			UserID:        app.CurrentUserID,
			AchievementID: args[0],
		})
		if errors.Is(err, domain.ErrAchievementNotFound) {
			return fmt.Errorf("achievement %s is not unlocked", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to mark achievement viewed: %w", err)
		}
		if err := app.DeliverEvents(cmd.Context()); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		out := cmd.OutOrStdout()
		if result.AlreadyViewed {
			fmt.Fprintf(out, "%s was already viewed\n", args[0])
			return nil
		}
		fmt.Fprintf(out, "Marked %s as viewed\n", args[0])
		return nil
	},
}
