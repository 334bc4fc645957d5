package achievement

import (
	"fmt"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/application/queries"
	"github.com/spf13/cobra"
)

var (
	onlyUnlocked bool
	onlyNew      bool
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the achievement catalog",
	Long: `List every achievement with its unlock state, in catalog order.

Examples:
  momentum achievement list
  momentum achievement list --unlocked
  momentum achievement list --new --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("achievements")
		if err != nil {
			return err
		}

		views, err := app.Service.ListAchievements.Handle(cmd.Context(), queries.ListAchievementsQuery{
			UserID:       app.CurrentUserID,
			OnlyUnlocked: onlyUnlocked,
			OnlyNew:      onlyNew,
		})
		if err != nil {
			return fmt.Errorf("failed to list achievements: %w", err)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return cli.WriteJSON(out, views)
		}
		if len(views) == 0 {
			fmt.Fprintln(out, "No achievements found.")
			return nil
		}

		for _, v := range views {
			mark := cli.Muted("○")
			if v.Unlocked {
				mark = cli.Good("●")
			}
			line := fmt.Sprintf("%s %-18s %s", mark, v.ID, v.Title)
			if v.IsNew {
				line += " " + cli.Good("new")
			}
			fmt.Fprintln(out, line)
			fmt.Fprintf(out, "    %s\n", cli.Muted(v.Requirement))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&onlyUnlocked, "unlocked", false, "only unlocked achievements")
	listCmd.Flags().BoolVar(&onlyNew, "new", false, "only unlocks not yet viewed")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print as JSON")
}
