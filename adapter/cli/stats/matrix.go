package stats

import (
	"fmt"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/spf13/cobra"
)

var matrixDate string

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show the weekly habit matrix",
	Long: `Show one row per activity name over the last seven days, with its
streak, best streak and weekly completion rate. Cells are shaded by the
logged intensity.

Examples:
  momentum stats matrix
  momentum stats matrix --date 2024-03-07`,
	Aliases: []string{"habits"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("habit matrix")
		if err != nil {
			return err
		}
		date, err := resolveDate(app, matrixDate)
		if err != nil {
			return err
		}

		matrix, err := app.Service.Metrics.HabitMatrix(cmd.Context(), app.CurrentUserID, date)
		if err != nil {
			return fmt.Errorf("failed to build habit matrix: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.WriteJSON(out, matrix)
		}
		if len(matrix.Rows) == 0 {
			fmt.Fprintln(out, "No activities in the last seven days.")
			return nil
		}
		fmt.Fprint(out, cli.RenderHabitMatrix(matrix))
		return nil
	},
}

func init() {
	matrixCmd.Flags().StringVar(&matrixDate, "date", "", "last day of the week (default today)")
}
