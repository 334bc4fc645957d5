package activity

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [activity-id]",
	Short:   "Delete a logged activity",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("activity deletion")
		if err != nil {
			return err
		}

		activityID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid activity ID: %w", err)
		}

		err = app.Service.DeleteActivity.Handle(cmd.Context(), commands.DeleteActivityCommand{
			ActivityID: activityID,
			UserID:     app.CurrentUserID,
		})
		if errors.Is(err, domain.ErrActivityNotFound) || errors.Is(err, domain.ErrActivityNotOwned) {
			return fmt.Errorf("activity %s not found", activityID)
		}
		if err != nil {
			return fmt.Errorf("failed to delete activity: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted activity %s\n", activityID)
		return app.DeliverEvents(cmd.Context())
	},
}
