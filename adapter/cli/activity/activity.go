package activity

import (
	"github.com/spf13/cobra"
)

// Cmd is the activity command group
var Cmd = &cobra.Command{
	Use:     "activity",
	Short:   "Log and manage activities",
	Long:    `Log what you did, list your activity history, and remove mistakes.`,
	Aliases: []string{"act"},
}

func init() {
	Cmd.AddCommand(logCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(importCmd)
}
