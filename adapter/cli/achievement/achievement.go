package achievement

import (
	"github.com/spf13/cobra"
)

// Cmd is the achievement command group
var Cmd = &cobra.Command{
	Use:     "achievement",
	Aliases: []string{"ach", "badges"},
	Short:   "Browse and acknowledge achievements",
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(evaluateCmd)
	Cmd.AddCommand(viewCmd)
}
