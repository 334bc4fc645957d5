package cli

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/momentum/pkg/observability"
	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage and event delivery health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}

		health := app.CheckHealth(cmd.Context())
		if healthJSON {
			return WriteJSON(cmd.OutOrStdout(), health)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", health.Status)
		names := make([]string, 0, len(health.Checks))
		for name := range health.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			check := health.Checks[name]
			line := fmt.Sprintf("  %-16s %s", name, check.Status)
			if check.Message != "" {
				line += "  " + Muted(check.Message)
			}
			fmt.Fprintln(out, line)
		}
		if health.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(healthCmd)
}
