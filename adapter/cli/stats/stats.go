package stats

import (
	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/spf13/cobra"
)

var asJSON bool

// Cmd is the stats command group
var Cmd = &cobra.Command{
	Use:   "stats",
	Short: "Show progress views",
	Long:  `Daily summary, hourly timeline, weekly habit matrix and range analytics.`,
}

func init() {
	Cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print as JSON")

	Cmd.AddCommand(dayCmd)
	Cmd.AddCommand(timelineCmd)
	Cmd.AddCommand(matrixCmd)
	Cmd.AddCommand(analyticsCmd)
}

// resolveDate parses a --date flag, defaulting to the service's today.
func resolveDate(app *cli.App, value string) (domain.Date, error) {
	if value == "" {
		return app.Service.Metrics.Today(), nil
	}
	return domain.ParseDate(value)
}
