package activity

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/security"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// importEntry is one activity in an import file. JSON arrays parse too.
type importEntry struct {
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	Intensity string `yaml:"intensity"`
	Date      string `yaml:"date"`
	Time      string `yaml:"time"`
	Duration  int    `yaml:"duration"`
	Notes     string `yaml:"notes"`
}

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Log activities from a YAML or JSON file",
	Long: `Log every activity listed in a file. Missing category and intensity
default to others and normal. The whole file is validated before anything
is written.

Example file:
  - name: Morning run
    category: fitness
    intensity: intense
    date: 2024-03-01
    time: "07:30"
  - name: Reading
    category: mindset`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp("activity import")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		entries, err := readImportFile(args[0])
		if err != nil {
			return err
		}
		cmds := make([]commands.LogActivityCommand, 0, len(entries))
		for i, e := range entries {
			c := e.command(app)
			if err := app.Service.LogActivity.Validate(c); err != nil {
				return fmt.Errorf("entry %d (%q): %w", i+1, e.Name, err)
			}
			cmds = append(cmds, c)
		}
		if importDryRun {
			fmt.Fprintf(out, "%d activities are valid\n", len(cmds))
			return nil
		}

		total := 0
		for i, c := range cmds {
			result, err := app.Service.LogActivity.Handle(ctx, c)
			if err != nil {
				return fmt.Errorf("entry %d (%q) failed after %d imported: %w", i+1, c.Name, i, err)
			}
			total += result.Points
		}
		fmt.Fprintf(out, "Imported %d activities: %s\n", len(cmds), cli.Good(fmt.Sprintf("+%d points", total)))

		if err := app.DeliverEvents(ctx); err != nil {
			return fmt.Errorf("failed to evaluate achievements: %w", err)
		}
		return nil
	},
}

func readImportFile(path string) ([]importEntry, error) {
	data, err := security.ReadFile(path, 0)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var entries []importEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, errors.New("no activities in file")
	}
	return entries, nil
}

func (e importEntry) command(app *cli.App) commands.LogActivityCommand {
	c := commands.LogActivityCommand{
		UserID:       app.CurrentUserID,
		Name:         e.Name,
		Category:     e.Category,
		Intensity:    e.Intensity,
		Date:         e.Date,
		Time:         e.Time,
		DurationMins: e.Duration,
		Notes:        e.Notes,
	}
	if c.Category == "" {
		c.Category = "others"
	}
	if c.Intensity == "" {
		c.Intensity = "normal"
	}
	return c
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "validate the file without logging anything")
}
