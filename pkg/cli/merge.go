package cli

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/cypress-report/pkg/core"
	"github.com/devicelab-dev/cypress-report/pkg/logger"
	"github.com/devicelab-dev/cypress-report/pkg/report"
)

var mergeCommand = &cli.Command{
	Name:      "merge",
	Usage:     "Merge mochawesome JSON files without rendering",
	ArgsUsage: "[glob]...",
	Description: `Merges every JSON file matching the given globs into one mochawesome
report. Without arguments, the configured JSON directory is used.

Examples:
  cypress-report merge
  cypress-report merge -o merged.json "cypress/results/*.json"`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the merged report to this file (default: stdout)",
		},
	},
	Action: runMerge,
}

func runMerge(c *cli.Context) error {
	patterns := c.Args().Slice()
	if len(patterns) == 0 {
		cfg, err := loadConfig(c, overrides{})
		if err != nil {
			return err
		}
		patterns = []string{report.FragmentPattern(cfg.JSONDir)}
	}

	doc, err := report.MergeFiles(c.Context, patterns...)
	if err != nil {
		return core.NewReportError(core.StageMerge, "", err)
	}

	if out := c.String("output"); out != "" {
		if err := report.WriteJSON(out, doc); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		logger.Info("Merged %d results into %s", len(doc.Results), out)
		return nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
