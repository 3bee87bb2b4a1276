// Package cli provides the command-line interface for cypress-report.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/cypress-report/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to cypress-report.yaml (default: ./cypress-report.yaml if present)",
		EnvVars: []string{"CYPRESS_REPORT_CONFIG"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"debug"},
		Usage:   "Enable debug logging",
		EnvVars: []string{"CYPRESS_REPORT_DEBUG"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Also write log output to this file",
		EnvVars: []string{"CYPRESS_REPORT_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "cypress-report",
		Usage:   "Merge Cypress mochawesome results into an HTML report",
		Version: Version,
		Description: `cypress-report merges the per-spec mochawesome JSON files written during
a Cypress run, attaches screenshots to the tests that produced them and
renders a single HTML report. Screenshots and videos are copied next to
the report so it can be published as a static folder.

Examples:
  cypress-report generate
  cypress-report generate --output-dir cypress/reports/html --keep-jsons
  cypress-report --config ci/cypress-report.yaml generate
  cypress-report merge -o merged.json cypress/reports/html/.jsons/*.json`,
		Flags:  GlobalFlags,
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			generateCommand,
			mergeCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv loads environment variables from path if the file exists.
// Variables already set in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func setup(c *cli.Context) error {
	logger.SetNoColor(c.Bool("no-ansi"))
	logger.SetDebug(c.Bool("verbose"))

	if path := c.String("log-file"); path != "" {
		if err := logger.Init(path); err != nil {
			return err
		}
	}
	return nil
}

func teardown(_ *cli.Context) error {
	logger.Close()
	return nil
}
