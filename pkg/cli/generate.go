package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/cypress-report/pkg/config"
	"github.com/devicelab-dev/cypress-report/pkg/core"
	"github.com/devicelab-dev/cypress-report/pkg/generator"
	"github.com/devicelab-dev/cypress-report/pkg/logger"
	"github.com/devicelab-dev/cypress-report/pkg/report"
)

var generateCommand = &cli.Command{
	Name:  "generate",
	Usage: "Merge JSON results, render the HTML report and copy media",
	Description: `Reads every *.json fragment in the JSON directory, merges them, attaches
screenshots and writes <output-dir>/index.html.

Unless screenshots are embedded, the screenshots folder is copied to
<output-dir>/screenshots. The videos folder is copied to <output-dir>/videos
when it exists and videos are not ignored. The JSON directory is removed
afterwards unless --keep-jsons is given.

Diagnostic snapshots of the merged report are written to
cypress-mochawesome/output.json and cypress-mochawesome/output_screenshot.json
below --work-dir.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Report output directory (default: cypress/reports/html)",
			EnvVars: []string{"CYPRESS_REPORT_OUTPUT_DIR"},
		},
		&cli.StringFlag{
			Name:    "json-dir",
			Usage:   "Directory holding the JSON fragments (default: <output-dir>/.jsons)",
			EnvVars: []string{"CYPRESS_REPORT_JSON_DIR"},
		},
		&cli.StringFlag{
			Name:    "screenshots-dir",
			Usage:   "Cypress screenshots folder (default: cypress/screenshots)",
			EnvVars: []string{"CYPRESS_REPORT_SCREENSHOTS_DIR"},
		},
		&cli.StringFlag{
			Name:    "videos-folder",
			Usage:   "Cypress videos folder (default: cypress/videos)",
			EnvVars: []string{"CYPRESS_REPORT_VIDEOS_FOLDER"},
		},
		&cli.BoolFlag{
			Name:    "embedded-screenshots",
			Usage:   "Inline screenshots into the report instead of copying them",
			EnvVars: []string{"CYPRESS_REPORT_EMBEDDED_SCREENSHOTS"},
		},
		&cli.BoolFlag{
			Name:    "ignore-videos",
			Usage:   "Do not copy the videos folder",
			EnvVars: []string{"CYPRESS_REPORT_IGNORE_VIDEOS"},
		},
		&cli.BoolFlag{
			Name:    "keep-jsons",
			Usage:   "Keep the JSON directory after a successful run",
			EnvVars: []string{"CYPRESS_REPORT_KEEP_JSONS"},
		},
		&cli.StringFlag{
			Name:  "report-title",
			Usage: "Title shown on the report page",
		},
		&cli.BoolFlag{
			Name:  "save-json",
			Usage: "Also write the report JSON next to index.html",
		},
		&cli.StringFlag{
			Name:  "work-dir",
			Usage: "Base directory for the cypress-mochawesome snapshots",
			Value: ".",
		},
		&cli.BoolFlag{
			Name:  "no-summary",
			Usage: "Do not print the summary table",
		},
	},
	Action: runGenerate,
}

// overrides are command-line values that replace config file settings.
// nil / empty means "not given".
type overrides struct {
	OutputDir      string
	JSONDir        string
	ScreenshotsDir string
	VideosFolder   string
	ReportTitle    string

	EmbeddedScreenshots *bool
	IgnoreVideos        *bool
	KeepJSONs           *bool
	SaveJSON            *bool
}

func overridesFromContext(c *cli.Context) overrides {
	return overrides{
		OutputDir:           c.String("output-dir"),
		JSONDir:             c.String("json-dir"),
		ScreenshotsDir:      c.String("screenshots-dir"),
		VideosFolder:        c.String("videos-folder"),
		ReportTitle:         c.String("report-title"),
		EmbeddedScreenshots: boolFlag(c, "embedded-screenshots"),
		IgnoreVideos:        boolFlag(c, "ignore-videos"),
		KeepJSONs:           boolFlag(c, "keep-jsons"),
		SaveJSON:            boolFlag(c, "save-json"),
	}
}

func boolFlag(c *cli.Context, name string) *bool {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Bool(name)
	return &v
}

// applyOverrides copies every given override onto cfg.
func applyOverrides(cfg config.Config, o overrides) config.Config {
	if o.OutputDir != "" {
		cfg.OutputDir = o.OutputDir
		cfg.ReporterOptions.ReportDir = o.OutputDir
	}
	if o.JSONDir != "" {
		cfg.JSONDir = o.JSONDir
	}
	if o.ScreenshotsDir != "" {
		cfg.ScreenshotsDir = o.ScreenshotsDir
	}
	if o.VideosFolder != "" {
		cfg.VideosFolder = o.VideosFolder
	}
	if o.ReportTitle != "" {
		cfg.ReporterOptions.ReportTitle = o.ReportTitle
	}
	if o.EmbeddedScreenshots != nil {
		cfg.ReporterOptions.EmbeddedScreenshots = *o.EmbeddedScreenshots
	}
	if o.IgnoreVideos != nil {
		cfg.ReporterOptions.IgnoreVideos = *o.IgnoreVideos
	}
	if o.KeepJSONs != nil {
		remove := !*o.KeepJSONs
		cfg.RemoveJSONsFolderAfterMerge = &remove
	}
	if o.SaveJSON != nil {
		cfg.ReporterOptions.SaveJSON = *o.SaveJSON
	}
	return cfg
}

// loadConfig reads the config file named by --config, or the default file
// in the working directory, and resolves it.
func loadConfig(c *cli.Context, o overrides) (config.Config, error) {
	var (
		file *config.Config
		err  error
	)
	if path := c.String("config"); path != "" {
		file, err = config.Load(path)
	} else {
		file, err = config.LoadFromDir(".")
	}
	if err != nil {
		return config.Config{}, core.NewReportError(core.StageConfig, c.String("config"), err)
	}

	cfg, err := config.Resolve(applyOverrides(*file, o))
	if err != nil {
		return config.Config{}, core.NewReportError(core.StageConfig, "", err)
	}
	return cfg, nil
}

func runGenerate(c *cli.Context) error {
	cfg, err := loadConfig(c, overridesFromContext(c))
	if err != nil {
		return err
	}

	gen := generator.New(cfg, generator.Options{WorkDir: c.String("work-dir")})
	doc, err := gen.Generate(c.Context)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if !c.Bool("no-summary") {
		// Mirrored into --log-file when one is open.
		out := io.MultiWriter(c.App.Writer, logger.GetWriter())
		fmt.Fprint(out, report.FormatSummary(doc))
	}
	return nil
}
