// Package generator runs the post-test report pipeline:
// merge fragments, attach screenshots, render HTML, relocate media, clean up.
package generator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/devicelab-dev/cypress-report/pkg/config"
	"github.com/devicelab-dev/cypress-report/pkg/core"
	"github.com/devicelab-dev/cypress-report/pkg/logger"
	"github.com/devicelab-dev/cypress-report/pkg/media"
	"github.com/devicelab-dev/cypress-report/pkg/report"
)

// Diagnostic snapshots are written relative to the working directory,
// independent of the configured output directory.
const (
	SnapshotDir      = "cypress-mochawesome"
	MergedSnapshot   = "output.json"
	EnhancedSnapshot = "output_screenshot.json"
	ReportFilename   = "index.html"
)

// Options tunes a Generator. The zero value is ready to use.
type Options struct {
	WorkDir   string                  // Base for the snapshot directory (default: process working directory)
	Matcher   report.Matcher          // Screenshot matcher (default: report.CypressMatcher)
	RemoveDir func(path string) error // Removes the JSON directory after success (default: os.RemoveAll)
}

// Result is the outcome of the merge/enhance/render task.
type Result struct {
	HTMLPath string
	Report   *report.Document
}

// Generator produces the HTML report for one resolved configuration.
type Generator struct {
	cfg  config.Config
	opts Options
}

// New creates a Generator. cfg should already be resolved.
func New(cfg config.Config, opts Options) *Generator {
	return &Generator{cfg: cfg, opts: opts}
}

// Generate runs the pipeline for cfg with default options.
func Generate(ctx context.Context, cfg config.Config) (*report.Document, error) {
	return New(cfg, Options{}).Generate(ctx)
}

// Generate merges, enhances and renders the report while copying media
// folders concurrently, then removes the JSON fragment directory if
// configured. Any failing task fails the whole run with that task's error;
// tasks already started are allowed to finish.
func (g *Generator) Generate(ctx context.Context) (*report.Document, error) {
	logger.Info("Start generate report process")

	cfg := g.cfg
	opts := cfg.ReporterOptions

	var (
		eg     errgroup.Group
		result Result
	)

	eg.Go(func() error {
		var err error
		result, err = g.MergeAndCreate(ctx)
		return err
	})

	if !opts.EmbeddedScreenshots {
		eg.Go(func() error {
			return copyMedia(ctx, cfg.ScreenshotsDir, cfg.ScreenshotsDest())
		})
	}

	if media.Exists(cfg.VideosFolder) && !opts.IgnoreVideos {
		eg.Go(func() error {
			return copyMedia(ctx, cfg.VideosFolder, cfg.VideosDest())
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logger.Info("HTML report successfully created!")
	logger.Info("%s", result.HTMLPath)

	if cfg.RemoveJSONs() {
		logger.Debug("Remove json folder %q", cfg.JSONDir)
		remove := g.opts.RemoveDir
		if remove == nil {
			remove = os.RemoveAll
		}
		if err := remove(cfg.JSONDir); err != nil {
			return nil, core.NewReportError(core.StageCleanup, cfg.JSONDir, err)
		}
	}

	return result.Report, nil
}

// MergeAndCreate merges the fragments in the JSON directory, writes the
// pre- and post-enhancement snapshots, attaches screenshots and renders
// index.html into the output directory.
func (g *Generator) MergeAndCreate(ctx context.Context) (Result, error) {
	cfg := g.cfg

	logger.Info("Read and merge jsons from %q", cfg.JSONDir)
	doc, err := report.MergeFiles(ctx, report.FragmentPattern(cfg.JSONDir))
	if err != nil {
		return Result{}, core.NewReportError(core.StageMerge, cfg.JSONDir, err)
	}

	if err := g.writeSnapshot(MergedSnapshot, doc); err != nil {
		return Result{}, err
	}
	logger.Info("JSON data is saved.")
	debugDump("report before enhance", doc)

	logger.Info("Enhance report")
	report.Enhance(doc, report.EnhanceOptions{
		ScreenshotsDir: cfg.ScreenshotsDir,
		Embedded:       cfg.ReporterOptions.EmbeddedScreenshots,
		Matcher:        g.opts.Matcher,
	})
	debugDump("report after enhance", doc)

	if err := g.writeSnapshot(EnhancedSnapshot, doc); err != nil {
		return Result{}, err
	}
	logger.Info("JSON data with screenshot is saved.")

	logger.Info("Create HTML report")
	paths, err := report.Render(doc, renderOptions(cfg))
	if err != nil {
		return Result{}, core.NewReportError(core.StageRender, cfg.OutputDir, err)
	}
	logger.Debug("HTML result: %v", paths)

	return Result{HTMLPath: paths[0], Report: doc}, nil
}

// SnapshotPath returns where a diagnostic snapshot is written.
func (g *Generator) SnapshotPath(name string) string {
	return filepath.Join(g.opts.WorkDir, SnapshotDir, name)
}

func (g *Generator) writeSnapshot(name string, doc *report.Document) error {
	path := g.SnapshotPath(name)
	if err := report.WriteJSON(path, doc); err != nil {
		return core.NewReportError(core.StageSnapshot, path, err)
	}
	return nil
}

func copyMedia(ctx context.Context, src, dst string) error {
	return core.NewReportError(core.StageCopy, src, media.CopyDir(ctx, src, dst))
}

// renderOptions maps reporter options onto the renderer, forcing the
// output directory and index.html as the file name.
func renderOptions(cfg config.Config) report.RenderOptions {
	ro := cfg.ReporterOptions
	opts := report.DefaultRenderOptions()

	opts.ReportDir = cfg.OutputDir
	opts.ReportFilename = ReportFilename
	if ro.ReportTitle != "" {
		opts.ReportTitle = ro.ReportTitle
	}
	opts.ReportPageTitle = ro.ReportPageTitle
	opts.Timestamp = ro.Timestamp
	opts.SaveJSON = ro.SaveJSON
	opts.Charts = ro.Charts
	opts.InlineAssets = ro.InlineAssets

	opts.SaveHTML = config.BoolValue(ro.SaveHTML, opts.SaveHTML)
	opts.Overwrite = config.BoolValue(ro.Overwrite, opts.Overwrite)
	opts.ShowPassed = config.BoolValue(ro.ShowPassed, opts.ShowPassed)
	opts.ShowFailed = config.BoolValue(ro.ShowFailed, opts.ShowFailed)
	opts.ShowPending = config.BoolValue(ro.ShowPending, opts.ShowPending)
	opts.ShowSkipped = config.BoolValue(ro.ShowSkipped, opts.ShowSkipped)
	opts.Code = config.BoolValue(ro.Code, opts.Code)

	return opts
}

func debugDump(label string, doc *report.Document) {
	if !logger.DebugEnabled() {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		logger.Debug("%s: %v", label, err)
		return
	}
	logger.Debug("%s: %s", label, data)
}
