// Package config handles configuration for cypress-report.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/cypress-report/pkg/core"
)

// Defaults follow the Cypress project layout.
const (
	DefaultOutputDir      = "cypress/reports/html"
	DefaultScreenshotsDir = "cypress/screenshots"
	DefaultVideosFolder   = "cypress/videos"
	DefaultJSONDirName    = ".jsons"
)

// Config file names tried by LoadFromDir, in order.
var configFileNames = []string{"cypress-report.yaml", "cypress-report.yml"}

var (
	ErrMissingOutputDir = errors.New("output directory is not set")
	ErrMissingJSONDir   = errors.New("json directory is not set")
	ErrOverlappingDirs  = errors.New("directories overlap")
)

// Config represents the reporter configuration (cypress-report.yaml).
// Resolve it once per run and pass it by value.
type Config struct {
	OutputDir       string          `yaml:"outputDir"`
	ReporterOptions ReporterOptions `yaml:"reporterOptions"`

	// Media and fragment locations
	ScreenshotsDir string `yaml:"screenshotsDir"`
	VideosFolder   string `yaml:"videosFolder"`
	JSONDir        string `yaml:"jsonDir"`

	// Remove JSONDir after a successful run (default: true)
	RemoveJSONsFolderAfterMerge *bool `yaml:"removeJsonsFolderAfterMerge"`
}

// ReporterOptions is the options bag forwarded to the HTML renderer.
// Unknown keys are kept in Extra and passed through untouched.
type ReporterOptions struct {
	ReportDir       string `yaml:"reportDir"`
	ReportFilename  string `yaml:"reportFilename"`
	ReportTitle     string `yaml:"reportTitle"`
	ReportPageTitle string `yaml:"reportPageTitle"`
	Timestamp       string `yaml:"timestamp"`

	EmbeddedScreenshots bool `yaml:"embeddedScreenshots"`
	IgnoreVideos        bool `yaml:"ignoreVideos"`
	InlineAssets        bool `yaml:"inlineAssets"`
	Charts              bool `yaml:"charts"`
	SaveJSON            bool `yaml:"saveJson"`

	// Tri-state flags that default to true
	SaveHTML    *bool `yaml:"saveHtml"`
	Overwrite   *bool `yaml:"overwrite"`
	ShowPassed  *bool `yaml:"showPassed"`
	ShowFailed  *bool `yaml:"showFailed"`
	ShowPending *bool `yaml:"showPending"`
	ShowSkipped *bool `yaml:"showSkipped"`
	Code        *bool `yaml:"code"`

	Extra map[string]interface{} `yaml:",inline"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadFromDir looks for cypress-report.yaml or cypress-report.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range configFileNames {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, return empty config
	return &Config{}, nil
}

// Resolve fills in defaults and validates the directory layout.
//
// outputDir comes from reporterOptions.reportDir, then outputDir, then the
// Cypress default. The renderer always writes into outputDir. jsonDir
// defaults to <outputDir>/.jsons.
func Resolve(cfg Config) (Config, error) {
	out := cfg

	switch {
	case out.ReporterOptions.ReportDir != "":
		out.OutputDir = out.ReporterOptions.ReportDir
	case out.OutputDir == "":
		out.OutputDir = DefaultOutputDir
	}
	out.ReporterOptions.ReportDir = out.OutputDir

	if out.JSONDir == "" {
		out.JSONDir = filepath.Join(out.OutputDir, DefaultJSONDirName)
	}
	if out.ScreenshotsDir == "" {
		out.ScreenshotsDir = DefaultScreenshotsDir
	}
	if out.VideosFolder == "" {
		out.VideosFolder = DefaultVideosFolder
	}
	if out.RemoveJSONsFolderAfterMerge == nil {
		remove := true
		out.RemoveJSONsFolderAfterMerge = &remove
	}

	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// Validate checks that required directories are set and that the
// directories touched by independent pipeline steps stay disjoint.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return ErrMissingOutputDir
	}
	if c.JSONDir == "" {
		return ErrMissingJSONDir
	}

	jsonDir := filepath.Clean(c.JSONDir)
	checks := []struct {
		name string
		path string
	}{
		{"outputDir", c.OutputDir},
		{"screenshotsDir", c.ScreenshotsDir},
		{"videosFolder", c.VideosFolder},
		{"screenshots destination", c.ScreenshotsDest()},
		{"videos destination", c.VideosDest()},
	}
	for _, chk := range checks {
		if chk.path != "" && filepath.Clean(chk.path) == jsonDir {
			return fmt.Errorf("%w: jsonDir and %s are both %q", ErrOverlappingDirs, chk.name, c.JSONDir)
		}
	}

	// A media folder may be its own destination (the copy is skipped), but
	// neither may contain the other.
	media := []struct {
		name string
		src  string
		dst  string
	}{
		{"screenshotsDir", c.ScreenshotsDir, c.ScreenshotsDest()},
		{"videosFolder", c.VideosFolder, c.VideosDest()},
	}
	for _, m := range media {
		if m.src == "" {
			continue
		}
		if core.IsSubdir(m.src, m.dst) || core.IsSubdir(m.dst, m.src) {
			return fmt.Errorf("%w: %s %q and its copy destination %q are nested", ErrOverlappingDirs, m.name, m.src, m.dst)
		}
	}

	return nil
}
