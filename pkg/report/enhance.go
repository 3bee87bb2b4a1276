package report

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/acarl005/stripansi"

	"github.com/devicelab-dev/cypress-report/pkg/core"
	"github.com/devicelab-dev/cypress-report/pkg/logger"
)

// ScreenshotsURLPrefix is where screenshots live relative to the HTML report.
const ScreenshotsURLPrefix = "screenshots"

// EnhanceOptions controls how screenshots are attached to tests.
type EnhanceOptions struct {
	ScreenshotsDir string  // Directory Cypress wrote screenshots into
	Embedded       bool    // Inline screenshots as data: URIs instead of linking
	Matcher        Matcher // Defaults to CypressMatcher
}

// Enhance attaches matching screenshots to tests and cleans terminal colour
// codes out of failure messages. The document is modified in place.
//
// Linked screenshots are referenced as screenshots/<path below ScreenshotsDir>,
// which is where the media copy places them next to the HTML report.
// Tests without matches are left untouched.
func Enhance(doc *Document, opts EnhanceOptions) {
	if doc == nil {
		return
	}
	matcher := opts.Matcher
	if matcher == nil {
		matcher = CypressMatcher{}
	}

	files := listScreenshots(opts.ScreenshotsDir)
	attached := 0

	doc.Walk(func(ref TestRef) {
		t := ref.Test
		t.Err.Message = stripansi.Strip(t.Err.Message)
		t.Err.EStack = stripansi.Strip(t.Err.EStack)
		t.Err.Diff = stripansi.Strip(t.Err.Diff)

		if len(files) == 0 {
			return
		}
		for _, rel := range matcher.Match(ref, files) {
			value, ok := screenshotValue(opts, rel)
			if !ok || t.Context.Has(ContextTitleScreenshot, value) {
				continue
			}
			t.Context = append(t.Context, ContextEntry{Title: ContextTitleScreenshot, Value: value})
			attached++
		}
	})

	logger.Debug("Attached %d screenshots from %d files", attached, len(files))
}

func screenshotValue(opts EnhanceOptions, rel string) (string, bool) {
	if !opts.Embedded {
		return path.Join(ScreenshotsURLPrefix, rel), true
	}

	uri, err := core.LoadAsDataURI(filepath.Join(opts.ScreenshotsDir, filepath.FromSlash(rel)))
	if err != nil {
		logger.Warn("Cannot embed screenshot %s: %v", rel, err)
		return "", false
	}
	return uri, true
}

// listScreenshots returns image files below dir as sorted slash paths.
// A missing directory yields no files.
func listScreenshots(dir string) []string {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); err != nil {
		logger.Debug("Screenshots folder %q not found, nothing to attach", dir)
		return nil
	}

	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !core.IsImage(p) {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		logger.Warn("Cannot list screenshots in %q: %v", dir, err)
	}
	return files
}
