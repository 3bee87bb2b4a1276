package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devicelab-dev/cypress-report/pkg/core"
)

// Default renderer settings.
const (
	DefaultReportFilename = "mochawesome"
	DefaultReportTitle    = "Cypress Test Report"
	timestampISO          = "2006-01-02T150405"
)

// RenderOptions contains configuration for HTML report generation.
type RenderOptions struct {
	ReportDir       string // Directory the report is written into
	ReportFilename  string // Base file name; .html/.json extensions are stripped
	ReportTitle     string // Heading shown on the page
	ReportPageTitle string // <title> of the page
	Timestamp       string // Append a timestamp to the file name: "isoDateTime", "true" or a Go layout

	SaveHTML  bool // Write the HTML file
	SaveJSON  bool // Write the document next to the HTML file
	Overwrite bool // Replace existing files instead of adding a numeric suffix

	ShowPassed   bool
	ShowFailed   bool
	ShowPending  bool
	ShowSkipped  bool
	Code         bool // Show test source
	Charts       bool // Show the pass/fail bar
	InlineAssets bool // Embed linked screenshots as base64 (larger file, but portable)

	Now func() time.Time // Clock for timestamps, defaults to time.Now
}

// DefaultRenderOptions returns the renderer defaults.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		ReportDir:      "mochawesome-report",
		ReportFilename: DefaultReportFilename,
		ReportTitle:    DefaultReportTitle,
		SaveHTML:       true,
		Overwrite:      true,
		ShowPassed:     true,
		ShowFailed:     true,
		ShowPending:    true,
		ShowSkipped:    true,
		Code:           true,
	}
}

// Render writes the document as an HTML page (and optionally JSON).
// It returns [htmlPath, jsonPath]; an entry is empty if that file was not written.
func Render(doc *Document, opts RenderOptions) ([]string, error) {
	if doc == nil {
		return nil, fmt.Errorf("render: nil document")
	}
	if opts.ReportDir == "" {
		opts.ReportDir = "."
	}
	if opts.ReportTitle == "" {
		opts.ReportTitle = DefaultReportTitle
	}
	if opts.ReportPageTitle == "" {
		opts.ReportPageTitle = opts.ReportTitle
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := ensureDir(opts.ReportDir); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	base := reportBaseName(opts)
	paths := []string{"", ""}

	if opts.SaveHTML {
		htmlPath := filepath.Join(opts.ReportDir, base+".html")
		html, err := renderHTML(buildHTMLData(doc, opts))
		if err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
		if err := atomicWriteFile(htmlPath, []byte(html)); err != nil {
			return nil, fmt.Errorf("write html: %w", err)
		}
		paths[0] = htmlPath
	}

	if opts.SaveJSON {
		jsonPath := filepath.Join(opts.ReportDir, base+".json")
		if err := atomicWriteJSON(jsonPath, doc); err != nil {
			return nil, fmt.Errorf("write json: %w", err)
		}
		paths[1] = jsonPath
	}

	return paths, nil
}

// reportBaseName builds the file name without extension, applying the
// timestamp and, unless overwriting, a numeric suffix to avoid clobbering.
func reportBaseName(opts RenderOptions) string {
	base := opts.ReportFilename
	if base == "" {
		base = DefaultReportFilename
	}
	for _, ext := range []string{".html", ".json"} {
		base = strings.TrimSuffix(base, ext)
	}

	switch opts.Timestamp {
	case "", "false":
	case "true", "isoDateTime":
		base += "_" + opts.Now().Format(timestampISO)
	default:
		base += "_" + opts.Now().Format(opts.Timestamp)
	}

	if opts.Overwrite {
		return base
	}

	candidate := base
	for i := 1; exists(filepath.Join(opts.ReportDir, candidate+".html")) || exists(filepath.Join(opts.ReportDir, candidate+".json")); i++ {
		candidate = fmt.Sprintf("%s_%03d", base, i)
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// HTMLData contains all data needed for the HTML template.
type HTMLData struct {
	Title       string
	PageTitle   string
	GeneratedAt string
	Stats       Stats
	Duration    string
	Charts      bool
	ShowCode    bool
	PassPct     float64
	FailPct     float64
	PendingPct  float64
	Specs       []SuiteHTMLData
}

// SuiteHTMLData contains suite data formatted for HTML.
type SuiteHTMLData struct {
	UUID        string
	Title       string
	File        string
	StatusClass string
	DurationStr string
	Counts      Counts
	Tests       []TestHTMLData
	Suites      []SuiteHTMLData
}

// TestHTMLData contains test data formatted for HTML.
type TestHTMLData struct {
	UUID        string
	Title       string
	StatusClass string
	DurationStr string
	Speed       string
	Code        string
	Err         TestError
	Context     []ContextHTMLData
}

// ContextHTMLData is one rendered context entry.
type ContextHTMLData struct {
	Title string
	Kind  string // image, video, link, text
	URL   template.URL
	Text  string
}

func buildHTMLData(doc *Document, opts RenderOptions) HTMLData {
	data := HTMLData{
		Title:       opts.ReportTitle,
		PageTitle:   opts.ReportPageTitle,
		GeneratedAt: opts.Now().Format("2006-01-02 15:04:05"),
		Stats:       doc.Stats,
		Duration:    formatDuration(doc.Stats.Duration),
		Charts:      opts.Charts,
		ShowCode:    opts.Code,
	}

	if ran := doc.Stats.Passes + doc.Stats.Failures + doc.Stats.Pending; ran > 0 {
		data.PassPct = float64(doc.Stats.Passes) / float64(ran) * 100
		data.FailPct = float64(doc.Stats.Failures) / float64(ran) * 100
		data.PendingPct = float64(doc.Stats.Pending) / float64(ran) * 100
	}

	for _, root := range doc.Results {
		if root == nil {
			continue
		}
		spec := buildSuiteData(root, opts)
		if spec.Title == "" {
			spec.Title = root.File
		}
		if len(spec.Tests) == 0 && len(spec.Suites) == 0 {
			continue
		}
		data.Specs = append(data.Specs, spec)
	}

	return data
}

func buildSuiteData(s *Suite, opts RenderOptions) SuiteHTMLData {
	counts := CountSuite(s)
	out := SuiteHTMLData{
		UUID:        s.UUID,
		Title:       s.Title,
		File:        s.File,
		StatusClass: suiteStatusClass(counts),
		DurationStr: formatDuration(s.Duration),
		Counts:      counts,
	}

	for _, t := range s.Tests {
		if t == nil || !showTest(t, opts) {
			continue
		}
		out.Tests = append(out.Tests, buildTestData(t, opts))
	}

	for _, child := range s.Suites {
		if child == nil {
			continue
		}
		cd := buildSuiteData(child, opts)
		if len(cd.Tests) == 0 && len(cd.Suites) == 0 {
			continue
		}
		out.Suites = append(out.Suites, cd)
	}

	return out
}

func buildTestData(t *Test, opts RenderOptions) TestHTMLData {
	td := TestHTMLData{
		UUID:        t.UUID,
		Title:       t.Title,
		StatusClass: testStatusClass(t),
		DurationStr: formatDuration(t.Duration),
		Speed:       t.Speed,
		Err:         t.Err,
	}
	if opts.Code {
		td.Code = t.Code
	}
	for _, e := range t.Context {
		td.Context = append(td.Context, buildContextData(e, opts))
	}
	return td
}

func buildContextData(e ContextEntry, opts RenderOptions) ContextHTMLData {
	cd := ContextHTMLData{Title: e.Title}

	s, ok := e.StringValue()
	if !ok {
		cd.Kind = "text"
		cd.Text = fmt.Sprintf("%v", e.Value)
		return cd
	}

	switch {
	case strings.HasPrefix(s, "data:image/"):
		cd.Kind = "image"
		cd.URL = template.URL(s) //#nosec G203 -- data URI produced from local screenshots
	case core.IsImage(s):
		cd.Kind = "image"
		cd.URL = template.URL(assetURL(s, opts)) //#nosec G203 -- relative media path
	case core.IsVideo(s):
		cd.Kind = "video"
		cd.URL = template.URL(s) //#nosec G203 -- relative media path
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		cd.Kind = "link"
		cd.URL = template.URL(s) //#nosec G203 -- link added by the test itself
	default:
		cd.Kind = "text"
	}
	cd.Text = s
	return cd
}

// assetURL returns a relative image path, or its base64 form when assets are inlined.
func assetURL(rel string, opts RenderOptions) string {
	if !opts.InlineAssets || strings.Contains(rel, "://") {
		return rel
	}
	uri, err := core.LoadAsDataURI(filepath.Join(opts.ReportDir, filepath.FromSlash(rel)))
	if err != nil {
		return rel
	}
	return uri
}

func showTest(t *Test, opts RenderOptions) bool {
	switch {
	case t.IsFailed():
		return opts.ShowFailed
	case t.IsPassed():
		return opts.ShowPassed
	case t.IsPending():
		return opts.ShowPending
	case t.IsSkipped():
		return opts.ShowSkipped
	default:
		return true
	}
}

func testStatusClass(t *Test) string {
	switch {
	case t.IsFailed():
		return "failed"
	case t.IsPassed():
		return "passed"
	case t.IsPending():
		return "pending"
	case t.IsSkipped():
		return "skipped"
	default:
		return "other"
	}
}

func suiteStatusClass(c Counts) string {
	switch {
	case c.Failures > 0:
		return "failed"
	case c.Passes > 0:
		return "passed"
	case c.Pending > 0:
		return "pending"
	default:
		return "skipped"
	}
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", ms)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

func renderHTML(data HTMLData) (string, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.PageTitle}}</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f9fafb;
            --text-primary: #000000;
            --text-secondary: rgb(75, 85, 99);
            --border-color: #e5e7eb;
            --passed: #22c55e;
            --failed: #ef4444;
            --failed-bg: rgba(239, 68, 68, 0.08);
            --pending: #06b6d4;
            --skipped: #eab308;
            --other: #6b7280;
        }

        * { box-sizing: border-box; margin: 0; padding: 0; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.5;
        }

        .header {
            background: var(--bg-secondary);
            border-bottom: 1px solid var(--border-color);
            padding: 16px 24px;
        }

        .header-title-main { font-size: 18px; font-weight: 600; }
        .header-title-sub { font-size: 12px; color: var(--text-secondary); }

        .dashboard { display: flex; gap: 24px; flex-wrap: wrap; margin-top: 12px; }
        .stat { display: flex; flex-direction: column; }
        .stat-value { font-size: 20px; font-weight: 600; }
        .stat-label { font-size: 12px; color: var(--text-secondary); }
        .stat.passed .stat-value { color: var(--passed); }
        .stat.failed .stat-value { color: var(--failed); }
        .stat.pending .stat-value { color: var(--pending); }
        .stat.skipped .stat-value { color: var(--skipped); }

        .chart { display: flex; height: 8px; border-radius: 4px; overflow: hidden; margin-top: 12px; background: var(--border-color); }
        .chart .passed { background: var(--passed); }
        .chart .failed { background: var(--failed); }
        .chart .pending { background: var(--pending); }

        .content { padding: 16px 24px; }

        .spec { border: 1px solid var(--border-color); border-radius: 6px; margin-bottom: 16px; }
        .spec-header { padding: 10px 14px; background: var(--bg-secondary); border-bottom: 1px solid var(--border-color); }
        .spec-file { font-size: 12px; color: var(--text-secondary); }

        .suite { padding: 8px 14px; }
        .suite .suite { border-left: 2px solid var(--border-color); margin-left: 4px; }
        .suite-title { font-weight: 600; }

        .test { padding: 6px 10px; margin: 4px 0; border-left: 3px solid var(--other); }
        .test.passed { border-left-color: var(--passed); }
        .test.failed { border-left-color: var(--failed); background: var(--failed-bg); }
        .test.pending { border-left-color: var(--pending); }
        .test.skipped { border-left-color: var(--skipped); }
        .test-title { display: flex; justify-content: space-between; }
        .test-duration { font-size: 12px; color: var(--text-secondary); }

        .error { margin-top: 6px; color: var(--failed); font-family: monospace; white-space: pre-wrap; font-size: 12px; }
        pre.code { margin-top: 6px; padding: 8px; background: var(--bg-secondary); font-size: 12px; overflow-x: auto; }

        .context { margin-top: 6px; }
        .context-title { font-size: 12px; color: var(--text-secondary); }
        .context img { max-width: 100%; border: 1px solid var(--border-color); margin-top: 4px; }
        .context video { max-width: 100%; margin-top: 4px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="header-title">
            <div class="header-title-main">{{.Title}}</div>
            <div class="header-title-sub">{{.GeneratedAt}} &middot; {{.Duration}}</div>
        </div>
        <div class="dashboard">
            <div class="stat"><span class="stat-value">{{.Stats.Suites}}</span><span class="stat-label">suites</span></div>
            <div class="stat"><span class="stat-value">{{.Stats.Tests}}</span><span class="stat-label">tests</span></div>
            <div class="stat passed"><span class="stat-value">{{.Stats.Passes}}</span><span class="stat-label">passed</span></div>
            <div class="stat failed"><span class="stat-value">{{.Stats.Failures}}</span><span class="stat-label">failed</span></div>
            <div class="stat pending"><span class="stat-value">{{.Stats.Pending}}</span><span class="stat-label">pending</span></div>
            {{if .Stats.HasSkipped}}<div class="stat skipped"><span class="stat-value">{{.Stats.Skipped}}</span><span class="stat-label">skipped</span></div>{{end}}
            <div class="stat"><span class="stat-value">{{printf "%.2f" .Stats.PassPercent}}%</span><span class="stat-label">pass rate</span></div>
        </div>
        {{if .Charts}}
        <div class="chart">
            <div class="passed" style="width: {{printf "%.1f" .PassPct}}%"></div>
            <div class="failed" style="width: {{printf "%.1f" .FailPct}}%"></div>
            <div class="pending" style="width: {{printf "%.1f" .PendingPct}}%"></div>
        </div>
        {{end}}
    </div>

    <div class="content">
        {{range .Specs}}
        <div class="spec {{.StatusClass}}" id="{{.UUID}}">
            <div class="spec-header">
                <div class="suite-title">{{.Title}}</div>
                <div class="spec-file">{{.File}} &middot; {{.Counts.Passes}} passed, {{.Counts.Failures}} failed &middot; {{.DurationStr}}</div>
            </div>
            {{template "suite" .}}
        </div>
        {{end}}
    </div>
</body>
</html>
{{define "suite"}}
<div class="suite" id="suite-{{.UUID}}">
    {{range .Tests}}
    <div class="test {{.StatusClass}}" id="{{.UUID}}">
        <div class="test-title">
            <span>{{.Title}}</span>
            <span class="test-duration">{{.DurationStr}}</span>
        </div>
        {{if .Err.Message}}<div class="error">{{.Err.Message}}</div>{{end}}
        {{if .Err.EStack}}<div class="error">{{.Err.EStack}}</div>{{end}}
        {{if .Err.Diff}}<div class="error">{{.Err.Diff}}</div>{{end}}
        {{if .Code}}<pre class="code">{{.Code}}</pre>{{end}}
        {{range .Context}}
        <div class="context">
            {{if .Title}}<div class="context-title">{{.Title}}</div>{{end}}
            {{if eq .Kind "image"}}<a href="{{.URL}}" target="_blank"><img src="{{.URL}}" alt="{{.Title}}"></a>
            {{else if eq .Kind "video"}}<video controls src="{{.URL}}"></video>
            {{else if eq .Kind "link"}}<a href="{{.URL}}" target="_blank">{{.Text}}</a>
            {{else}}<div>{{.Text}}</div>{{end}}
        </div>
        {{end}}
    </div>
    {{end}}
    {{range .Suites}}
    <div class="suite-title">{{.Title}}</div>
    {{template "suite" .}}
    {{end}}
</div>
{{end}}
`
