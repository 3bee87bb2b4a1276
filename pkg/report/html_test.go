package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func renderFixture() *Document {
	doc := Merge(
		specDoc("cypress/e2e/login.cy.js", "Login",
			passed("logs in with valid user", 1200),
			failed("rejects bad password", "expected 401 to equal 200", 300),
		),
		specDoc("cypress/e2e/cart.cy.js", "Cart", pending("applies coupon")),
	)
	doc.Results[0].Suites[0].Tests[1].Context = Context{
		{Title: ContextTitleScreenshot, Value: "screenshots/login.cy.js/Login -- rejects bad password (failed).png"},
		{Title: "docs", Value: "https://example.com/login"},
	}
	return doc
}

func TestRender(t *testing.T) {
	dir := t.TempDir()

	opts := DefaultRenderOptions()
	opts.ReportDir = dir
	opts.ReportFilename = "index.html"
	opts.ReportTitle = "Nightly Run"

	paths, err := Render(renderFixture(), opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if paths[0] != filepath.Join(dir, "index.html") {
		t.Errorf("html path = %q", paths[0])
	}
	if paths[1] != "" {
		t.Errorf("json path = %q, want none", paths[1])
	}

	html := readString(t, paths[0])
	checks := []string{
		"<!DOCTYPE html>",
		"<title>Nightly Run</title>",
		"cypress/e2e/login.cy.js",
		"logs in with valid user",
		"rejects bad password",
		"expected 401 to equal 200",
		"applies coupon",
		`src="screenshots/login.cy.js/`,
		`href="https://example.com/login"`,
	}
	for _, check := range checks {
		if !strings.Contains(html, check) {
			t.Errorf("HTML missing expected content: %s", check)
		}
	}
}

func TestRender_NoOverwrite(t *testing.T) {
	dir := t.TempDir()

	opts := DefaultRenderOptions()
	opts.ReportDir = dir
	opts.Overwrite = false

	first, err := Render(renderFixture(), opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Render(renderFixture(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if filepath.Base(first[0]) != "mochawesome.html" {
		t.Errorf("first = %q", first[0])
	}
	if filepath.Base(second[0]) != "mochawesome_001.html" {
		t.Errorf("second = %q", second[0])
	}
}

func TestRender_Timestamp(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		timestamp string
		want      string
	}{
		{"", "report.html"},
		{"false", "report.html"},
		{"isoDateTime", "report_2024-01-02T030405.html"},
		{"2006-01-02", "report_2024-01-02.html"},
	}
	for _, tt := range tests {
		opts := DefaultRenderOptions()
		opts.ReportDir = dir
		opts.ReportFilename = "report"
		opts.Timestamp = tt.timestamp
		opts.Now = func() time.Time { return now }

		paths, err := Render(renderFixture(), opts)
		if err != nil {
			t.Fatalf("Render(%q) error = %v", tt.timestamp, err)
		}
		if got := filepath.Base(paths[0]); got != tt.want {
			t.Errorf("timestamp %q: file = %q, want %q", tt.timestamp, got, tt.want)
		}
	}
}

func TestRender_Filters(t *testing.T) {
	dir := t.TempDir()

	opts := DefaultRenderOptions()
	opts.ReportDir = dir
	opts.ShowPassed = false
	opts.ShowPending = false

	paths, err := Render(renderFixture(), opts)
	if err != nil {
		t.Fatal(err)
	}
	html := readString(t, paths[0])

	if strings.Contains(html, "logs in with valid user") {
		t.Error("passed test should be hidden")
	}
	if strings.Contains(html, "applies coupon") {
		t.Error("pending test should be hidden")
	}
	if !strings.Contains(html, "rejects bad password") {
		t.Error("failed test should be shown")
	}
}

func TestRender_SaveJSON(t *testing.T) {
	dir := t.TempDir()

	opts := DefaultRenderOptions()
	opts.ReportDir = dir
	opts.SaveHTML = false
	opts.SaveJSON = true

	paths, err := Render(renderFixture(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if paths[0] != "" {
		t.Errorf("html path = %q, want none", paths[0])
	}
	if _, err := os.Stat(filepath.Join(dir, "mochawesome.html")); !os.IsNotExist(err) {
		t.Error("html written although SaveHTML is false")
	}

	doc, err := ReadFragment(paths[1])
	if err != nil {
		t.Fatalf("ReadFragment() error = %v", err)
	}
	if len(doc.Results) != 2 {
		t.Errorf("results = %d, want 2", len(doc.Results))
	}
	if !doc.Results[0].Suites[0].Tests[1].Context.Has(ContextTitleScreenshot,
		"screenshots/login.cy.js/Login -- rejects bad password (failed).png") {
		t.Error("context lost in saved JSON")
	}
}

func TestRender_InlineAssets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "screenshots", "login.cy.js", "Login -- rejects bad password (failed).png"), pngBytes)

	opts := DefaultRenderOptions()
	opts.ReportDir = dir
	opts.InlineAssets = true

	paths, err := Render(renderFixture(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if html := readString(t, paths[0]); !strings.Contains(html, "data:image/png;base64,") {
		t.Error("screenshot not inlined")
	}
}

func TestRender_NilDocument(t *testing.T) {
	if _, err := Render(nil, DefaultRenderOptions()); err == nil {
		t.Error("expected error for nil document")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms       int64
		expected string
	}{
		{0, "0ms"},
		{500, "500ms"},
		{1500, "1.5s"},
		{5000, "5.0s"},
		{65000, "1m 5s"},
		{120000, "2m 0s"},
	}

	for _, tt := range tests {
		result := formatDuration(tt.ms)
		if result != tt.expected {
			t.Errorf("formatDuration(%d) = %s, want %s", tt.ms, result, tt.expected)
		}
	}
}

func TestBuildContextData(t *testing.T) {
	opts := DefaultRenderOptions()
	tests := []struct {
		entry ContextEntry
		kind  string
	}{
		{ContextEntry{Value: "data:image/png;base64,AAAA"}, "image"},
		{ContextEntry{Value: "screenshots/a.png"}, "image"},
		{ContextEntry{Value: "videos/a.cy.js.mp4"}, "video"},
		{ContextEntry{Value: "https://example.com"}, "link"},
		{ContextEntry{Value: "plain note"}, "text"},
		{ContextEntry{Title: "count", Value: float64(3)}, "text"},
	}
	for _, tt := range tests {
		if got := buildContextData(tt.entry, opts); got.Kind != tt.kind {
			t.Errorf("buildContextData(%v).Kind = %q, want %q", tt.entry.Value, got.Kind, tt.kind)
		}
	}
}
