package report

import (
	"path"
	"regexp"
	"strings"
)

// Matcher decides which screenshot files belong to a test.
// files are slash-separated paths relative to the screenshots directory.
type Matcher interface {
	Match(ref TestRef, files []string) []string
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(ref TestRef, files []string) []string

// Match calls f(ref, files).
func (f MatcherFunc) Match(ref TestRef, files []string) []string {
	return f(ref, files)
}

// Cypress truncates screenshot file names to keep paths under the
// filesystem limit.
const cypressMaxNameBytes = 220

var (
	counterSuffix = regexp.MustCompile(` \(\d+\)$`)
	attemptSuffix = regexp.MustCompile(` \(attempt \d+\)$`)
	unsafeChars   = regexp.MustCompile(`[/\\?<>:*|"\x00-\x1f\x80-\x9f]`)
)

// CypressMatcher matches screenshots named by Cypress:
//
//	<screenshotsDir>/<spec path>/<suite> -- <test> (failed) (attempt 2) (1).png
//
// The folder must be a trailing path of the test's spec file and the file
// name must equal the sanitized title path.
type CypressMatcher struct{}

// Match implements Matcher.
func (CypressMatcher) Match(ref TestRef, files []string) []string {
	want := SanitizeFileName(strings.Join(ref.Titles, " -- "))
	if want == "" {
		return nil
	}
	spec := "/" + strings.TrimPrefix(path.Clean(strings.ReplaceAll(ref.Spec, "\\", "/")), "/")

	var out []string
	for _, f := range files {
		dir, file := path.Split(f)
		dir = strings.TrimSuffix(dir, "/")
		if dir == "" || !strings.HasSuffix(spec, "/"+dir) {
			continue
		}
		if screenshotName(file) == want || truncatedMatch(screenshotName(file), want) {
			out = append(out, f)
		}
	}
	return out
}

// screenshotName strips the extension, the duplicate counter Cypress adds
// for repeated names, and the status suffixes.
func screenshotName(file string) string {
	name := strings.TrimSuffix(file, path.Ext(file))
	name = counterSuffix.ReplaceAllString(name, "")
	name = attemptSuffix.ReplaceAllString(name, "")
	name = strings.TrimSuffix(name, " (failed)")
	return name
}

func truncatedMatch(name, want string) bool {
	return len(want) > cypressMaxNameBytes && len(name) >= cypressMaxNameBytes/2 && strings.HasPrefix(want, name)
}

// SanitizeFileName removes the characters Cypress strips from screenshot names.
func SanitizeFileName(name string) string {
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimRight(name, ". ")
	if name == "." || name == ".." {
		return ""
	}
	return name
}
