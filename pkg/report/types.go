// Package report merges, enhances and renders mochawesome test reports.
//
// Document layout (mochawesome JSON):
//   - stats: aggregated counts for the whole run
//   - results: one root suite per spec file, nesting suites and tests
//   - meta: reporter metadata, copied through untouched
//
// Per-spec fragments written by the test runner share this layout; Merge
// folds them into a single Document which Enhance decorates with screenshots
// and Render turns into a standalone HTML page.
package report

import (
	"encoding/json"
	"time"
)

// State represents the outcome of a single test.
type State string

// State values.
const (
	StatePassed  State = "passed"
	StateFailed  State = "failed"
	StatePending State = "pending"
	StateSkipped State = "skipped"
)

// ============================================================================
// DOCUMENT
// ============================================================================

// Document is the aggregate report: all spec results plus run statistics.
type Document struct {
	Stats   Stats                      `json:"stats"`
	Results []*Suite                   `json:"results"`
	Meta    map[string]json.RawMessage `json:"meta,omitempty"`
}

// Stats contains aggregated counts.
type Stats struct {
	Suites          int       `json:"suites"`
	Tests           int       `json:"tests"`
	Passes          int       `json:"passes"`
	Pending         int       `json:"pending"`
	Failures        int       `json:"failures"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Duration        int64     `json:"duration"` // milliseconds
	TestsRegistered int       `json:"testsRegistered"`
	PassPercent     float64   `json:"passPercent"`
	PendingPercent  float64   `json:"pendingPercent"`
	Other           int       `json:"other"`
	HasOther        bool      `json:"hasOther"`
	Skipped         int       `json:"skipped"`
	HasSkipped      bool      `json:"hasSkipped"`
}

// Suite is a describe block. Root suites carry the spec file.
type Suite struct {
	UUID        string   `json:"uuid"`
	Title       string   `json:"title"`
	FullFile    string   `json:"fullFile"`
	File        string   `json:"file"`
	BeforeHooks []*Test  `json:"beforeHooks"`
	AfterHooks  []*Test  `json:"afterHooks"`
	Tests       []*Test  `json:"tests"`
	Suites      []*Suite `json:"suites"`
	Passes      []string `json:"passes"`
	Failures    []string `json:"failures"`
	Pending     []string `json:"pending"`
	Skipped     []string `json:"skipped"`
	Duration    int64    `json:"duration"` // milliseconds
	Root        bool     `json:"root"`
	RootEmpty   bool     `json:"rootEmpty"`
	Timeout     int64    `json:"_timeout"`
}

// Test is a single it block (or hook).
type Test struct {
	Title      string    `json:"title"`
	FullTitle  string    `json:"fullTitle"`
	TimedOut   bool      `json:"timedOut"`
	Duration   int64     `json:"duration"` // milliseconds
	State      State     `json:"state,omitempty"`
	Speed      string    `json:"speed,omitempty"`
	Pass       bool      `json:"pass"`
	Fail       bool      `json:"fail"`
	Pending    bool      `json:"pending"`
	Context    Context   `json:"context"`
	Code       string    `json:"code"`
	Err        TestError `json:"err"`
	UUID       string    `json:"uuid"`
	ParentUUID string    `json:"parentUUID"`
	IsHook     bool      `json:"isHook"`
	Skipped    bool      `json:"skipped"`
}

// TestError contains failure details. Empty for passing tests.
type TestError struct {
	Message string `json:"message,omitempty"`
	EStack  string `json:"estack,omitempty"`
	Diff    string `json:"diff,omitempty"`
}

// IsPassed returns true if the test passed.
func (t *Test) IsPassed() bool {
	return t.Pass || t.State == StatePassed
}

// IsFailed returns true if the test failed.
func (t *Test) IsFailed() bool {
	return t.Fail || t.State == StateFailed
}

// IsPending returns true if the test was declared pending (it.skip / xit).
func (t *Test) IsPending() bool {
	return t.Pending || t.State == StatePending
}

// IsSkipped returns true if the test never ran because of an earlier failure.
func (t *Test) IsSkipped() bool {
	return t.Skipped || t.State == StateSkipped
}

// ============================================================================
// TRAVERSAL
// ============================================================================

// TestRef locates a test inside a Document.
type TestRef struct {
	Spec   string   // Spec file of the enclosing root suite
	Titles []string // Non-empty suite titles from the root down, then the test title
	Suite  *Suite   // Suite that owns the test
	Test   *Test
}

// Walk calls fn for every test in the document, depth-first, in file order.
// Hooks are not visited.
func (d *Document) Walk(fn func(ref TestRef)) {
	for _, root := range d.Results {
		if root == nil {
			continue
		}
		spec := root.File
		if spec == "" {
			spec = root.FullFile
		}
		walkSuite(root, spec, nil, fn)
	}
}

func walkSuite(s *Suite, spec string, titles []string, fn func(ref TestRef)) {
	if s.Title != "" {
		titles = append(titles[:len(titles):len(titles)], s.Title)
	}

	for _, t := range s.Tests {
		if t == nil {
			continue
		}
		path := make([]string, 0, len(titles)+1)
		path = append(path, titles...)
		path = append(path, t.Title)
		fn(TestRef{Spec: spec, Titles: path, Suite: s, Test: t})
	}

	for _, child := range s.Suites {
		if child != nil {
			walkSuite(child, spec, titles, fn)
		}
	}
}

// Counts is a per-state tally of tests.
type Counts struct {
	Tests    int
	Passes   int
	Failures int
	Pending  int
	Skipped  int
	Duration int64 // milliseconds, sum of test durations
}

// CountSuite tallies all tests below s.
func CountSuite(s *Suite) Counts {
	var c Counts
	doc := Document{Results: []*Suite{s}}
	doc.Walk(func(ref TestRef) {
		c.add(ref.Test)
	})
	return c
}

func (c *Counts) add(t *Test) {
	c.Tests++
	c.Duration += t.Duration
	switch {
	case t.IsFailed():
		c.Failures++
	case t.IsPassed():
		c.Passes++
	case t.IsPending():
		c.Pending++
	case t.IsSkipped():
		c.Skipped++
	}
}
