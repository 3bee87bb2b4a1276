package report

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestMergeFiles(t *testing.T) {
	dir := t.TempDir()

	login := specDoc("cypress/e2e/login.cy.js", "Login", passed("logs in", 100))
	login.Stats = Stats{Suites: 1, Tests: 1, Passes: 1, TestsRegistered: 1, Duration: 100,
		Start: testStart, End: testStart.Add(time.Second)}

	cart := specDoc("cypress/e2e/cart.cy.js", "Cart", failed("adds item", "boom", 200))
	cart.Stats = Stats{Suites: 1, Tests: 1, Failures: 1, TestsRegistered: 1, Duration: 200,
		Start: testStart.Add(time.Minute), End: testStart.Add(2 * time.Minute)}

	writeFragment(t, dir, "b_login.json", login)
	writeFragment(t, dir, "a_cart.json", cart)
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))

	doc, err := MergeFiles(context.Background(), FragmentPattern(dir))
	if err != nil {
		t.Fatalf("MergeFiles() error = %v", err)
	}

	if len(doc.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(doc.Results))
	}
	// Lexical file order
	if doc.Results[0].File != "cypress/e2e/cart.cy.js" {
		t.Errorf("first result = %q, want cart spec", doc.Results[0].File)
	}

	st := doc.Stats
	if st.Tests != 2 || st.Passes != 1 || st.Failures != 1 || st.Suites != 2 {
		t.Errorf("stats = %+v", st)
	}
	if st.Duration != 300 {
		t.Errorf("duration = %d, want 300", st.Duration)
	}
	if st.PassPercent != 50 {
		t.Errorf("passPercent = %v, want 50", st.PassPercent)
	}
	if !st.Start.Equal(testStart) {
		t.Errorf("start = %v, want %v", st.Start, testStart)
	}
	if !st.End.Equal(testStart.Add(2 * time.Minute)) {
		t.Errorf("end = %v", st.End)
	}
}

func TestMergeFiles_NoFragments(t *testing.T) {
	_, err := MergeFiles(context.Background(), FragmentPattern(t.TempDir()))
	if !errors.Is(err, ErrNoFragments) {
		t.Errorf("err = %v, want ErrNoFragments", err)
	}
}

func TestMergeFiles_MissingDir(t *testing.T) {
	_, err := MergeFiles(context.Background(), FragmentPattern(filepath.Join(t.TempDir(), "missing")))
	if !errors.Is(err, ErrNoFragments) {
		t.Errorf("err = %v, want ErrNoFragments", err)
	}
}

func TestMergeFiles_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.json"), []byte("{not json"))

	_, err := MergeFiles(context.Background(), FragmentPattern(dir))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMergeFiles_DuplicatePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFragment(t, dir, "one.json", specDoc("a.cy.js", "A", passed("x", 1)))

	doc, err := MergeFiles(context.Background(), FragmentPattern(dir), filepath.Join(dir, "one.json"))
	if err != nil {
		t.Fatalf("MergeFiles() error = %v", err)
	}
	if len(doc.Results) != 1 {
		t.Errorf("results = %d, want 1", len(doc.Results))
	}
}

func TestMergeFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFragment(t, dir, "one.json", specDoc("a.cy.js", "A", passed("x", 1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MergeFiles(ctx, FragmentPattern(dir))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestMerge_FillsIdentifiers(t *testing.T) {
	doc := Merge(specDoc("a.cy.js", "A", passed("ok", 10), failed("bad", "x", 20), pending("later")))

	root := doc.Results[0]
	if root.UUID == "" {
		t.Error("root uuid not filled")
	}
	child := root.Suites[0]
	if child.UUID == "" {
		t.Fatal("suite uuid not filled")
	}
	for _, tc := range child.Tests {
		if tc.UUID == "" {
			t.Errorf("test %q has no uuid", tc.Title)
		}
		if tc.ParentUUID != child.UUID {
			t.Errorf("test %q parent = %q, want %q", tc.Title, tc.ParentUUID, child.UUID)
		}
	}

	if len(child.Passes) != 1 || child.Passes[0] != child.Tests[0].UUID {
		t.Errorf("passes = %v", child.Passes)
	}
	if len(child.Failures) != 1 || child.Failures[0] != child.Tests[1].UUID {
		t.Errorf("failures = %v", child.Failures)
	}
	if len(child.Pending) != 1 {
		t.Errorf("pending = %v", child.Pending)
	}
	if child.Duration != 30 {
		t.Errorf("suite duration = %d, want 30", child.Duration)
	}
	if root.Tests == nil || root.BeforeHooks == nil || root.Skipped == nil {
		t.Error("nil slices should be replaced with empty ones")
	}
}

func TestMerge_KeepsExistingUUID(t *testing.T) {
	frag := specDoc("a.cy.js", "A", passed("ok", 1))
	frag.Results[0].UUID = "root-1"
	frag.Results[0].Suites[0].Tests[0].UUID = "test-1"

	doc := Merge(frag)
	if doc.Results[0].UUID != "root-1" {
		t.Errorf("root uuid = %q", doc.Results[0].UUID)
	}
	if doc.Results[0].Suites[0].Passes[0] != "test-1" {
		t.Errorf("passes = %v", doc.Results[0].Suites[0].Passes)
	}
}

func TestMerge_RecountsMissingStats(t *testing.T) {
	doc := Merge(specDoc("a.cy.js", "A", passed("ok", 10), failed("bad", "x", 20), pending("later")))

	st := doc.Stats
	if st.TestsRegistered != 3 {
		t.Errorf("testsRegistered = %d, want 3", st.TestsRegistered)
	}
	if st.Tests != 2 || st.Passes != 1 || st.Failures != 1 || st.Pending != 1 {
		t.Errorf("stats = %+v", st)
	}
	if st.Suites != 1 {
		t.Errorf("suites = %d, want 1", st.Suites)
	}
	if st.PassPercent != 50 {
		t.Errorf("passPercent = %v, want 50", st.PassPercent)
	}
	if st.PendingPercent != 33.33 {
		t.Errorf("pendingPercent = %v, want 33.33", st.PendingPercent)
	}
}

func TestMerge_MetaFromFirstFragment(t *testing.T) {
	a := specDoc("a.cy.js", "A", passed("ok", 1))
	a.Meta = map[string]json.RawMessage{"mocha": json.RawMessage(`{"version":"10.2.0"}`)}
	b := specDoc("b.cy.js", "B", passed("ok", 1))
	b.Meta = map[string]json.RawMessage{"mocha": json.RawMessage(`{"version":"9.0.0"}`)}

	doc := Merge(a, nil, b)
	if string(doc.Meta["mocha"]) != `{"version":"10.2.0"}` {
		t.Errorf("meta = %s", doc.Meta["mocha"])
	}
	if len(doc.Results) != 2 {
		t.Errorf("results = %d, want 2", len(doc.Results))
	}
}
