package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/devicelab-dev/cypress-report/pkg/logger"
)

// ErrNoFragments is returned when the merge patterns match no files.
var ErrNoFragments = errors.New("no report fragments found")

// FragmentPattern returns the glob matching every fragment in jsonDir.
func FragmentPattern(jsonDir string) string {
	return filepath.Join(jsonDir, "*.json")
}

// MergeFiles reads every file matching the glob patterns and merges them.
// Matches are de-duplicated and merged in lexical order.
func MergeFiles(ctx context.Context, patterns ...string) (*Document, error) {
	files, err := expandPatterns(patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoFragments, patterns)
	}

	fragments := make([]*Document, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := ReadFragment(f)
		if err != nil {
			return nil, err
		}
		logger.Debug("Read fragment %s (%d results)", f, len(doc.Results))
		fragments = append(fragments, doc)
	}

	return Merge(fragments...), nil
}

func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// Merge combines fragments into one document.
//
// Root suites are concatenated in fragment order, missing uuids are filled
// in, per-suite id lists are rebuilt from test states and stats are
// recomputed. Meta is taken from the first fragment.
func Merge(fragments ...*Document) *Document {
	merged := &Document{Results: []*Suite{}}

	for _, frag := range fragments {
		if frag == nil {
			continue
		}
		if merged.Meta == nil && frag.Meta != nil {
			merged.Meta = frag.Meta
		}
		for _, root := range frag.Results {
			if root == nil {
				continue
			}
			normalizeSuite(root, "")
			merged.Results = append(merged.Results, root)
		}
	}

	merged.Stats = mergeStats(fragments, merged)
	return merged
}

// normalizeSuite fills uuids, replaces nil slices and rebuilds id lists.
func normalizeSuite(s *Suite, parentFile string) {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	if s.File == "" {
		s.File = parentFile
	}
	if s.BeforeHooks == nil {
		s.BeforeHooks = []*Test{}
	}
	if s.AfterHooks == nil {
		s.AfterHooks = []*Test{}
	}
	if s.Tests == nil {
		s.Tests = []*Test{}
	}
	if s.Suites == nil {
		s.Suites = []*Suite{}
	}

	s.Passes = []string{}
	s.Failures = []string{}
	s.Pending = []string{}
	s.Skipped = []string{}

	var duration int64
	for _, t := range s.Tests {
		if t == nil {
			continue
		}
		if t.UUID == "" {
			t.UUID = uuid.NewString()
		}
		if t.ParentUUID == "" {
			t.ParentUUID = s.UUID
		}
		duration += t.Duration

		switch {
		case t.IsFailed():
			s.Failures = append(s.Failures, t.UUID)
		case t.IsPassed():
			s.Passes = append(s.Passes, t.UUID)
		case t.IsPending():
			s.Pending = append(s.Pending, t.UUID)
		case t.IsSkipped():
			s.Skipped = append(s.Skipped, t.UUID)
		}
	}
	if s.Duration == 0 {
		s.Duration = duration
	}

	for _, child := range s.Suites {
		if child != nil {
			normalizeSuite(child, s.File)
		}
	}
}

// mergeStats sums fragment stats. Counts missing from a fragment (zero
// testsRegistered with tests present) are recounted from its results.
func mergeStats(fragments []*Document, merged *Document) Stats {
	var st Stats

	for _, frag := range fragments {
		if frag == nil {
			continue
		}
		fs := frag.Stats
		if fs.TestsRegistered == 0 && fs.Tests == 0 {
			fs = recount(frag)
		}

		st.Suites += fs.Suites
		st.Tests += fs.Tests
		st.Passes += fs.Passes
		st.Pending += fs.Pending
		st.Failures += fs.Failures
		st.TestsRegistered += fs.TestsRegistered
		st.Other += fs.Other
		st.Skipped += fs.Skipped
		st.Duration += fs.Duration

		if !fs.Start.IsZero() && (st.Start.IsZero() || fs.Start.Before(st.Start)) {
			st.Start = fs.Start
		}
		if fs.End.After(st.End) {
			st.End = fs.End
		}
	}

	st.HasOther = st.Other > 0
	st.HasSkipped = st.Skipped > 0

	if ran := st.TestsRegistered - st.Pending - st.Skipped; ran > 0 {
		st.PassPercent = round2(float64(st.Passes) * 100 / float64(ran))
	}
	if st.TestsRegistered > 0 {
		st.PendingPercent = round2(float64(st.Pending) * 100 / float64(st.TestsRegistered))
	}

	return st
}

// recount derives stats from a fragment's results.
func recount(doc *Document) Stats {
	var st Stats
	var countSuites func(s *Suite)
	countSuites = func(s *Suite) {
		for _, child := range s.Suites {
			if child != nil {
				st.Suites++
				countSuites(child)
			}
		}
	}
	for _, root := range doc.Results {
		if root != nil {
			countSuites(root)
		}
	}

	doc.Walk(func(ref TestRef) {
		st.TestsRegistered++
		st.Duration += ref.Test.Duration
		switch {
		case ref.Test.IsFailed():
			st.Failures++
			st.Tests++
		case ref.Test.IsPassed():
			st.Passes++
			st.Tests++
		case ref.Test.IsPending():
			st.Pending++
		case ref.Test.IsSkipped():
			st.Skipped++
		default:
			st.Other++
		}
	})
	st.Start = doc.Stats.Start
	st.End = doc.Stats.End
	return st
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
