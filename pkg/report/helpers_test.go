package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devicelab-dev/cypress-report/pkg/logger"
)

func init() {
	logger.SetOutput(nil)
}

var testStart = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func passed(title string, ms int64) *Test {
	return &Test{Title: title, FullTitle: title, State: StatePassed, Pass: true, Duration: ms}
}

func failed(title, msg string, ms int64) *Test {
	return &Test{Title: title, FullTitle: title, State: StateFailed, Fail: true, Duration: ms,
		Err: TestError{Message: msg}}
}

func pending(title string) *Test {
	return &Test{Title: title, FullTitle: title, Pending: true}
}

// specDoc builds a fragment for one spec file with a single describe block.
func specDoc(spec, describe string, tests ...*Test) *Document {
	return &Document{
		Results: []*Suite{{
			Title: "",
			File:  spec,
			Root:  true,
			Suites: []*Suite{{
				Title: describe,
				File:  spec,
				Tests: tests,
			}},
		}},
	}
}

func writeFragment(t *testing.T, dir, name string, doc *Document) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := WriteJSON(path, doc); err != nil {
		t.Fatalf("write fragment: %v", err)
	}
	return path
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
