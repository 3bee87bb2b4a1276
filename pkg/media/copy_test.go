package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/devicelab-dev/cypress-report/pkg/logger"
)

func init() {
	logger.SetOutput(nil)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestCopyDir_Tree(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "screenshots")
	dst := filepath.Join(tmp, "out", "screenshots")

	writeFile(t, filepath.Join(src, "login.cy.js", "Login -- fails (failed).png"), "png-1")
	writeFile(t, filepath.Join(src, "nested", "a", "b.png"), "png-2")

	if err := CopyDir(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyDir() error = %v", err)
	}

	if got := readFile(t, filepath.Join(dst, "login.cy.js", "Login -- fails (failed).png")); got != "png-1" {
		t.Errorf("copied content = %q, want png-1", got)
	}
	if got := readFile(t, filepath.Join(dst, "nested", "a", "b.png")); got != "png-2" {
		t.Errorf("copied content = %q, want png-2", got)
	}
	// Source untouched
	if got := readFile(t, filepath.Join(src, "nested", "a", "b.png")); got != "png-2" {
		t.Errorf("source content = %q, want png-2", got)
	}
}

func TestCopyDir_MissingSource(t *testing.T) {
	tmp := t.TempDir()
	dst := filepath.Join(tmp, "out")

	if err := CopyDir(context.Background(), filepath.Join(tmp, "missing"), dst); err != nil {
		t.Fatalf("CopyDir() error = %v, want nil", err)
	}
	if Exists(dst) {
		t.Error("destination should not be created when source is missing")
	}
}

func TestCopyDir_SelfCopy(t *testing.T) {
	src := filepath.Join(t.TempDir(), "videos")
	writeFile(t, filepath.Join(src, "run.mp4"), "mp4")

	if err := CopyDir(context.Background(), src, src); err != nil {
		t.Fatalf("CopyDir() error = %v, want nil", err)
	}
	if err := CopyDir(context.Background(), src, src+string(filepath.Separator)); err != nil {
		t.Fatalf("CopyDir() with trailing separator error = %v, want nil", err)
	}
	if got := readFile(t, filepath.Join(src, "run.mp4")); got != "mp4" {
		t.Errorf("content = %q, want mp4", got)
	}
}

func TestCopyDir_Overwrites(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	dst := filepath.Join(tmp, "dst")
	writeFile(t, filepath.Join(src, "a.png"), "new")
	writeFile(t, filepath.Join(dst, "a.png"), "old-and-longer")

	if err := CopyDir(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyDir() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dst, "a.png")); got != "new" {
		t.Errorf("content = %q, want new", got)
	}
}

func TestCopyDir_Cancelled(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	writeFile(t, filepath.Join(src, "a.png"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := CopyDir(ctx, src, filepath.Join(tmp, "dst")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestCopyDir_DestinationBlocked(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	writeFile(t, filepath.Join(src, "sub", "a.png"), "x")

	// A regular file where the destination directory should go
	dst := filepath.Join(tmp, "dst")
	writeFile(t, dst, "not a dir")

	if err := CopyDir(context.Background(), src, dst); err == nil {
		t.Fatal("expected error when destination is a file")
	}
}

func TestExists(t *testing.T) {
	tmp := t.TempDir()
	if !Exists(tmp) {
		t.Error("Exists(tempdir) = false")
	}
	if Exists(filepath.Join(tmp, "nope")) {
		t.Error("Exists(missing) = true")
	}
	if Exists("") {
		t.Error("Exists(\"\") = true")
	}
}

func TestCopyDir_IntoSubdirectory(t *testing.T) {
	src := filepath.Join(t.TempDir(), "shots")
	writeFile(t, filepath.Join(src, "a.png"), "png")
	dst := filepath.Join(src, "report", "screenshots")

	err := CopyDir(context.Background(), src, dst)
	if !errors.Is(err, ErrCopyIntoSelf) {
		t.Fatalf("CopyDir() = %v, want ErrCopyIntoSelf", err)
	}
	if Exists(filepath.Join(src, "report")) {
		t.Error("destination created although the copy was rejected")
	}
}

func TestCopyDir_SymlinkedDir(t *testing.T) {
	tmp := t.TempDir()
	shared := filepath.Join(tmp, "shared")
	writeFile(t, filepath.Join(shared, "b.png"), "png-b")

	src := filepath.Join(tmp, "screenshots")
	writeFile(t, filepath.Join(src, "a.png"), "png-a")
	if err := os.Symlink(shared, filepath.Join(src, "linked")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	dst := filepath.Join(tmp, "out")
	if err := CopyDir(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyDir() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dst, "linked", "b.png")); got != "png-b" {
		t.Errorf("linked file = %q", got)
	}
}

func TestCopyDir_SymlinkLoop(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "screenshots")
	writeFile(t, filepath.Join(src, "spec.cy.js", "a.png"), "png-a")
	if err := os.Symlink(src, filepath.Join(src, "spec.cy.js", "back")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(tmp, filepath.Join(src, "up")); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "out")
	if err := CopyDir(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyDir() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dst, "spec.cy.js", "a.png")); got != "png-a" {
		t.Errorf("copied file = %q", got)
	}
	if Exists(filepath.Join(dst, "spec.cy.js", "back")) || Exists(filepath.Join(dst, "up")) {
		t.Error("symlink loop was followed")
	}
}
