// Package media relocates screenshot and video folders into the report output tree.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/devicelab-dev/cypress-report/pkg/core"
	"github.com/devicelab-dev/cypress-report/pkg/logger"
)

// Exists reports whether path exists on disk.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// ErrCopyIntoSelf is returned when the destination lies inside the source.
var ErrCopyIntoSelf = errors.New("cannot copy a directory into a subdirectory of itself")

// CopyDir copies the tree at src into dst, creating dst as needed.
//
// A missing src is not an error: it is logged and skipped. Copying a
// directory onto itself is a no-op; copying it into one of its own
// subdirectories fails with ErrCopyIntoSelf before anything is written.
// Existing files in dst are overwritten. Symlinks are followed and copied
// as regular files; a symlink back into a directory being copied is skipped.
func CopyDir(ctx context.Context, src, dst string) error {
	if !Exists(src) {
		logger.Info("Media folder %q not found, nothing to copy", src)
		return nil
	}
	if samePath(src, dst) {
		return nil
	}

	if core.IsSubdir(src, dst) {
		return fmt.Errorf("%w: %q into %q", ErrCopyIntoSelf, src, dst)
	}
	if resolved, err := filepath.EvalSymlinks(src); err == nil {
		if samePath(resolved, dst) {
			return nil
		}
		if core.IsSubdir(resolved, dst) {
			return fmt.Errorf("%w: %q into %q", ErrCopyIntoSelf, resolved, dst)
		}
		src = resolved
	}

	logger.Info("Copy media folder from %q to %q", src, dst)
	return copyTree(ctx, src, dst, nil)
}

// copyTree copies the resolved directory src. parents holds the resolved
// roots of the enclosing copies.
func copyTree(ctx context.Context, src, dst string, parents []string) error {
	parents = append(parents[:len(parents):len(parents)], src)

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return copyFile(path, target, info.Mode().Perm())
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				return err
			}
			if isLoop(resolved, parents) {
				logger.Warn("Skipping symlink loop %q -> %q", path, resolved)
				return nil
			}
			if err := os.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
			return copyTree(ctx, resolved, target, parents)
		}

		if err := os.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
			return fmt.Errorf("create %s: %w", target, err)
		}
		return nil
	})
}

// isLoop reports whether dir is one of parents or contains one of them.
func isLoop(dir string, parents []string) bool {
	for _, p := range parents {
		if samePath(dir, p) || core.IsSubdir(dir, p) {
			return true
		}
	}
	return false
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src) //#nosec G304 -- walking the configured media dir
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode) //#nosec G304 -- destination inside the output dir
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

// samePath compares paths after cleaning and, where possible, resolving
// them to absolute form.
func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
