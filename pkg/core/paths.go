package core

import (
	"path/filepath"
	"strings"
)

// IsSubdir reports whether child lies strictly below parent. Both paths are
// made absolute first; equal paths are not nested.
func IsSubdir(parent, child string) bool {
	p, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	c, err := filepath.Abs(child)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(p, c)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
