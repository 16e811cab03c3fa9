package pathutil

import (
	"os"
	"path/filepath"
)

// NormalizeExisting cleans p and, if it exists, resolves symlinks; on any
// error (including the path not existing) it falls back to the cleaned
// form. Grounded on worktree_detector.go's normalizePath.
func NormalizeExisting(p string) string {
	cleaned := filepath.Clean(p)
	resolved, err := filepath.EvalSymlinks(cleaned)
	if err != nil {
		return cleaned
	}
	return resolved
}

// IsSymlink reports whether path exists and is itself a symbolic link.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}
