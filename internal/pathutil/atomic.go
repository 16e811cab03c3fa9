package pathutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrSymlinkRefused is returned when any component of a write target's
// ancestry, or the target itself, is a symbolic link. The policy is
// absolute; callers cannot opt out.
type ErrSymlinkRefused struct {
	Path string
}

func (e *ErrSymlinkRefused) Error() string {
	return fmt.Sprintf("symlink refused: %s resolves through a symbolic link", e.Path)
}

// checkNoSymlinks walks the ancestry of native (an absolute or
// cwd-relative OS path) and refuses if any existing component, including
// the final one, is a symlink.
func checkNoSymlinks(native string) error {
	abs, err := filepath.Abs(native)
	if err != nil {
		return fmt.Errorf("resolve absolute path %q: %w", native, err)
	}
	// Walk from root down, checking each existing prefix.
	cur := string(filepath.Separator)
	segments := splitAll(abs)
	for _, seg := range segments {
		cur = filepath.Join(cur, seg)
		info, err := os.Lstat(cur)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat %q: %w", cur, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return &ErrSymlinkRefused{Path: cur}
		}
	}
	return nil
}

func splitAll(abs string) []string {
	var out []string
	rest := abs
	for {
		rest = filepath.Clean(rest)
		if rest == string(filepath.Separator) || rest == "." {
			break
		}
		dir, base := filepath.Split(rest)
		if base == "" {
			break
		}
		out = append([]string{base}, out...)
		rest = dir
	}
	return out
}

// WriteFileAtomic refuses to traverse symlinks anywhere in target's
// ancestry, acquires an exclusive advisory lock on a lockfile alongside
// the target, then writes via a same-directory temp file and rename.
// The rename is the linearisation point.
func WriteFileAtomic(target string, content []byte, perm os.FileMode) error {
	if err := checkNoSymlinks(target); err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent dir %q: %w", dir, err)
	}
	lock := flock.New(target + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	locked, err := lock.TryLockContext(ctx, 20*time.Millisecond)
	if err != nil || !locked {
		return fmt.Errorf("acquire advisory lock on %q: %w", target, errOrTimeout(err))
	}
	defer lock.Unlock()

	suffix := randSuffix()
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(target), suffix))
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create temp file %q: %w", tmp, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file %q: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("fsync temp file %q: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %q to %q: %w", tmp, target, err)
	}
	return nil
}

func randSuffix() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func errOrTimeout(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("lock timed out")
}
