package syncengine

import (
	"fmt"
	"sort"
	"time"

	"github.com/wgergely/repository-manager/internal/pathutil"
)

// lockTimeoutOf defaults a zero-valued Options.LockTimeout to the package
// default bound.
func lockTimeoutOf(opts Options) time.Duration {
	if opts.LockTimeout <= 0 {
		return pathutil.DefaultLockTimeout
	}
	return opts.LockTimeout
}

// acquireFileLocks acquires one lock per path in lexicographic order (the
// fixed per-file hierarchy spec.md §5 requires, assumed already taken
// after the caller's ledger lock). On any failure, locks already held are
// released before the error is returned.
func acquireFileLocks(paths []string, opts Options) ([]*pathutil.Lock, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	timeout := lockTimeoutOf(opts)
	held := make([]*pathutil.Lock, 0, len(sorted))
	for _, p := range sorted {
		l := pathutil.NewLock(p + ".lock")
		if err := l.Acquire(timeout); err != nil {
			releaseFileLocks(held)
			return nil, fmt.Errorf("acquire file lock for %q: %w", p, err)
		}
		held = append(held, l)
	}
	return held, nil
}

// releaseFileLocks releases locks in reverse acquisition order.
func releaseFileLocks(locks []*pathutil.Lock) {
	for i := len(locks) - 1; i >= 0; i-- {
		_ = locks[i].Release()
	}
}
