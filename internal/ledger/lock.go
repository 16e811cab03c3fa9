package ledger

import (
	"time"

	"github.com/wgergely/repository-manager/internal/pathutil"
)

// LockPath returns the advisory-lock sidecar path for a ledger file. The
// sync engine acquires this before loading the ledger for a mutating
// operation and releases it after Save, establishing the "ledger lock
// before any per-file lock" hierarchy from spec.md §5.
func LockPath(ledgerPath string) string {
	return ledgerPath + ".lock"
}

// WithLock runs fn while holding the ledger-wide advisory lock, bounded by
// timeout (DefaultLockTimeout if zero).
func WithLock(ledgerPath string, timeout time.Duration, fn func() error) error {
	lock := pathutil.NewLock(LockPath(ledgerPath))
	if err := lock.Acquire(timeout); err != nil {
		return err
	}
	defer lock.Release()
	return fn()
}
