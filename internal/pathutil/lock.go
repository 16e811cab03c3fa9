package pathutil

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout is the bound used when a caller does not supply one.
const DefaultLockTimeout = 500 * time.Millisecond

// Lock wraps an advisory file lock on an arbitrary path (the ledger file,
// or a `.lock` sidecar for a tool-configuration file). Locks are acquired
// in a fixed hierarchy by callers: ledger lock before any per-file lock,
// per-file locks in path-lexicographic order.
type Lock struct {
	f *flock.Flock
}

// NewLock returns a lock handle for path. It does not acquire the lock.
func NewLock(path string) *Lock {
	return &Lock{f: flock.New(path)}
}

// Acquire blocks (bounded by timeout) until the exclusive lock is held.
func (l *Lock) Acquire(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ok, err := l.f.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire lock %q: %w", l.f.Path(), err)
	}
	if !ok {
		return fmt.Errorf("acquire lock %q: %w", l.f.Path(), ErrLockTimeout)
	}
	return nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	return l.f.Unlock()
}

// ErrLockTimeout is returned when a lock cannot be acquired within the
// caller-supplied bound.
var ErrLockTimeout = fmt.Errorf("lock timeout")
