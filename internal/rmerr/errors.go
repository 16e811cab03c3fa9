// Package rmerr defines the closed set of error kinds the core reports,
// each carrying a machine-readable kind, the resource and action involved,
// and a human hint for repair.
package rmerr

import "fmt"

// Kind is the closed set of error categories the core can report.
type Kind string

const (
	KindFilesystem     Kind = "filesystem_error"
	KindLayoutMismatch Kind = "layout_mismatch"
	KindParse          Kind = "parse_error"
	KindConflict       Kind = "conflict_error"
	KindNotImplemented Kind = "not_implemented"
	KindBackend        Kind = "backend_error"
	KindCancelled      Kind = "cancelled_error"
	KindLockTimeout    Kind = "lock_timeout"
	KindBlockNotFound  Kind = "block_not_found"
	KindPathNotFound   Kind = "path_not_found"
)

// Error is the uniform error shape the rest of the core returns.
type Error struct {
	Kind     Kind
	Resource string
	Action   string
	Hint     string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: failed to %s %s", e.Kind, e.Action, e.Resource)
	if e.Hint != "" {
		msg += fmt.Sprintf(" (%s)", e.Hint)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error.
func New(kind Kind, resource, action, hint string, cause error) *Error {
	return &Error{Kind: kind, Resource: resource, Action: action, Hint: hint, Err: cause}
}

// Filesystem wraps a filesystem-layer failure.
func Filesystem(resource, action, hint string, cause error) *Error {
	return New(KindFilesystem, resource, action, hint, cause)
}

// SymlinkRefused is the specific FilesystemError naming the refused link
// and its target.
func SymlinkRefused(link, target string) *Error {
	return New(KindFilesystem, link, "write through",
		fmt.Sprintf("remove or relocate the symlink at %q (target %q) and retry", link, target), nil)
}

// LayoutMismatch names the expected vs observed filesystem state.
func LayoutMismatch(resource, expected, observed string) *Error {
	return New(KindLayoutMismatch, resource, "validate layout",
		fmt.Sprintf("expected %s, observed %s", expected, observed), nil)
}

// ParseErr reports a malformed file with byte offset.
func ParseErr(resource string, offset int, cause error) *Error {
	return New(KindParse, resource, "parse",
		fmt.Sprintf("malformed content at byte offset %d", offset), cause)
}

// Conflict reports two projections contending for the same resource.
func Conflict(resource, winner, loser string) *Error {
	return New(KindConflict, resource, "register projection",
		fmt.Sprintf("intent %q already owns this resource; intent %q was rejected", winner, loser), nil)
}

// NotImplementedErr carries a migration hint for an operation the current
// layout cannot perform.
func NotImplementedErr(resource, hint string) *Error {
	return New(KindNotImplemented, resource, "perform", hint, nil)
}

// Backend reports an external VCS binary exiting non-zero, stderr captured
// verbatim in hint.
func Backend(resource, action, stderr string, cause error) *Error {
	return New(KindBackend, resource, action, stderr, cause)
}

// Cancelled reports cooperative cancellation.
func Cancelled(resource string) *Error {
	return New(KindCancelled, resource, "complete", "operation was cancelled", nil)
}

// LockTimeoutErr reports a bounded lock-wait expiring.
func LockTimeoutErr(resource string, cause error) *Error {
	return New(KindLockTimeout, resource, "acquire lock", "retry, or check for a stuck process holding the lock", cause)
}

// BlockNotFound reports a managed block whose marker could not be located.
func BlockNotFound(resource, marker string) *Error {
	return New(KindBlockNotFound, resource, "locate block",
		fmt.Sprintf("no managed block with marker %q", marker), nil)
}

// PathNotFoundErr reports a JsonKey dotted path that could not be resolved.
func PathNotFoundErr(resource, path string) *Error {
	return New(KindPathNotFound, resource, "resolve key path",
		fmt.Sprintf("dotted path %q not found", path), nil)
}
