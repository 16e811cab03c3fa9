// Package pathutil provides the normalised path type and the atomic,
// symlink-refusing write primitive every other package builds on.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Path is a normalised path whose string form uses '/' exclusively.
// It is constructed from any OS-native path (including UNC and
// drive-prefixed paths) and converted back to OS-native form only at I/O
// boundaries.
type Path struct {
	norm string
}

// New normalises a native path into a Path.
func New(native string) Path {
	slashed := filepath.ToSlash(filepath.Clean(native))
	return Path{norm: slashed}
}

// FromSlash wraps an already-forward-slash path without re-cleaning it
// through the OS's native separator, used when the value is known to
// already be in repository-relative canonical form (e.g. read from the
// ledger).
func FromSlash(slashed string) Path {
	return Path{norm: slashed}
}

// String returns the normalised (forward-slash) form.
func (p Path) String() string { return p.norm }

// Native converts back to the OS-native separator for I/O.
func (p Path) Native() string { return filepath.FromSlash(p.norm) }

// Join appends native-agnostic segments and renormalises.
func (p Path) Join(parts ...string) Path {
	all := append([]string{p.norm}, parts...)
	return New(strings.Join(all, "/"))
}

// Dir returns the normalised parent directory.
func (p Path) Dir() Path {
	return New(filepath.Dir(p.Native()))
}

// Base returns the final path element.
func (p Path) Base() string {
	return filepath.Base(p.Native())
}

// Equal defines equality on the normalised form.
func (p Path) Equal(other Path) bool { return p.norm == other.norm }

// IsEmpty reports whether the path carries no content.
func (p Path) IsEmpty() bool { return p.norm == "" }
