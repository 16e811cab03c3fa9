// Package ledger persists intents and the projections they produced, as a
// versioned TOML document written atomically.
package ledger

import "time"

// Kind is the closed set of projection kinds.
type Kind string

const (
	KindFileManaged Kind = "file_managed"
	KindTextBlock   Kind = "text_block"
	KindJSONKey     Kind = "json_key"
)

// Projection is a concrete filesystem effect an intent produced.
type Projection struct {
	Tool string `toml:"tool"`
	File string `toml:"file"` // path used for filesystem operations, as the writer constructed it
	Kind Kind   `toml:"kind"`

	// kind-specific fields; zero-valued when not applicable to Kind.
	Checksum string `toml:"checksum,omitempty"` // file_managed, text_block
	Marker   string `toml:"marker,omitempty"`   // text_block
	Path     string `toml:"path,omitempty"`     // json_key (dotted)
	Value    any    `toml:"value,omitempty"`    // json_key
}

// ResourceKey identifies the (file, marker) or (file, path) resource a
// projection owns, used for the ledger's one-active-claim invariant.
func (p Projection) ResourceKey() (string, bool) {
	switch p.Kind {
	case KindTextBlock:
		return p.File + "#" + p.Marker, true
	case KindJSONKey:
		return p.File + "@" + p.Path, true
	default:
		return "", false
	}
}

// Intent is a logical declaration and the projections it last realised.
type Intent struct {
	ID          string       `toml:"id"` // e.g. "tool:cursor" or "rule:python-style"
	UUID        string       `toml:"uuid"`
	Timestamp   time.Time    `toml:"timestamp"`
	Args        any          `toml:"args,omitempty"`
	Projections []Projection `toml:"projections,omitempty"`
}

// Meta is the ledger document's version/update-time header.
type Meta struct {
	Version   string    `toml:"version"`
	UpdatedAt time.Time `toml:"updated_at"`
}

// CurrentVersion is the ledger document version this package writes and
// the only version it accepts on load.
const CurrentVersion = "1.0"

// Document is the full on-disk ledger form.
type Document struct {
	Meta    Meta     `toml:"meta"`
	Intents []Intent `toml:"intents"`
}
