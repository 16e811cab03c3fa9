package ledger

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/wgergely/repository-manager/internal/pathutil"
	"github.com/wgergely/repository-manager/internal/rmerr"
)

// Ledger is the in-memory, mutable view of a repository's intent/projection
// record, backed by a single TOML file.
type Ledger struct {
	path string
	doc  Document
}

// New returns an empty ledger bound to path (not yet persisted).
func New(path string) *Ledger {
	return &Ledger{
		path: path,
		doc:  Document{Meta: Meta{Version: CurrentVersion}},
	}
}

// Load reads path. A missing file yields an empty ledger, not an error.
// An unknown document version is a fatal error.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(path), nil
		}
		return nil, rmerr.Filesystem(path, "read ledger", "check file permissions", err)
	}
	var doc Document
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, rmerr.ParseErr(path, 0, err)
	}
	if doc.Meta.Version == "" {
		doc.Meta.Version = CurrentVersion
	}
	if doc.Meta.Version != CurrentVersion {
		return nil, rmerr.New(rmerr.KindParse, path, "load ledger",
			fmt.Sprintf("unknown ledger version %q, expected %q; migrate manually", doc.Meta.Version, CurrentVersion), nil)
	}
	return &Ledger{path: path, doc: doc}, nil
}

// Save re-serialises the whole document and writes it atomically.
func (l *Ledger) Save() error {
	l.doc.Meta.Version = CurrentVersion
	l.doc.Meta.UpdatedAt = time.Now().UTC()

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(l.doc); err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := pathutil.WriteFileAtomic(l.path, buf.Bytes(), 0o644); err != nil {
		return rmerr.Filesystem(l.path, "write ledger", "check directory permissions", err)
	}
	return nil
}

// Add registers a new intent. Each of its projections is checked against
// every other active intent's projections for a resource conflict
// (spec.md §3 Ledger invariant ii): the first-registered wins, the
// second-registered is rejected with a ConflictError.
func (l *Ledger) Add(intent Intent) error {
	for _, existing := range l.doc.Intents {
		if existing.UUID == intent.UUID {
			return rmerr.New(rmerr.KindConflict, intent.ID, "add intent",
				fmt.Sprintf("uuid %q already registered", intent.UUID), nil)
		}
	}
	if err := l.CheckConflicts(intent.ID, intent.Projections); err != nil {
		return err
	}
	l.doc.Intents = append(l.doc.Intents, intent)
	return nil
}

// CheckConflicts reports a ConflictError if any of projections' resource
// keys (file+marker, file+path) is already claimed by an intent other than
// id. Callers use this to pre-flight a write before touching the
// filesystem, so a rejected projection never lands on disk in the first
// place (spec.md §8 Scenario F: the first-registered intent's write wins,
// the second is rejected outright).
func (l *Ledger) CheckConflicts(id string, projections []Projection) error {
	for _, p := range projections {
		key, ok := p.ResourceKey()
		if !ok {
			continue
		}
		if owner, found := l.ownerOf(key); found && owner != id {
			return rmerr.Conflict(p.File, owner, id)
		}
	}
	return nil
}

func (l *Ledger) ownerOf(resourceKey string) (string, bool) {
	for _, in := range l.doc.Intents {
		for _, p := range in.Projections {
			if k, ok := p.ResourceKey(); ok && k == resourceKey {
				return in.ID, true
			}
		}
	}
	return "", false
}

// Remove deletes the intent with uuid, returning it if found.
func (l *Ledger) Remove(uuid string) (*Intent, bool) {
	for i, in := range l.doc.Intents {
		if in.UUID == uuid {
			l.doc.Intents = append(l.doc.Intents[:i], l.doc.Intents[i+1:]...)
			return &in, true
		}
	}
	return nil, false
}

// Upsert replaces the intent sharing ID with updated (the uuid is not
// compared), or appends it if no match exists. The replacement is rejected
// through the same conflict check Add performs: since CheckConflicts
// ignores an intent's own prior claims (owner == id is never a conflict),
// updating an intent never trips over its own previous projections, only
// another intent's.
func (l *Ledger) Upsert(updated Intent) error {
	if err := l.CheckConflicts(updated.ID, updated.Projections); err != nil {
		return err
	}
	for i, in := range l.doc.Intents {
		if in.ID == updated.ID {
			l.doc.Intents[i] = updated
			return nil
		}
	}
	l.doc.Intents = append(l.doc.Intents, updated)
	return nil
}

// ByID returns all intents sharing logical id.
func (l *Ledger) ByID(id string) []Intent {
	var out []Intent
	for _, in := range l.doc.Intents {
		if in.ID == id {
			out = append(out, in)
		}
	}
	return out
}

// ByFile returns every (intent, projection) pair touching path.
func (l *Ledger) ByFile(path string) []IntentProjection {
	var out []IntentProjection
	for _, in := range l.doc.Intents {
		for _, p := range in.Projections {
			if p.File == path {
				out = append(out, IntentProjection{Intent: in, Projection: p})
			}
		}
	}
	return out
}

// ByTool returns every (intent, projection) pair for a tool slug.
func (l *Ledger) ByTool(slug string) []IntentProjection {
	var out []IntentProjection
	for _, in := range l.doc.Intents {
		for _, p := range in.Projections {
			if p.Tool == slug {
				out = append(out, IntentProjection{Intent: in, Projection: p})
			}
		}
	}
	return out
}

// All returns every intent currently recorded.
func (l *Ledger) All() []Intent {
	out := make([]Intent, len(l.doc.Intents))
	copy(out, l.doc.Intents)
	return out
}

// IntentProjection pairs a projection with its owning intent.
type IntentProjection struct {
	Intent     Intent
	Projection Projection
}
