// Package manifest decodes the repository/local/org/global manifest layers
// and merges them into a resolved desired state.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/wgergely/repository-manager/internal/pathutil"
	"github.com/wgergely/repository-manager/internal/rmerr"
)

// Rule is a single declared rule.
type Rule struct {
	ID           string   `toml:"id"`
	Content      string   `toml:"content"`
	Severity     string   `toml:"severity"` // "mandatory" | "suggested", default "suggested"
	Tags         []string `toml:"tags,omitempty"`
	FilePatterns []string `toml:"file_patterns,omitempty"`
	Examples     []string `toml:"examples,omitempty"`
}

// EffectiveSeverity defaults an empty severity to "suggested".
func (r Rule) EffectiveSeverity() string {
	if r.Severity == "" {
		return "suggested"
	}
	return r.Severity
}

// Core holds the repository-level mode/name declaration.
type Core struct {
	Mode string `toml:"mode"` // "standard" | "worktrees"
	Name string `toml:"name,omitempty"`
}

// Manifest is one layer's decoded content, prior to merge.
type Manifest struct {
	Core    Core           `toml:"core"`
	Tools   []string       `toml:"tools"`
	Presets map[string]any `toml:"presets,omitempty"`
	Rules   []Rule         `toml:"rules,omitempty"`

	hasTools bool // tracks whether this layer explicitly declared `tools`
}

// knownTopLevelKeys distinguishes recognised keys from unknown ones so
// unrecognised top-level keys can be warned about rather than silently
// merged, per spec.md §6.2.
var knownTopLevelKeys = map[string]bool{
	"core": true, "tools": true, "presets": true, "rules": true,
}

// Load decodes a manifest file. A missing file is treated as an empty
// manifest, not an error. Malformed content is a ParseError naming the
// file. Unknown rule keys are fatal (to catch typos); unknown top-level
// keys are ignored (caller may log a warning via the returned slice).
func Load(path string) (Manifest, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil, nil
		}
		return Manifest{}, nil, rmerr.Filesystem(path, "read manifest", "check file permissions", err)
	}

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return Manifest{}, nil, rmerr.ParseErr(path, parseOffset(err), err)
	}

	var warnings []string
	for k := range raw {
		if !knownTopLevelKeys[k] {
			warnings = append(warnings, "unknown top-level key ignored: "+k)
		}
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return Manifest{}, warnings, rmerr.ParseErr(path, parseOffset(err), err)
	}
	if err := rejectUnknownRuleKeys(md); err != nil {
		return Manifest{}, warnings, rmerr.ParseErr(path, 0, err)
	}
	if err := rejectDuplicateRuleIDs(data, m.Rules); err != nil {
		if dup, ok := err.(*duplicateRuleIDError); ok {
			hint := fmt.Sprintf("rule id %q declared twice: first at byte offset %d, again at byte offset %d",
				dup.id, dup.firstOffset, dup.secondOffset)
			return Manifest{}, warnings, rmerr.New(rmerr.KindParse, path, "parse", hint, err)
		}
		return Manifest{}, warnings, rmerr.ParseErr(path, 0, err)
	}
	_, m.hasTools = raw["tools"]
	return m, warnings, nil
}

// ruleIDKeyRE matches a rule's `id = "..."` declaration line; used to
// recover each occurrence's byte offset within the source for diagnostics,
// since toml.MetaData exposes no per-array-element position.
func ruleIDKeyRE(id string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*id[ \t]*=[ \t]*"` + regexp.QuoteMeta(id) + `"`)
}

// ruleIDOffsets returns the byte offset of every `id = "id"` declaration
// line in data, in file order.
func ruleIDOffsets(data []byte, id string) []int {
	locs := ruleIDKeyRE(id).FindAllIndex(data, -1)
	offsets := make([]int, len(locs))
	for i, loc := range locs {
		offsets[i] = loc[0]
	}
	return offsets
}

// rejectDuplicateRuleIDs enforces the ledger/manifest invariant that two
// rules sharing an id within one document is a fatal configuration error,
// not a silent last-write-wins merge (spec.md §8 Scenario F, which requires
// naming both conflicting rules' byte offsets).
func rejectDuplicateRuleIDs(data []byte, rules []Rule) error {
	seen := map[string]int{}
	for i, r := range rules {
		if first, ok := seen[r.ID]; ok {
			offsets := ruleIDOffsets(data, r.ID)
			firstOffset, secondOffset := -1, -1
			if len(offsets) > first {
				firstOffset = offsets[first]
			}
			if len(offsets) > i {
				secondOffset = offsets[i]
			}
			return &duplicateRuleIDError{id: r.ID, firstIndex: first, secondIndex: i,
				firstOffset: firstOffset, secondOffset: secondOffset}
		}
		seen[r.ID] = i
	}
	return nil
}

type duplicateRuleIDError struct {
	id                        string
	firstIndex, secondIndex   int
	firstOffset, secondOffset int
}

func (e *duplicateRuleIDError) Error() string {
	return fmt.Sprintf("duplicate rule id %q: first declaration at index %d (byte offset %d), duplicate at index %d (byte offset %d)",
		e.id, e.firstIndex, e.firstOffset, e.secondIndex, e.secondOffset)
}

func rejectUnknownRuleKeys(md toml.MetaData) error {
	undecoded := md.Undecoded()
	for _, key := range undecoded {
		parts := key.String()
		if len(parts) >= len("rules.") && parts[:6] == "rules." {
			return &unknownRuleKeyError{key: parts}
		}
	}
	return nil
}

type unknownRuleKeyError struct{ key string }

func (e *unknownRuleKeyError) Error() string {
	return "unknown rule key: " + e.key
}

// Save encodes m as TOML and writes it atomically to path, creating or
// replacing the file. Tools is written explicitly (even when empty) so a
// subsequent Load can distinguish "no tools" from "layer silent on tools".
func Save(path string, m Manifest) error {
	if m.Tools == nil {
		m.Tools = []string{}
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(m); err != nil {
		return rmerr.New(rmerr.KindParse, path, "encode manifest", "", err)
	}
	if err := pathutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return rmerr.Filesystem(path, "write manifest", "check directory permissions", err)
	}
	return nil
}

func parseOffset(err error) int {
	if pe, ok := err.(toml.ParseError); ok {
		return pe.Position.Start
	}
	return 0
}
