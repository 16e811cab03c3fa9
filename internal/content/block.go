// Package content implements the per-format managed-region adapters: given
// a source text, locate, insert, update, and remove UUID-marked managed
// blocks (or, for JSON, a reserved managed key), plus a normalisation
// function used for drift detection.
package content

import (
	"fmt"
	"strings"
)

// ManagedBlock is a located block: marker identity, its content (excluding
// delimiter lines and the leading newline), and its byte span in source.
type ManagedBlock struct {
	Marker  string
	Content string
	Start   int
	End     int
}

// LocationKind selects where a new block is inserted.
type LocationKind int

const (
	LocEnd LocationKind = iota
	LocOffset
	LocAfter
	LocBefore
)

// Location is an insertion point for a new block.
type Location struct {
	Kind   LocationKind
	Offset int    // LocOffset
	Needle string // LocAfter / LocBefore
}

// AtEnd appends at the end of the source.
func AtEnd() Location { return Location{Kind: LocEnd} }

// AtOffset inserts at a specific byte position.
func AtOffset(pos int) Location { return Location{Kind: LocOffset, Offset: pos} }

// After inserts immediately after the first line containing needle.
func After(needle string) Location { return Location{Kind: LocAfter, Needle: needle} }

// Before inserts immediately before the first occurrence of needle.
func Before(needle string) Location { return Location{Kind: LocBefore, Needle: needle} }

// Edit describes the byte range in the original source that was replaced,
// and its replacement, so callers can audit what changed without
// re-diffing the whole file.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// delimiterSyntax builds the start/end marker lines for a given marker uuid
// using the format-specific comment syntax.
type delimiterSyntax struct {
	start func(marker string) string
	end   func(marker string) string
}

var tomlYamlDelimiters = delimiterSyntax{
	start: func(m string) string { return fmt.Sprintf("# repo:block:%s", m) },
	end:   func(m string) string { return fmt.Sprintf("# /repo:block:%s", m) },
}

var htmlLikeDelimiters = delimiterSyntax{
	start: func(m string) string { return fmt.Sprintf("<!-- repo:block:%s -->", m) },
	end:   func(m string) string { return fmt.Sprintf("<!-- /repo:block:%s -->", m) },
}

// findBlocks implements the block-find policy: iterate opening markers in
// source order; the matching end is the first literal occurrence of the
// closing string after the opening marker; unmatched openings are ignored;
// nested blocks with the same marker are disallowed, outer wins.
func findBlocks(source string, d delimiterSyntax) []ManagedBlock {
	var blocks []ManagedBlock
	searchFrom := 0
	for {
		openIdx, marker := nextOpenMarker(source, searchFrom, d)
		if openIdx < 0 {
			break
		}
		openLine := d.start(marker)
		contentStart := openIdx + len(openLine)
		if contentStart < len(source) && source[contentStart] == '\n' {
			contentStart++
		}
		closeLine := d.end(marker)
		closeIdx := strings.Index(source[contentStart:], closeLine)
		if closeIdx < 0 {
			// Unmatched opening; ignore and keep scanning past it.
			searchFrom = openIdx + len(openLine)
			continue
		}
		closeIdx += contentStart
		blockContent := source[contentStart:closeIdx]
		blockEnd := closeIdx + len(closeLine)
		blocks = append(blocks, ManagedBlock{
			Marker:  marker,
			Content: blockContent,
			Start:   openIdx,
			End:     blockEnd,
		})
		searchFrom = blockEnd
	}
	return blocks
}

// nextOpenMarker scans source from `from` for the next `# repo:block:{uuid}`
// or `<!-- repo:block:{uuid} -->`-shaped opening marker, returning its
// index and the extracted marker uuid, or (-1, "") if none remain.
func nextOpenMarker(source string, from int, d delimiterSyntax) (int, string) {
	// Determine the literal prefix/suffix around the uuid by asking the
	// delimiter function for a placeholder and splitting on it.
	const placeholder = "\x00UUID\x00"
	template := d.start(placeholder)
	parts := strings.SplitN(template, placeholder, 2)
	prefix, suffix := parts[0], parts[1]

	idx := strings.Index(source[from:], prefix)
	for idx >= 0 {
		absIdx := from + idx
		rest := source[absIdx+len(prefix):]
		endIdx := strings.Index(rest, suffix)
		if endIdx < 0 {
			idx = strings.Index(source[absIdx+1:], prefix)
			if idx >= 0 {
				idx += absIdx + 1 - from
			}
			continue
		}
		candidate := rest[:endIdx]
		if looksLikeUUID(candidate) {
			return absIdx, candidate
		}
		nextFrom := absIdx + 1
		rel := strings.Index(source[nextFrom:], prefix)
		if rel < 0 {
			return -1, ""
		}
		idx = nextFrom + rel - from
	}
	return -1, ""
}

func looksLikeUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i, c := range s {
		switch i {
		case 8, 13, 18, 23:
			if c != '-' {
				return false
			}
		default:
			if !isHex(byte(c)) {
				return false
			}
		}
	}
	return true
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// resolveInsertPos maps a Location to a concrete byte offset in source,
// ensuring the byte immediately before the marker is a newline.
func resolveInsertPos(source string, loc Location) int {
	switch loc.Kind {
	case LocOffset:
		return clamp(loc.Offset, 0, len(source))
	case LocAfter:
		lineEnd := findLineEnd(source, loc.Needle)
		if lineEnd < 0 {
			return len(source)
		}
		return lineEnd
	case LocBefore:
		idx := strings.Index(source, loc.Needle)
		if idx < 0 {
			return len(source)
		}
		return idx
	default: // LocEnd
		return len(source)
	}
}

func findLineEnd(source, needle string) int {
	idx := strings.Index(source, needle)
	if idx < 0 {
		return -1
	}
	nl := strings.IndexByte(source[idx:], '\n')
	if nl < 0 {
		return len(source)
	}
	return idx + nl + 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// insertBlockAt builds the new source with a block inserted at pos,
// ensuring a newline precedes the opening marker.
func insertBlockAt(source string, pos int, d delimiterSyntax, marker, blockContent string) (string, Edit) {
	prefix := source[:pos]
	suffix := source[pos:]
	if len(prefix) > 0 && !strings.HasSuffix(prefix, "\n") {
		prefix += "\n"
	}
	var body strings.Builder
	body.WriteString(d.start(marker))
	body.WriteByte('\n')
	body.WriteString(blockContent)
	if blockContent != "" && !strings.HasSuffix(blockContent, "\n") {
		body.WriteByte('\n')
	}
	body.WriteString(d.end(marker))
	body.WriteByte('\n')

	newSource := prefix + body.String() + suffix
	return newSource, Edit{Start: pos, End: pos, Replacement: prefix[pos:] + body.String()}
}

func updateBlockInPlace(source string, block ManagedBlock, d delimiterSyntax, newContent string) (string, Edit) {
	var body strings.Builder
	body.WriteString(d.start(block.Marker))
	body.WriteByte('\n')
	body.WriteString(newContent)
	if newContent != "" && !strings.HasSuffix(newContent, "\n") {
		body.WriteByte('\n')
	}
	body.WriteString(d.end(block.Marker))

	newSource := source[:block.Start] + body.String() + source[block.End:]
	return newSource, Edit{Start: block.Start, End: block.End, Replacement: body.String()}
}

func removeBlockFromSource(source string, block ManagedBlock) (string, Edit) {
	start, end := block.Start, block.End
	// Consume one trailing newline after the block, so removal doesn't
	// leave a stray blank line; the newline before the block is kept.
	if end < len(source) && source[end] == '\n' {
		end++
	}
	newSource := source[:start] + source[end:]
	return newSource, Edit{Start: start, End: end, Replacement: ""}
}
