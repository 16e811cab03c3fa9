package content

// Format is the closed set of source formats the core edits.
type Format string

const (
	FormatTOML      Format = "toml"
	FormatYAML      Format = "yaml"
	FormatMarkdown  Format = "markdown"
	FormatPlainText Format = "plaintext"
	FormatHTML      Format = "html"
	FormatJSON      Format = "json"
)

// Adapter is the managed-region contract every format implements.
type Adapter interface {
	FindBlocks(source string) []ManagedBlock
	InsertBlock(source, marker, blockContent string, loc Location) (string, Edit)
	UpdateBlock(source, marker, blockContent string) (string, Edit, bool)
	RemoveBlock(source, marker string) (string, Edit, bool)
	Normalise(source string) (any, error)
	Render(parsed any) (string, error)
}

// For returns the Adapter for a format.
func For(f Format) Adapter {
	switch f {
	case FormatTOML:
		return newTOMLAdapter()
	case FormatYAML:
		return newYAMLAdapter()
	case FormatMarkdown:
		return newMarkdownAdapter()
	case FormatPlainText:
		return newPlainTextAdapter()
	case FormatHTML:
		return newHTMLAdapter()
	case FormatJSON:
		return jsonAdapter{}
	default:
		return nil
	}
}

// markerAdapter implements the four block operations shared by every
// marker-delimited format; only delimiter syntax and normalisation differ
// per format.
type markerAdapter struct {
	delims delimiterSyntax
}

func (a markerAdapter) FindBlocks(source string) []ManagedBlock {
	return findBlocks(source, a.delims)
}

func (a markerAdapter) InsertBlock(source, marker, blockContent string, loc Location) (string, Edit) {
	pos := resolveInsertPos(source, loc)
	return insertBlockAt(source, pos, a.delims, marker, blockContent)
}

func (a markerAdapter) UpdateBlock(source, marker, blockContent string) (string, Edit, bool) {
	for _, b := range findBlocks(source, a.delims) {
		if b.Marker == marker {
			newSource, edit := updateBlockInPlace(source, b, a.delims, blockContent)
			return newSource, edit, true
		}
	}
	return source, Edit{}, false
}

func (a markerAdapter) RemoveBlock(source, marker string) (string, Edit, bool) {
	for _, b := range findBlocks(source, a.delims) {
		if b.Marker == marker {
			newSource, edit := removeBlockFromSource(source, b)
			return newSource, edit, true
		}
	}
	return source, Edit{}, false
}
