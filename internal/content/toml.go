package content

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

type tomlAdapter struct{ markerAdapter }

func newTOMLAdapter() tomlAdapter {
	return tomlAdapter{markerAdapter{delims: tomlYamlDelimiters}}
}

// Normalise parses the document to a generic map/sequence/scalar tree and
// sorts map keys, used purely for drift comparison; the stored form on
// disk remains format-preserving.
func (tomlAdapter) Normalise(source string) (any, error) {
	var raw map[string]any
	if _, err := toml.Decode(source, &raw); err != nil {
		return nil, fmt.Errorf("normalise toml: %w", err)
	}
	return canonicalise(raw), nil
}

func (tomlAdapter) Render(parsed any) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(parsed); err != nil {
		return "", fmt.Errorf("render toml: %w", err)
	}
	return buf.String(), nil
}

var tomlAdapterSingleton = newTOMLAdapter()
