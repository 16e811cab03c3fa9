package content

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// jsonAdapter implements the Adapter contract for JSON. JSON carries no
// textual markers; a TextBlock projection targeting a JSON file is
// represented by a reserved top-level key `__repo_managed_{uuid}` holding
// the block's translated content as a JSON string value.
type jsonAdapter struct{}

var jsonMarkerKeyRE = regexp.MustCompile(`^__repo_managed_([0-9a-fA-F-]{36})$`)

func markerKey(marker string) string { return "__repo_managed_" + marker }

func (jsonAdapter) FindBlocks(source string) []ManagedBlock {
	if !gjson.Valid(source) {
		return nil
	}
	var blocks []ManagedBlock
	gjson.Parse(source).ForEach(func(key, value gjson.Result) bool {
		m := jsonMarkerKeyRE.FindStringSubmatch(key.String())
		if m == nil {
			return true
		}
		blocks = append(blocks, ManagedBlock{
			Marker:  m[1],
			Content: value.String(),
		})
		return true
	})
	return blocks
}

func (jsonAdapter) InsertBlock(source, marker, blockContent string, _ Location) (string, Edit) {
	origLen := len(source)
	if source == "" {
		source = "{}"
	}
	out, err := sjson.Set(source, markerKey(marker), blockContent)
	if err != nil {
		return source, Edit{}
	}
	return out, Edit{End: origLen, Replacement: out}
}

func (jsonAdapter) UpdateBlock(source, marker, blockContent string) (string, Edit, bool) {
	if !gjson.Get(source, markerKey(marker)).Exists() {
		return source, Edit{}, false
	}
	out, err := sjson.Set(source, markerKey(marker), blockContent)
	if err != nil {
		return source, Edit{}, false
	}
	return out, Edit{End: len(source), Replacement: out}, true
}

func (jsonAdapter) RemoveBlock(source, marker string) (string, Edit, bool) {
	key := markerKey(marker)
	if !gjson.Get(source, key).Exists() {
		return source, Edit{}, false
	}
	out, err := sjson.Delete(source, key)
	if err != nil {
		return source, Edit{}, false
	}
	return out, Edit{End: len(source), Replacement: out}, true
}

func (jsonAdapter) Normalise(source string) (any, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(source), &raw); err != nil {
		return nil, fmt.Errorf("normalise json: %w", err)
	}
	return canonicalise(raw), nil
}

func (jsonAdapter) Render(parsed any) (string, error) {
	b, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render json: %w", err)
	}
	return string(b), nil
}

// JSONAdapter exposes the JSON adapter for callers that need the Adapter
// contract directly; content.For returns the same adapter for ConfigJSON.
func JSONAdapter() Adapter { return jsonAdapter{} }
