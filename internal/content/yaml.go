package content

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlAdapter struct{ markerAdapter }

func newYAMLAdapter() yamlAdapter {
	return yamlAdapter{markerAdapter{delims: tomlYamlDelimiters}}
}

func (yamlAdapter) Normalise(source string) (any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(source), &raw); err != nil {
		return nil, fmt.Errorf("normalise yaml: %w", err)
	}
	return canonicalise(deepStringifyKeys(raw)), nil
}

func (yamlAdapter) Render(parsed any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(parsed); err != nil {
		return "", fmt.Errorf("render yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render yaml: %w", err)
	}
	return buf.String(), nil
}

// deepStringifyKeys converts yaml.v3's map[string]interface{} (and any
// nested map[string]interface{} produced for mapping nodes) into plain
// map[string]any recursively so canonicalise's type switch applies
// uniformly regardless of source format.
func deepStringifyKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepStringifyKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = deepStringifyKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepStringifyKeys(e)
		}
		return out
	default:
		return t
	}
}
