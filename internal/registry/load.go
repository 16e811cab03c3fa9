package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wgergely/repository-manager/internal/rmerr"
	"gopkg.in/yaml.v3"
)

// LoadExternalDescriptors reads every *.yaml/*.yml file in dir, validates
// it against the embedded descriptor schema, and registers it. Descriptors
// are data: this is the only mechanism for adding a tool without a code
// change (spec.md §9 "tool descriptor is data, not code").
func LoadExternalDescriptors(dir string) ([]ToolDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, rmerr.Filesystem(dir, "list tool descriptors", "check directory permissions", err)
	}

	var loaded []ToolDefinition
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		def, err := loadOneDescriptor(path)
		if err != nil {
			return loaded, err
		}
		Register(def)
		loaded = append(loaded, def)
	}
	return loaded, nil
}

func loadOneDescriptor(path string) (ToolDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ToolDefinition{}, rmerr.Filesystem(path, "read tool descriptor", "check file permissions", err)
	}

	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return ToolDefinition{}, rmerr.ParseErr(path, 0, err)
	}
	if err := ValidateDescriptorDoc(jsonify(generic)); err != nil {
		return ToolDefinition{}, rmerr.ParseErr(path, 0, fmt.Errorf("%s: %w", path, err))
	}

	var def ToolDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return ToolDefinition{}, rmerr.ParseErr(path, 0, err)
	}
	return def, nil
}

// jsonify converts yaml.v3's map[string]any (which may nest map[string]any
// already, yaml.v3 unlike v2 decodes mappings to map[string]any) into a
// form the JSON Schema validator accepts; yaml.v3 already produces
// JSON-compatible types for scalars, so this mostly normalises nested
// maps defensively.
func jsonify(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonify(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonify(e)
		}
		return out
	default:
		return t
	}
}
