// Package registry holds the tool descriptor table: a data-driven
// declaration of each supported AI-assistant/editor tool's configuration
// file location, format, and capabilities. Dispatch never branches on
// tool identity — a new tool is a new descriptor, not new code.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// ConfigType is the closed set of configuration file shapes a tool's
// config can take.
type ConfigType string

const (
	ConfigText      ConfigType = "text"
	ConfigJSON      ConfigType = "json"
	ConfigYAML      ConfigType = "yaml"
	ConfigMarkdown  ConfigType = "markdown"
	ConfigTOML      ConfigType = "toml"
	ConfigDirectory ConfigType = "directory"
)

// Capabilities is the boolean set of translator-output classes a tool
// descriptor advertises.
type Capabilities struct {
	SupportsCustomInstructions bool `yaml:"supports_custom_instructions"`
	SupportsMCP                bool `yaml:"supports_mcp"`
	SupportsRulesDirectory     bool `yaml:"supports_rules_directory"`
}

// Integration describes where and in what shape a tool's config lives.
type Integration struct {
	ConfigPath      string     `yaml:"config_path"`
	ConfigType      ConfigType `yaml:"config_type"`
	AdditionalPaths []string   `yaml:"additional_paths,omitempty"`
}

// Meta is the tool's identity.
type Meta struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// ToolDefinition is the full descriptor for one tool.
type ToolDefinition struct {
	Meta         Meta              `yaml:"meta"`
	Integration  Integration       `yaml:"integration"`
	Capabilities Capabilities      `yaml:"capabilities"`
	Priority     int               `yaml:"priority"`
	Category     string            `yaml:"category,omitempty"`
	SchemaKeys   map[string]string `yaml:"schema_keys,omitempty"` // e.g. "instruction_key", "mcp_key"
}

var (
	mu       sync.RWMutex
	registry = map[string]ToolDefinition{}
)

// Register adds or replaces a descriptor by slug.
func Register(def ToolDefinition) {
	mu.Lock()
	defer mu.Unlock()
	registry[def.Meta.Slug] = def
}

// Get returns the descriptor for slug.
func Get(slug string) (ToolDefinition, bool) {
	mu.RLock()
	defer mu.RUnlock()
	def, ok := registry[slug]
	return def, ok
}

// All returns every registered descriptor sorted by priority descending,
// then slug ascending — the deterministic tool-processing order spec.md
// §4.6 requires.
func All() []ToolDefinition {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]ToolDefinition, 0, len(registry))
	for _, def := range registry {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Meta.Slug < out[j].Meta.Slug
	})
	return out
}

// ResetRegistry clears all registered descriptors; used by tests.
func ResetRegistry() {
	mu.Lock()
	defer mu.Unlock()
	registry = map[string]ToolDefinition{}
}

// MustRegisterBuiltins populates the registry with the fixed set of
// built-in descriptors. Called once at process start.
func MustRegisterBuiltins() {
	for _, def := range builtinDefinitions {
		if def.Meta.Slug == "" {
			panic(fmt.Sprintf("builtin tool descriptor missing slug: %+v", def))
		}
		Register(def)
	}
}
