package syncengine

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/wgergely/repository-manager/internal/ledger"
	"github.com/wgergely/repository-manager/internal/registry"
	"github.com/wgergely/repository-manager/internal/translate"
)

// pendingWrite is one filesystem effect a tool's declaration should
// produce, before it has been applied and turned into a ledger.Projection.
type pendingWrite struct {
	Role       string // stable key for marker reuse across syncs, e.g. "main", "mcp", "rule:foo.md"
	Kind       ledger.Kind
	File       string // path joined onto Engine.RepoRoot
	Marker     string // text_block only
	DottedPath string // json_key only
	Value      any    // json_key only
	Body       string // file_managed / text_block content
}

var kindRank = map[ledger.Kind]int{
	ledger.KindFileManaged: 0,
	ledger.KindTextBlock:   1,
	ledger.KindJSONKey:     2,
}

// extractMarkers recovers the role->marker map an intent stored the last
// time it was written. Args round-trips through TOML as map[string]any,
// so both the freshly built and the decoded shape are accepted.
func extractMarkers(args any) map[string]string {
	out := map[string]string{}
	switch v := args.(type) {
	case map[string]string:
		for k, val := range v {
			out[k] = val
		}
	case map[string]any:
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}

// computeWrites derives the desired filesystem effects for def given its
// translated payload, reusing markers from existing (if non-nil) so a
// block's identity survives content updates (spec.md's marker-identity
// requirement: markers are allocated once and never regenerated from the
// tool/file pair).
func (e *Engine) computeWrites(def registry.ToolDefinition, payload translate.TranslatedContent, existing *ledger.Intent) []pendingWrite {
	markers := map[string]string{}
	if existing != nil {
		markers = extractMarkers(existing.Args)
	}
	marker := func(role string) string {
		if m := markers[role]; m != "" {
			return m
		}
		return uuid.New().String()
	}

	configPath := filepath.Join(e.RepoRoot, filepath.FromSlash(def.Integration.ConfigPath))
	caps := def.Capabilities

	var writes []pendingWrite
	switch def.Integration.ConfigType {
	case registry.ConfigText:
		if caps.SupportsCustomInstructions {
			writes = append(writes, pendingWrite{
				Role: "main", Kind: ledger.KindFileManaged, File: configPath, Body: payload.Instructions,
			})
		}

	case registry.ConfigMarkdown, registry.ConfigYAML, registry.ConfigTOML:
		if caps.SupportsCustomInstructions {
			writes = append(writes, pendingWrite{
				Role: "main", Kind: ledger.KindTextBlock, File: configPath,
				Marker: marker("main"), Body: payload.Instructions,
			})
		}
		if caps.SupportsMCP && len(payload.MCPServers) > 0 {
			writes = append(writes, pendingWrite{
				Role: "mcp", Kind: ledger.KindTextBlock, File: configPath,
				Marker: marker("mcp"), Body: renderMCPBlock(payload.MCPServers),
			})
		}

	case registry.ConfigJSON:
		if caps.SupportsCustomInstructions {
			key := def.SchemaKeys["instruction_key"]
			if key == "" {
				key = "managedInstructions"
			}
			writes = append(writes, pendingWrite{
				Role: "main", Kind: ledger.KindJSONKey, File: configPath,
				DottedPath: key, Value: payload.Instructions,
			})
		}
		if caps.SupportsMCP {
			if key := def.SchemaKeys["mcp_key"]; key != "" {
				writes = append(writes, pendingWrite{
					Role: "mcp", Kind: ledger.KindJSONKey, File: configPath,
					DottedPath: key, Value: mcpServersToValue(payload.MCPServers),
				})
			}
		}

	case registry.ConfigDirectory:
		// rule files (below) are this tool's entire surface.
	}

	if caps.SupportsRulesDirectory && len(def.Integration.AdditionalPaths) > 0 {
		dir := def.Integration.AdditionalPaths[0]
		for _, rf := range payload.RuleFiles {
			file := filepath.Join(e.RepoRoot, filepath.FromSlash(dir), rf.Filename)
			writes = append(writes, pendingWrite{
				Role: "rule:" + rf.Filename, Kind: ledger.KindFileManaged, File: file, Body: rf.Content,
			})
		}
	}

	sort.SliceStable(writes, func(i, j int) bool {
		return kindRank[writes[i].Kind] < kindRank[writes[j].Kind]
	})
	return writes
}

// renderMCPBlock formats an MCP server list as a managed-block section for
// tool config files in non-JSON formats (Markdown, YAML, TOML);
// SupportsMCP tools with a JSON config carry servers as structured
// values via mcpServersToValue instead.
func renderMCPBlock(servers []translate.MCPServer) string {
	var b strings.Builder
	b.WriteString("MCP servers:\n")
	for _, s := range servers {
		fmt.Fprintf(&b, "- %s: %s %s\n", s.Name, s.Command, strings.Join(s.Args, " "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// mcpServersToValue converts an MCP server list into the structured value
// a JSON-backed tool config stores it as.
func mcpServersToValue(servers []translate.MCPServer) any {
	out := make([]map[string]any, 0, len(servers))
	for _, s := range servers {
		entry := map[string]any{"command": s.Command}
		if len(s.Args) > 0 {
			entry["args"] = s.Args
		}
		if len(s.Env) > 0 {
			entry["env"] = s.Env
		}
		out = append(out, map[string]any{s.Name: entry})
	}
	return out
}

// writeKey and projectionKey identify the same filesystem resource
// (file, plus marker or dotted path where the kind has one) so a tool's
// previous projections can be diffed against its freshly computed writes:
// anything in the old set with no matching key in the new set is no longer
// emitted and must be retired (spec.md §4.6's update contract).
func writeKey(w pendingWrite) string {
	switch w.Kind {
	case ledger.KindTextBlock:
		return w.File + "#" + w.Marker
	case ledger.KindJSONKey:
		return w.File + "@" + w.DottedPath
	default:
		return w.File
	}
}

func projectionKey(p ledger.Projection) string {
	switch p.Kind {
	case ledger.KindTextBlock:
		return p.File + "#" + p.Marker
	case ledger.KindJSONKey:
		return p.File + "@" + p.Path
	default:
		return p.File
	}
}

// staleProjections returns the entries of existing not matched by any of
// writes' keys — projections a tool previously owned but no longer emits,
// e.g. a rule file after its rule was removed, or an MCP block/key after a
// capability change.
func staleProjections(existing []ledger.Projection, writes []pendingWrite) []ledger.Projection {
	keep := map[string]bool{}
	for _, w := range writes {
		keep[writeKey(w)] = true
	}
	var stale []ledger.Projection
	for _, p := range existing {
		if !keep[projectionKey(p)] {
			stale = append(stale, p)
		}
	}
	return stale
}

func fileSet(writes []pendingWrite) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range writes {
		if !seen[w.File] {
			seen[w.File] = true
			out = append(out, w.File)
		}
	}
	sort.Strings(out)
	return out
}
