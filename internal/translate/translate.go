// Package translate converts a resolved rule set and a tool's capability
// set into a translated payload suitable for that tool's format. It never
// branches on tool identity — only on the capability booleans.
package translate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/wgergely/repository-manager/internal/manifest"
)

// Capabilities is the slim capability view Translate needs, decoupled
// from the registry package's ToolDefinition to avoid a layering cycle
// (internal/syncengine builds it from a ToolDefinition before calling
// Translate).
type Capabilities struct {
	SupportsCustomInstructions bool
	SupportsMCP                bool
	SupportsRulesDirectory     bool
}

// MCPServer is one entry in an optional RPC-server list.
type MCPServer struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string
}

// RuleFile is one rule rendered as a standalone file, for tools whose
// writer places rules under additional_paths.
type RuleFile struct {
	Filename string
	Content  string
}

// TranslatedContent is the output of a translation: an ordered
// instructions block, an optional RPC-server list, an optional per-rule
// file set.
type TranslatedContent struct {
	Instructions string
	MCPServers   []MCPServer
	RuleFiles    []RuleFile
	Data         map[string]any
}

// Translate builds a TranslatedContent for caps from rules, sorted by
// severity (mandatory first) then stable input order (spec.md §3, §4.7).
func Translate(caps Capabilities, rules []manifest.Rule, mcpServers []MCPServer) TranslatedContent {
	ordered := sortBySeverity(rules)

	out := TranslatedContent{Data: map[string]any{}}
	if caps.SupportsCustomInstructions {
		out.Instructions = renderInstructions(ordered)
	}
	if caps.SupportsMCP {
		out.MCPServers = mcpServers
	}
	if caps.SupportsRulesDirectory {
		out.RuleFiles = renderRuleFiles(ordered)
	}
	return out
}

// sortBySeverity returns rules in mandatory-first, then-suggested order,
// each group preserving its original relative order (a stable sort keyed
// on severity rank achieves this).
func sortBySeverity(rules []manifest.Rule) []manifest.Rule {
	out := make([]manifest.Rule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool {
		return severityRank(out[i]) < severityRank(out[j])
	})
	return out
}

func severityRank(r manifest.Rule) int {
	if r.EffectiveSeverity() == "mandatory" {
		return 0
	}
	return 1
}

// renderInstructions formats each rule as a stable, human-readable
// section prefixed with [REQUIRED] or [Suggested], including file-pattern
// hints and examples if present.
func renderInstructions(rules []manifest.Rule) string {
	var b strings.Builder
	for i, r := range rules {
		if i > 0 {
			b.WriteString("\n")
		}
		label := "[Suggested]"
		if r.EffectiveSeverity() == "mandatory" {
			label = "[REQUIRED]"
		}
		fmt.Fprintf(&b, "%s %s: %s\n", label, r.ID, r.Content)
		if len(r.FilePatterns) > 0 {
			fmt.Fprintf(&b, "  Applies to: %s\n", strings.Join(r.FilePatterns, ", "))
		}
		for _, ex := range r.Examples {
			fmt.Fprintf(&b, "  Example: %s\n", ex)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var unsafeRuleIDChar = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// renderRuleFiles emits one file per rule, named by a sanitised rule id
// (alphanumeric, hyphen, underscore only; truncated to 64 chars). Collisions
// after sanitisation/truncation get a hexadecimal counter suffix (-1, -2,
// ...); the suffix is not derived from a hash of the rule id.
func renderRuleFiles(rules []manifest.Rule) []RuleFile {
	used := map[string]bool{}
	out := make([]RuleFile, 0, len(rules))
	for _, r := range rules {
		name := sanitiseRuleFilename(r.ID, used)
		content := r.Content
		if len(r.FilePatterns) > 0 {
			content += "\n\nApplies to: " + strings.Join(r.FilePatterns, ", ")
		}
		out = append(out, RuleFile{Filename: name + ".md", Content: content})
	}
	return out
}

func sanitiseRuleFilename(id string, used map[string]bool) string {
	safe := unsafeRuleIDChar.ReplaceAllString(id, "-")
	if len(safe) > 64 {
		safe = safe[:64]
	}
	if safe == "" {
		safe = "rule"
	}
	candidate := safe
	for n := 1; used[candidate]; n++ {
		suffix := fmt.Sprintf("-%x", n)
		cut := 64 - len(suffix)
		if cut < 0 {
			cut = 0
		}
		if cut > len(safe) {
			cut = len(safe)
		}
		candidate = safe[:cut] + suffix
	}
	used[candidate] = true
	return candidate
}
