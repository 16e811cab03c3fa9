package manifest

import (
	"errors"
	"path/filepath"

	"github.com/adrg/xdg"
)

// ErrLayerNotConfigured is returned by the org/global layer loaders: the
// source spec documents these as future layers with no concrete discovery
// rule yet. Implementers leave the slot and report "not configured" when
// consulted, per the Open Question in spec.md §9.
var ErrLayerNotConfigured = errors.New("manifest layer not configured")

// ResolvedConfig is the merge of all layers in descending precedence:
// local override, repository manifest, organisation manifest, global
// manifest.
type ResolvedConfig struct {
	Tools   []string // ordered, unique
	Rules   []Rule   // ordered by id-replace merge
	Presets map[string]any
	Mode    string
}

// loadOrgManifest is the reserved organisation-layer slot. No discovery
// rule exists yet; it always reports not-configured.
func loadOrgManifest(_ string) (Manifest, error) {
	return Manifest{}, ErrLayerNotConfigured
}

// loadGlobalManifest is the reserved global-layer slot, read from the
// user's XDG config home once a concrete source is defined. It always
// reports not-configured today; the path is computed so wiring a real
// source later is a one-line change.
func loadGlobalManifest() (Manifest, error) {
	_ = filepath.Join(xdg.ConfigHome, "repo-manager", "config.toml")
	return Manifest{}, ErrLayerNotConfigured
}

// Resolve merges the four layers into a ResolvedConfig. metaDir is the
// metadata directory itself (e.g. "<repo>/.repository"), holding
// config.toml and config.local.toml.
func Resolve(metaDir string) (ResolvedConfig, []string, error) {
	var allWarnings []string

	repoManifest, warnings, err := Load(filepath.Join(metaDir, "config.toml"))
	allWarnings = append(allWarnings, warnings...)
	if err != nil {
		return ResolvedConfig{}, allWarnings, err
	}

	localManifest, warnings, err := Load(filepath.Join(metaDir, "config.local.toml"))
	allWarnings = append(allWarnings, warnings...)
	if err != nil {
		return ResolvedConfig{}, allWarnings, err
	}

	orgManifest, err := loadOrgManifest(metaDir)
	if err != nil && !errors.Is(err, ErrLayerNotConfigured) {
		return ResolvedConfig{}, allWarnings, err
	}

	globalManifest, err := loadGlobalManifest()
	if err != nil && !errors.Is(err, ErrLayerNotConfigured) {
		return ResolvedConfig{}, allWarnings, err
	}

	// Precedence, lowest to highest: global, org, repository, local.
	layers := []Manifest{globalManifest, orgManifest, repoManifest, localManifest}

	resolved := ResolvedConfig{Presets: map[string]any{}}
	for _, layer := range layers {
		mergeInto(&resolved, layer)
	}
	if resolved.Mode == "" {
		resolved.Mode = "standard"
	}
	return resolved, allWarnings, nil
}

func mergeInto(dst *ResolvedConfig, layer Manifest) {
	if layer.Core.Mode != "" {
		dst.Mode = layer.Core.Mode
	}
	if layer.hasTools {
		dst.Tools = unionPreserveOrder(layer.Tools)
	}
	for k, v := range layer.Presets {
		dst.Presets[k] = v
	}
	dst.Rules = mergeRulesByID(dst.Rules, layer.Rules)
}

func unionPreserveOrder(tools []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tools {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// mergeRulesByID appends layer rules, replacing any existing rule sharing
// an id, preserving the position of the first occurrence.
func mergeRulesByID(base []Rule, overrides []Rule) []Rule {
	index := map[string]int{}
	out := make([]Rule, len(base))
	copy(out, base)
	for i, r := range out {
		index[r.ID] = i
	}
	for _, r := range overrides {
		if i, ok := index[r.ID]; ok {
			out[i] = r
		} else {
			index[r.ID] = len(out)
			out = append(out, r)
		}
	}
	return out
}
