package syncengine

import (
	"github.com/wgergely/repository-manager/internal/content"
	"github.com/wgergely/repository-manager/internal/ledger"
	"github.com/wgergely/repository-manager/internal/manifest"
	"github.com/wgergely/repository-manager/internal/preset"
	"github.com/wgergely/repository-manager/internal/projection"
	"github.com/wgergely/repository-manager/internal/registry"
)

// Check inspects every active intent's projections against the filesystem
// without writing anything. Intents with no matching resolved declaration
// are reported as stale rather than checked.
func (e *Engine) Check(opts Options) (CheckReport, error) {
	resolved, err := e.resolve()
	if err != nil {
		return CheckReport{}, err
	}
	led, err := ledger.Load(e.ledgerPath())
	if err != nil {
		return CheckReport{}, err
	}

	active := activeIntentIDs(resolved)

	var report CheckReport
	for _, intent := range led.All() {
		if !active[intent.ID] {
			report.Stale = append(report.Stale, intent.ID)
			continue
		}
		for _, p := range intent.Projections {
			format := formatForProjection(p)
			status, checkErr := projection.Check(p, format)
			if checkErr != nil {
				status = projection.StatusBroken
			}
			report.Projections = append(report.Projections, ProjectionReport{
				IntentID: intent.ID, Tool: p.Tool, File: p.File, Kind: p.Kind, Status: status,
			})
		}
		if presetID, ok := presetIDFromIntent(intent.ID); ok {
			provider := e.presetProvider(presetID)
			presetReport, presetErr := provider.Check(preset.Context{RepoRoot: e.RepoRoot})
			status := presetReport.Status
			if presetErr != nil {
				status = projection.StatusBroken
			}
			report.Projections = append(report.Projections, ProjectionReport{
				IntentID: intent.ID, Tool: presetID, Status: status,
			})
		}
	}
	report.Overall = worstStatus(report.Projections)
	return report, nil
}

func (e *Engine) presetProvider(id string) preset.Provider {
	if p, ok := e.Presets[id]; ok {
		return p
	}
	return preset.NewNoop(id)
}

func presetIDFromIntent(intentID string) (string, bool) {
	const prefix = "preset:"
	if len(intentID) > len(prefix) && intentID[:len(prefix)] == prefix {
		return intentID[len(prefix):], true
	}
	return "", false
}

func formatForProjection(p ledger.Projection) content.Format {
	def, ok := registry.Get(p.Tool)
	if !ok {
		return content.FormatPlainText
	}
	return configTypeToFormat(def.Integration.ConfigType)
}

// activeIntentIDs is the set of logical intent ids the resolved
// configuration currently declares.
func activeIntentIDs(resolved manifest.ResolvedConfig) map[string]bool {
	active := map[string]bool{}
	for _, def := range orderedActiveTools(resolved) {
		active[intentIDForTool(def.Meta.Slug)] = true
	}
	for _, id := range sortedPresetIDs(resolved) {
		active[intentIDForPreset(id)] = true
	}
	return active
}
