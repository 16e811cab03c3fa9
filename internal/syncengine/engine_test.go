package syncengine_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wgergely/repository-manager/internal/projection"
	"github.com/wgergely/repository-manager/internal/registry"
	"github.com/wgergely/repository-manager/internal/syncengine"
)

func setupRepo(t *testing.T, manifestBody string) (repoRoot string, e *syncengine.Engine) {
	t.Helper()
	registry.ResetRegistry()
	registry.MustRegisterBuiltins()

	repoRoot = t.TempDir()
	metaDir := filepath.Join(repoRoot, ".repository")
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(metaDir, "config.toml"), []byte(manifestBody), 0o644); err != nil {
		t.Fatal(err)
	}
	e = syncengine.New(repoRoot, metaDir)
	return repoRoot, e
}

const cursorOnlyManifest = `
tools = ["cursor"]

[core]
mode = "standard"

[[rules]]
id = "r1"
content = "Use gofmt before committing."
severity = "mandatory"
`

func TestSyncCreatesToolProjection(t *testing.T) {
	repoRoot, e := setupRepo(t, cursorOnlyManifest)

	report, err := e.Sync(syncengine.Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(report.Created) != 1 || report.Created[0] != "tool:cursor" {
		t.Fatalf("expected tool:cursor created, got %+v", report.Created)
	}

	data, err := os.ReadFile(filepath.Join(repoRoot, ".cursorrules"))
	if err != nil {
		t.Fatalf("expected .cursorrules written: %v", err)
	}
	if !strings.Contains(string(data), "r1") || !strings.Contains(string(data), "[REQUIRED]") {
		t.Errorf("expected rendered rule content, got %q", data)
	}

	check, err := e.Check(syncengine.Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if check.Overall != projection.StatusHealthy {
		t.Errorf("expected Healthy overall, got %v (projections %+v)", check.Overall, check.Projections)
	}
}

func TestSyncIsIdempotentAndReusesMarker(t *testing.T) {
	repoRoot, e := setupRepo(t, cursorOnlyManifest)

	if _, err := e.Sync(syncengine.Options{}); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(repoRoot, ".cursorrules"))
	if err != nil {
		t.Fatal(err)
	}

	report, err := e.Sync(syncengine.Options{})
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if len(report.Updated) != 1 {
		t.Fatalf("expected tool:cursor updated on second sync, got %+v", report)
	}
	second, err := os.ReadFile(filepath.Join(repoRoot, ".cursorrules"))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("expected identical re-render (stable marker), got:\n%s\nvs\n%s", first, second)
	}
}

func TestCheckDetectsDriftAndFixRepairs(t *testing.T) {
	repoRoot, e := setupRepo(t, cursorOnlyManifest)
	if _, err := e.Sync(syncengine.Options{}); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	path := filepath.Join(repoRoot, ".cursorrules")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(data), "gofmt", "prettier", 1)
	if err := os.WriteFile(path, []byte(tampered), 0o644); err != nil {
		t.Fatal(err)
	}

	check, err := e.Check(syncengine.Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if check.Overall != projection.StatusDrifted {
		t.Fatalf("expected Drifted after tampering, got %v (%+v)", check.Overall, check.Projections)
	}

	fixReport, err := e.Fix(syncengine.Options{})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if len(fixReport.Fixed) == 0 {
		t.Errorf("expected Fix to report at least one healed projection")
	}

	restored, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(restored), "gofmt") {
		t.Errorf("expected fix to restore original content, got %q", restored)
	}

	recheck, err := e.Check(syncengine.Options{})
	if err != nil {
		t.Fatalf("Check after fix: %v", err)
	}
	if recheck.Overall != projection.StatusHealthy {
		t.Errorf("expected Healthy after fix, got %v", recheck.Overall)
	}
}

func TestSyncRetiresDroppedTool(t *testing.T) {
	repoRoot, e := setupRepo(t, cursorOnlyManifest)
	if _, err := e.Sync(syncengine.Options{}); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := os.Stat(filepath.Join(repoRoot, ".cursorrules")); err != nil {
		t.Fatalf("expected .cursorrules to exist before retirement: %v", err)
	}

	noTools := `
tools = []

[core]
mode = "standard"
`
	if err := os.WriteFile(filepath.Join(repoRoot, ".repository", "config.toml"), []byte(noTools), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := e.Sync(syncengine.Options{})
	if err != nil {
		t.Fatalf("Sync after dropping tool: %v", err)
	}
	if len(report.Retired) != 1 || report.Retired[0] != "tool:cursor" {
		t.Fatalf("expected tool:cursor retired, got %+v", report)
	}
	if _, err := os.Stat(filepath.Join(repoRoot, ".cursorrules")); !os.IsNotExist(err) {
		t.Errorf("expected .cursorrules removed after retirement, stat err = %v", err)
	}
}

func TestSyncRetiresStaleRuleFileWhenRuleRemoved(t *testing.T) {
	twoRules := `
tools = ["claude-code"]

[core]
mode = "standard"

[[rules]]
id = "r1"
content = "Use gofmt before committing."
severity = "mandatory"

[[rules]]
id = "r2"
content = "Write table-driven tests."
severity = "suggested"
`
	repoRoot, e := setupRepo(t, twoRules)
	if _, err := e.Sync(syncengine.Options{}); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	ruleFiles, err := filepath.Glob(filepath.Join(repoRoot, ".claude", "rules", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ruleFiles) != 2 {
		t.Fatalf("expected 2 rule files before removal, got %v", ruleFiles)
	}

	oneRule := `
tools = ["claude-code"]

[core]
mode = "standard"

[[rules]]
id = "r1"
content = "Use gofmt before committing."
severity = "mandatory"
`
	if err := os.WriteFile(filepath.Join(repoRoot, ".repository", "config.toml"), []byte(oneRule), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := e.Sync(syncengine.Options{})
	if err != nil {
		t.Fatalf("Sync after removing rule: %v", err)
	}
	if len(report.Updated) != 1 || report.Updated[0] != "tool:claude-code" {
		t.Fatalf("expected tool:claude-code updated, got %+v", report)
	}

	ruleFiles, err = filepath.Glob(filepath.Join(repoRoot, ".claude", "rules", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ruleFiles) != 1 {
		t.Fatalf("expected stale rule file removed, got %v", ruleFiles)
	}

	// The ledger must no longer track the retired rule file either, so a
	// later check/fix never tries to reconcile a file that is gone.
	check, err := e.Check(syncengine.Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	for _, p := range check.Projections {
		if strings.Contains(p.File, "r2") {
			t.Errorf("expected no tracked projection for removed rule r2, got %+v", p)
		}
	}
}

func TestSyncRejectsLowerPriorityToolClaimingSameJSONKey(t *testing.T) {
	registry.ResetRegistry()
	registry.MustRegisterBuiltins()
	// Register a second JSON-backed tool targeting the exact same file and
	// instruction_key as vscode, with lower priority, so both tools'
	// "main" JsonKey write contends for the identical resource.
	registry.Register(registry.ToolDefinition{
		Meta:        registry.Meta{Slug: "zzz-json-tool", Name: "Contending JSON Tool"},
		Integration: registry.Integration{ConfigPath: ".vscode/settings.json", ConfigType: registry.ConfigJSON},
		Capabilities: registry.Capabilities{
			SupportsCustomInstructions: true,
		},
		Priority:   10,
		SchemaKeys: map[string]string{"instruction_key": "repo.managed.instructions"},
	})

	repoRoot := t.TempDir()
	metaDir := filepath.Join(repoRoot, ".repository")
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifestBody := `
tools = ["vscode", "zzz-json-tool"]

[core]
mode = "standard"

[[rules]]
id = "r1"
content = "Use gofmt before committing."
severity = "mandatory"
`
	if err := os.WriteFile(filepath.Join(metaDir, "config.toml"), []byte(manifestBody), 0o644); err != nil {
		t.Fatal(err)
	}
	e := syncengine.New(repoRoot, metaDir)

	report, err := e.Sync(syncengine.Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(report.Created) != 1 || report.Created[0] != "tool:vscode" {
		t.Fatalf("expected only the higher-priority tool:vscode to be created, got %+v", report)
	}
	if len(report.Errors) == 0 {
		t.Fatalf("expected a conflict error for the lower-priority tool, got none")
	}

	data, err := os.ReadFile(filepath.Join(repoRoot, ".vscode", "settings.json"))
	if err != nil {
		t.Fatalf("expected settings.json written by the winning tool: %v", err)
	}
	if !strings.Contains(string(data), "gofmt") {
		t.Errorf("expected the winning tool's content on disk, got %q", data)
	}

	check, err := e.Check(syncengine.Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	ownerCount := 0
	for _, p := range check.Projections {
		if strings.Contains(p.File, "settings.json") {
			ownerCount++
			if p.IntentID != "tool:vscode" {
				t.Errorf("expected only tool:vscode to own settings.json, found %q", p.IntentID)
			}
		}
	}
	if ownerCount != 1 {
		t.Errorf("expected exactly one tracked projection for settings.json, got %d", ownerCount)
	}
}

func TestSyncDryRunMakesNoChanges(t *testing.T) {
	repoRoot, e := setupRepo(t, cursorOnlyManifest)

	report, err := e.Sync(syncengine.Options{DryRun: true})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !report.DryRun || len(report.Actions) == 0 {
		t.Fatalf("expected dry-run actions recorded, got %+v", report)
	}
	if _, err := os.Stat(filepath.Join(repoRoot, ".cursorrules")); !os.IsNotExist(err) {
		t.Errorf("expected no file written during dry run, stat err = %v", err)
	}
}
