package rpcapi_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wgergely/repository-manager/internal/manifest"
	"github.com/wgergely/repository-manager/internal/registry"
	"github.com/wgergely/repository-manager/internal/rpcapi"
	"github.com/wgergely/repository-manager/internal/syncengine"
)

func newCore(t *testing.T) (string, rpcapi.Core) {
	t.Helper()
	registry.ResetRegistry()
	registry.MustRegisterBuiltins()
	root := t.TempDir()
	core := rpcapi.New(root)
	if err := core.Initialise(root, "standard", nil, nil); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	return root, core
}

func TestInitialiseWritesManifest(t *testing.T) {
	root, _ := newCore(t)
	if _, err := os.Stat(filepath.Join(root, ".repository", "config.toml")); err != nil {
		t.Fatalf("expected config.toml written: %v", err)
	}
}

func TestAddToolAddRuleThenSync(t *testing.T) {
	root, core := newCore(t)

	if err := core.AddTool("cursor"); err != nil {
		t.Fatalf("AddTool: %v", err)
	}
	if err := core.AddRule(manifest.Rule{ID: "r1", Content: "Use gofmt", Severity: "mandatory"}); err != nil {
		t.Fatalf("AddRule: %v", err)
	}

	tools, err := core.ListTools()
	if err != nil || len(tools) != 1 || tools[0] != "cursor" {
		t.Fatalf("ListTools = %v, %v", tools, err)
	}

	if _, err := core.Sync(syncengine.Options{}); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".cursorrules")); err != nil {
		t.Fatalf("expected .cursorrules after sync: %v", err)
	}

	check, err := core.Check(syncengine.Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if check.Overall != "healthy" {
		t.Errorf("expected healthy, got %v", check.Overall)
	}

	intents, err := core.ListIntents()
	if err != nil {
		t.Fatalf("ListIntents: %v", err)
	}
	if len(intents) != 1 || intents[0].ID != "tool:cursor" {
		t.Fatalf("expected one tool:cursor intent, got %+v", intents)
	}
}

func TestAddRuleDuplicateIDRejected(t *testing.T) {
	_, core := newCore(t)
	rule := manifest.Rule{ID: "dup", Content: "x"}
	if err := core.AddRule(rule); err != nil {
		t.Fatalf("first AddRule: %v", err)
	}
	if err := core.AddRule(rule); err == nil {
		t.Fatalf("expected conflict error on duplicate rule id")
	}
}

func TestRemoveToolThenSyncRetiresProjection(t *testing.T) {
	root, core := newCore(t)
	if err := core.AddTool("cursor"); err != nil {
		t.Fatal(err)
	}
	if _, err := core.Sync(syncengine.Options{}); err != nil {
		t.Fatal(err)
	}
	if err := core.RemoveTool("cursor"); err != nil {
		t.Fatalf("RemoveTool: %v", err)
	}
	report, err := core.Sync(syncengine.Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(report.Retired) != 1 {
		t.Fatalf("expected one retired intent, got %+v", report)
	}
	if _, err := os.Stat(filepath.Join(root, ".cursorrules")); !os.IsNotExist(err) {
		t.Errorf("expected .cursorrules removed, stat err = %v", err)
	}
}

func TestBackupCreateAndRestore(t *testing.T) {
	root, core := newCore(t)
	if err := core.AddTool("cursor"); err != nil {
		t.Fatal(err)
	}
	if _, err := core.Sync(syncengine.Options{}); err != nil {
		t.Fatal(err)
	}

	id, err := core.BackupCreate("cursor")
	if err != nil {
		t.Fatalf("BackupCreate: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty backup id")
	}

	path := filepath.Join(root, ".cursorrules")
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := core.BackupRestore("cursor", id); err != nil {
		t.Fatalf("BackupRestore: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "corrupted" {
		t.Errorf("expected restore to overwrite corrupted content")
	}
}
