package ledger_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/wgergely/repository-manager/internal/ledger"
)

func TestAddAndByTool(t *testing.T) {
	l := ledger.New(filepath.Join(t.TempDir(), "ledger.toml"))
	intent := ledger.Intent{
		ID:        "tool:cursor",
		UUID:      "aaaa",
		Timestamp: time.Now(),
		Projections: []ledger.Projection{
			{Tool: "cursor", File: ".cursorrules", Kind: ledger.KindFileManaged, Checksum: "deadbeef"},
		},
	}
	if err := l.Add(intent); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got := l.ByTool("cursor")
	if len(got) != 1 {
		t.Fatalf("expected 1 projection for cursor, got %d", len(got))
	}
}

func TestAddConflictingProjectionRejected(t *testing.T) {
	l := ledger.New(filepath.Join(t.TempDir(), "ledger.toml"))
	first := ledger.Intent{
		ID: "tool:vscode", UUID: "1",
		Projections: []ledger.Projection{
			{Tool: "vscode", File: ".vscode/settings.json", Kind: ledger.KindJSONKey, Path: "repo.instructions"},
		},
	}
	second := ledger.Intent{
		ID: "tool:other", UUID: "2",
		Projections: []ledger.Projection{
			{Tool: "other", File: ".vscode/settings.json", Kind: ledger.KindJSONKey, Path: "repo.instructions"},
		},
	}
	if err := l.Add(first); err != nil {
		t.Fatalf("Add first: %v", err)
	}
	if err := l.Add(second); err == nil {
		t.Fatalf("expected conflict error for second intent")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.toml")
	l := ledger.New(path)
	intent := ledger.Intent{
		ID: "tool:cursor", UUID: "aaaa", Timestamp: time.Now().UTC().Truncate(time.Second),
		Projections: []ledger.Projection{
			{Tool: "cursor", File: ".cursorrules", Kind: ledger.KindTextBlock, Marker: "m1", Checksum: "abc"},
		},
	}
	if err := l.Add(intent); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := l.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := ledger.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	all := loaded.All()
	if len(all) != 1 || all[0].UUID != "aaaa" {
		t.Fatalf("expected round-tripped intent, got %+v", all)
	}
}

func TestLoadMissingFileIsEmptyLedger(t *testing.T) {
	l, err := ledger.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(l.All()) != 0 {
		t.Errorf("expected empty ledger")
	}
}

func TestRemoveIntent(t *testing.T) {
	l := ledger.New(filepath.Join(t.TempDir(), "ledger.toml"))
	intent := ledger.Intent{ID: "tool:x", UUID: "u1"}
	if err := l.Add(intent); err != nil {
		t.Fatal(err)
	}
	removed, ok := l.Remove("u1")
	if !ok || removed.ID != "tool:x" {
		t.Fatalf("expected removal of u1")
	}
	if len(l.All()) != 0 {
		t.Errorf("expected empty ledger after removal")
	}
}
