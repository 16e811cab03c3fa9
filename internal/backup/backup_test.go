package backup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wgergely/repository-manager/internal/backup"
)

func TestCreateAndRestore(t *testing.T) {
	repoRoot := t.TempDir()
	backupsRoot := t.TempDir()

	configPath := filepath.Join(repoRoot, ".cursorrules")
	if err := os.WriteFile(configPath, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := backup.NewManager(backupsRoot)
	id, err := m.Create("cursor", repoRoot, []string{".cursorrules"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatalf("expected non-empty backup id")
	}

	if err := os.WriteFile(configPath, []byte("corrupted"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := m.Restore("cursor", repoRoot, id); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Errorf("expected restored content %q, got %q", "original", got)
	}
}

func TestPruneKeepsMostRecent(t *testing.T) {
	backupsRoot := t.TempDir()
	m := backup.NewManager(backupsRoot)

	for _, id := range []string{"2024-01-01T00-00-00Z", "2024-01-02T00-00-00Z", "2024-01-03T00-00-00Z"} {
		if err := os.MkdirAll(filepath.Join(backupsRoot, "cursor", id), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := m.Prune("cursor", 1)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	entries, _ := os.ReadDir(filepath.Join(backupsRoot, "cursor"))
	if len(entries) != 1 || entries[0].Name() != "2024-01-03T00-00-00Z" {
		t.Errorf("expected only most recent kept, got %v", entries)
	}
}

func TestLatestReturnsEmptyForNoBackups(t *testing.T) {
	m := backup.NewManager(t.TempDir())
	id, err := m.Latest("cursor")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}
