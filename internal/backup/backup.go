// Package backup snapshots a tool's configuration files on request and can
// restore them, keyed by tool slug and an RFC 3339-derived timestamp. The
// sync engine's sync and fix do not create snapshots themselves.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wgergely/repository-manager/internal/pathutil"
	"github.com/wgergely/repository-manager/internal/rmerr"
)

// Sidecar records which paths were backed up and their original checksums.
type Sidecar struct {
	Tool      string            `json:"tool"`
	CreatedAt time.Time         `json:"created_at"`
	Checksums map[string]string `json:"checksums"` // relative path -> sha256
}

// Manager snapshots and restores tool configuration files under a
// metadata-relative backups root ({meta}/backups/{tool}/{timestamp}/...).
type Manager struct {
	root string // {meta}/backups
}

// NewManager returns a Manager rooted at backupsRoot.
func NewManager(backupsRoot string) *Manager {
	return &Manager{root: backupsRoot}
}

// now is overridable in tests that need a fixed clock; production code
// always uses time.Now.
var now = func() time.Time { return time.Now().UTC() }

// Create snapshots every path in files (paths relative to repoRoot) for
// tool, returning the backup id: its timestamp directory name, an RFC 3339
// UTC time with ':' replaced by '-' (e.g. "2024-05-01T12-30-00Z").
func (m *Manager) Create(tool, repoRoot string, files []string) (string, error) {
	id := now().Format("2006-01-02T15-04-05Z07-00")
	dir := filepath.Join(m.root, tool, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", rmerr.Filesystem(dir, "create backup directory", "check directory permissions", err)
	}

	sidecar := Sidecar{Tool: tool, CreatedAt: now(), Checksums: map[string]string{}}
	for _, rel := range files {
		src := filepath.Join(repoRoot, rel)
		data, err := os.ReadFile(src)
		if err != nil {
			if os.IsNotExist(err) {
				continue // nothing to back up yet
			}
			return "", rmerr.Filesystem(src, "read for backup", "check file permissions", err)
		}
		dst := filepath.Join(dir, rel)
		if err := pathutil.WriteFileAtomic(dst, data, 0o644); err != nil {
			return "", rmerr.Filesystem(dst, "write backup copy", "check directory permissions", err)
		}
		sum := sha256.Sum256(data)
		sidecar.Checksums[rel] = hex.EncodeToString(sum[:])
	}

	sidecarBytes, err := json.MarshalIndent(sidecar, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup sidecar: %w", err)
	}
	if err := pathutil.WriteFileAtomic(filepath.Join(dir, "manifest.json"), sidecarBytes, 0o644); err != nil {
		return "", rmerr.Filesystem(dir, "write backup sidecar", "check directory permissions", err)
	}
	return id, nil
}

// Restore replaces the live files for tool with the contents of backup id.
func (m *Manager) Restore(tool, repoRoot, id string) error {
	dir := filepath.Join(m.root, tool, id)
	sidecarPath := filepath.Join(dir, "manifest.json")
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return rmerr.Filesystem(sidecarPath, "read backup sidecar", "verify the backup id exists", err)
	}
	var sidecar Sidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return rmerr.ParseErr(sidecarPath, 0, err)
	}
	for rel := range sidecar.Checksums {
		src := filepath.Join(dir, rel)
		content, err := os.ReadFile(src)
		if err != nil {
			return rmerr.Filesystem(src, "read backup copy", "the backup directory may be corrupted", err)
		}
		dst := filepath.Join(repoRoot, rel)
		if err := pathutil.WriteFileAtomic(dst, content, 0o644); err != nil {
			return rmerr.Filesystem(dst, "restore from backup", "check directory permissions", err)
		}
	}
	return nil
}

// Latest returns the most recent backup id for tool, or "" if none exist.
func (m *Manager) Latest(tool string) (string, error) {
	dir := filepath.Join(m.root, tool)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", rmerr.Filesystem(dir, "list backups", "check directory permissions", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	if len(ids) == 0 {
		return "", nil
	}
	sort.Strings(ids) // RFC 3339-derived names sort chronologically
	return ids[len(ids)-1], nil
}

// Prune keeps only the most recent `keep` backups for tool, deleting the
// rest. This is the explicit retention operation spec.md §4.8 names as
// "not specified here".
func (m *Manager) Prune(tool string, keep int) (int, error) {
	dir := filepath.Join(m.root, tool)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, rmerr.Filesystem(dir, "list backups", "check directory permissions", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	if keep < 0 {
		keep = 0
	}
	if len(ids) <= keep {
		return 0, nil
	}
	toRemove := ids[:len(ids)-keep]
	for _, id := range toRemove {
		if err := os.RemoveAll(filepath.Join(dir, id)); err != nil {
			return 0, rmerr.Filesystem(filepath.Join(dir, id), "prune backup", "check directory permissions", err)
		}
	}
	return len(toRemove), nil
}
