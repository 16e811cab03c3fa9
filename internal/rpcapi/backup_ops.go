package rpcapi

import (
	"path/filepath"

	"github.com/wgergely/repository-manager/internal/ledger"
)

// toolFiles returns the repo-relative files the ledger currently
// attributes to tool, derived from its active projections.
func (s *service) toolFiles(tool string) ([]string, error) {
	led, err := ledger.Load(filepath.Join(s.metaDir, "ledger.toml"))
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, ip := range led.ByTool(tool) {
		rel, err := filepath.Rel(s.repoRoot, ip.Projection.File)
		if err != nil {
			rel = ip.Projection.File
		}
		if !seen[rel] {
			seen[rel] = true
			out = append(out, rel)
		}
	}
	return out, nil
}

func (s *service) BackupCreate(tool string) (string, error) {
	files, err := s.toolFiles(tool)
	if err != nil {
		return "", err
	}
	return s.backups.Create(tool, s.repoRoot, files)
}

func (s *service) BackupRestore(tool, id string) error {
	return s.backups.Restore(tool, s.repoRoot, id)
}

func (s *service) BackupPrune(tool string, keep int) (int, error) {
	return s.backups.Prune(tool, keep)
}
