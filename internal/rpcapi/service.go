package rpcapi

import (
	"path/filepath"

	"github.com/wgergely/repository-manager/internal/backup"
	"github.com/wgergely/repository-manager/internal/layout"
	"github.com/wgergely/repository-manager/internal/manifest"
	"github.com/wgergely/repository-manager/internal/rmerr"
	"github.com/wgergely/repository-manager/internal/syncengine"
)

// service is the sole Core implementation, bound to one repository root.
type service struct {
	repoRoot string
	metaDir  string
	engine   *syncengine.Engine
	layout   layout.Provider
	backups  *backup.Manager
}

// New returns a Core bound to repoRoot, whose metadata directory is the
// fixed name the layout layer uses across every physical arrangement.
func New(repoRoot string) Core {
	metaDir := filepath.Join(repoRoot, layout.MetaDirName)
	return &service{
		repoRoot: repoRoot,
		metaDir:  metaDir,
		engine:   syncengine.New(repoRoot, metaDir),
		layout:   layout.NewProvider(),
		backups:  backup.NewManager(filepath.Join(metaDir, "backups")),
	}
}

func (s *service) configPath() string { return filepath.Join(s.metaDir, "config.toml") }

// Initialise bootstraps a repository's metadata directory and writes the
// initial repository manifest. root must match the root this Core was
// constructed with.
func (s *service) Initialise(root, mode string, tools []string, presets map[string]any) error {
	if filepath.Clean(root) != filepath.Clean(s.repoRoot) {
		return rmerr.New(rmerr.KindLayoutMismatch, root, "initialise",
			"root does not match the repository this core was opened against", nil)
	}
	if mode == "" {
		mode = string(layout.DeclaredStandard)
	}
	if presets == nil {
		presets = map[string]any{}
	}
	m := manifest.Manifest{
		Core:    manifest.Core{Mode: mode},
		Tools:   tools,
		Presets: presets,
	}
	return manifest.Save(s.configPath(), m)
}

func (s *service) loadRepoManifest() (manifest.Manifest, error) {
	m, _, err := manifest.Load(s.configPath())
	return m, err
}
