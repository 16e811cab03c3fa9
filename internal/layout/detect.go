package layout

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/wgergely/repository-manager/internal/pathutil"
	"github.com/wgergely/repository-manager/internal/rmerr"
)

type coreModeDoc struct {
	Core struct {
		Mode DeclaredMode `toml:"mode"`
		Name string       `toml:"name"`
	} `toml:"core"`
}

// readDeclaredMode reads only core.mode from {meta}/config.toml, tolerating
// a missing file as DeclaredStandard (the resolver treats missing manifests
// as empty per spec.md §4.1; detection needs a mode before the resolver
// layer even runs, so it applies the same "absence is empty" rule locally).
func readDeclaredMode(metaDir string) (DeclaredMode, error) {
	configPath := filepath.Join(metaDir, "config.toml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DeclaredStandard, nil
		}
		return "", fmt.Errorf("read %q: %w", configPath, err)
	}
	var doc coreModeDoc
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return "", rmerr.ParseErr(configPath, 0, err)
	}
	if doc.Core.Mode == "" {
		return DeclaredStandard, nil
	}
	return doc.Core.Mode, nil
}

// Detect walks upward from cwd to find the metadata directory, reads the
// declared mode, and validates the filesystem against it.
func (p *gitProvider) Detect(cwd string) (WorkspaceLayout, error) {
	root, found := findMetaDir(cwd)
	if !found {
		return WorkspaceLayout{}, rmerr.New(rmerr.KindFilesystem, cwd, "locate repository metadata directory",
			fmt.Sprintf("run `repomgr init` to create %s", MetaDirName), nil)
	}
	declared, err := readDeclaredMode(filepath.Join(root, MetaDirName))
	if err != nil {
		return WorkspaceLayout{}, err
	}

	var detected Mode
	switch declared {
	case DeclaredStandard:
		detected = ModeClassic
		if err := validateMode(root, detected); err != nil {
			return WorkspaceLayout{}, err
		}
	case DeclaredWorktrees:
		hidden := filepath.Join(root, ".worktrees")
		mainSibling := filepath.Join(root, "main")
		switch {
		case dirExists(hidden):
			detected = ModeInRepoWorktrees
		case dirExists(mainSibling):
			detected = ModeContainer
		default:
			return WorkspaceLayout{}, rmerr.LayoutMismatch(root,
				"either a hidden .worktrees/ directory or a sibling main/ working tree",
				"neither found")
		}
		if err := validateMode(root, detected); err != nil {
			return WorkspaceLayout{}, err
		}
	default:
		return WorkspaceLayout{}, rmerr.LayoutMismatch(root, `"standard" or "worktrees"`, string(declared))
	}

	return WorkspaceLayout{
		Root:          pathutil.New(root),
		ActiveContext: pathutil.New(cwd),
		Mode:          detected,
	}, nil
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
