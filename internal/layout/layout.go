// Package layout implements the worktree layout provider: detecting which
// of the three physical arrangements (Classic, Container, InRepoWorktrees)
// a repository uses, validating the filesystem against the declared mode,
// and driving branch lifecycle operations through the external VCS binary.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/wgergely/repository-manager/internal/pathutil"
	"github.com/wgergely/repository-manager/internal/rmerr"
)

// Mode is the detected physical arrangement of the version-control
// database and working trees. It is a refinement of the manifest's
// coarser core.mode ("standard" | "worktrees"): a declared "worktrees"
// mode is disambiguated into Container or InRepoWorktrees by inspecting
// the filesystem during Detect.
type Mode string

const (
	ModeClassic         Mode = "classic"
	ModeContainer       Mode = "container"
	ModeInRepoWorktrees Mode = "in_repo_worktrees"
)

// DeclaredMode is the manifest-level core.mode value.
type DeclaredMode string

const (
	DeclaredStandard  DeclaredMode = "standard"
	DeclaredWorktrees DeclaredMode = "worktrees"
)

// MetaDirName is the metadata directory name, constant across layouts.
const MetaDirName = ".repository"

// WorkspaceLayout is the triple (root, active_context, mode).
type WorkspaceLayout struct {
	Root          pathutil.Path
	ActiveContext pathutil.Path
	Mode          Mode
}

// MetaDir returns the metadata directory under root.
func (w WorkspaceLayout) MetaDir() pathutil.Path {
	return w.Root.Join(MetaDirName)
}

// BranchInfo describes one branch known to the layout.
type BranchInfo struct {
	Name string
	Path string // working-tree path, populated for worktree-backed branches
}

// Provider is the layout abstraction: where the repository and its
// worktrees live, and how to create/remove/list branches.
type Provider interface {
	Detect(cwd string) (WorkspaceLayout, error)
	CreateBranch(layout WorkspaceLayout, name string, base string) (string, error)
	DeleteBranch(layout WorkspaceLayout, name string) error
	ListBranches(layout WorkspaceLayout) ([]BranchInfo, error)
	CurrentBranch(layout WorkspaceLayout) (string, error)
	Push(layout WorkspaceLayout, remote, branch string) error
	Pull(layout WorkspaceLayout, remote, branch string) error
	Merge(layout WorkspaceLayout, target string) error
}

// gitProvider is the sole Provider implementation; Mode dictates which
// directory conventions it validates and which git subcommands it favors,
// but the detection/shell-out machinery is shared.
type gitProvider struct{}

// NewProvider returns the default layout provider.
func NewProvider() Provider { return &gitProvider{} }

var slugInvalidRE = regexp.MustCompile(`[^A-Za-z0-9._-]`)
var slugRunsRE = regexp.MustCompile(`-+`)

// SlugifyBranch converts a branch name to a path-safe directory slug:
// '/' becomes '-', other disallowed characters become '-', runs collapse,
// and leading/trailing '-' are stripped.
func SlugifyBranch(name string) (string, error) {
	s := strings.ReplaceAll(name, "/", "-")
	s = slugInvalidRE.ReplaceAllString(s, "-")
	s = slugRunsRE.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "", fmt.Errorf("branch name %q slugifies to empty string", name)
	}
	return s, nil
}

// findMetaDir walks upward from cwd looking for MetaDirName, mirroring the
// teacher's git-marker walk-up in worktree_detector.go.
func findMetaDir(cwd string) (string, bool) {
	dir := filepath.Clean(cwd)
	for {
		candidate := filepath.Join(dir, MetaDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func validateMode(root string, mode Mode) error {
	switch mode {
	case ModeClassic:
		// Single working tree at root; nothing additional required.
		return nil
	case ModeContainer:
		mainDir := filepath.Join(root, "main")
		if info, err := os.Stat(mainDir); err != nil || !info.IsDir() {
			return rmerr.LayoutMismatch(root, "sibling main/ working tree", "missing main/ directory")
		}
		return nil
	case ModeInRepoWorktrees:
		hidden := filepath.Join(root, ".worktrees")
		if info, err := os.Stat(hidden); err != nil || !info.IsDir() {
			return rmerr.LayoutMismatch(root, "hidden .worktrees/ subdirectory", "missing .worktrees/ directory")
		}
		return nil
	default:
		return rmerr.LayoutMismatch(root, "known mode", string(mode))
	}
}
