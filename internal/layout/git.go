package layout

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/wgergely/repository-manager/internal/rmerr"
)

const gitTimeout = 10 * time.Second

// runGit shells out to the git binary, the same pattern used for worktree
// detection: bounded context, working directory pinned, stderr captured
// verbatim for BackendError.
func runGit(dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", rmerr.Backend(dir, "git "+strings.Join(args, " "), stderr.String(), err)
	}
	return stdout.String(), nil
}

func (p *gitProvider) CreateBranch(l WorkspaceLayout, name string, base string) (string, error) {
	slug, err := SlugifyBranch(name)
	if err != nil {
		return "", fmt.Errorf("create branch %q: %w", name, err)
	}
	root := l.Root.Native()

	switch l.Mode {
	case ModeClassic:
		args := []string{"branch", name}
		if base != "" {
			args = append(args, base)
		}
		if _, err := runGit(root, args...); err != nil {
			return "", err
		}
		return root, nil
	case ModeContainer, ModeInRepoWorktrees:
		var worktreeDir string
		if l.Mode == ModeContainer {
			worktreeDir = filepath.Join(root, slug)
		} else {
			worktreeDir = filepath.Join(root, ".worktrees", slug)
		}
		args := []string{"worktree", "add", worktreeDir, "-b", name}
		if base != "" {
			args = append(args, base)
		}
		if _, err := runGit(root, args...); err != nil {
			return "", err
		}
		return worktreeDir, nil
	default:
		return "", rmerr.NotImplementedErr(root, "unknown layout mode")
	}
}

func (p *gitProvider) DeleteBranch(l WorkspaceLayout, name string) error {
	slug, err := SlugifyBranch(name)
	if err != nil {
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	root := l.Root.Native()

	switch l.Mode {
	case ModeClassic:
		_, err := runGit(root, "branch", "-D", name)
		return err
	case ModeContainer, ModeInRepoWorktrees:
		var worktreeDir string
		if l.Mode == ModeContainer {
			worktreeDir = filepath.Join(root, slug)
		} else {
			worktreeDir = filepath.Join(root, ".worktrees", slug)
		}
		if _, err := runGit(root, "worktree", "remove", worktreeDir, "--force"); err != nil {
			return err
		}
		_, err := runGit(root, "branch", "-D", name)
		return err
	default:
		return rmerr.NotImplementedErr(root, "unknown layout mode")
	}
}

func (p *gitProvider) ListBranches(l WorkspaceLayout) ([]BranchInfo, error) {
	root := l.Root.Native()
	out, err := runGit(root, "for-each-ref", "--format=%(refname:short)", "refs/heads/")
	if err != nil {
		return nil, err
	}
	worktrees, err := p.listWorktrees(root)
	if err != nil {
		return nil, err
	}
	var infos []BranchInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		infos = append(infos, BranchInfo{Name: line, Path: worktrees[line]})
	}
	return infos, nil
}

// listWorktrees maps branch name -> worktree path using `git worktree list
// --porcelain`.
func (p *gitProvider) listWorktrees(root string) (map[string]string, error) {
	out, err := runGit(root, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	result := map[string]string{}
	var curPath string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			curPath = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "branch "):
			ref := strings.TrimPrefix(line, "branch ")
			name := strings.TrimPrefix(ref, "refs/heads/")
			result[name] = curPath
		}
	}
	return result, nil
}

func (p *gitProvider) CurrentBranch(l WorkspaceLayout) (string, error) {
	out, err := runGit(l.ActiveContext.Native(), "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (p *gitProvider) Push(l WorkspaceLayout, remote, branch string) error {
	args := []string{"push"}
	if remote != "" {
		args = append(args, remote)
	}
	if branch != "" {
		args = append(args, branch)
	}
	_, err := runGit(l.ActiveContext.Native(), args...)
	return err
}

func (p *gitProvider) Pull(l WorkspaceLayout, remote, branch string) error {
	args := []string{"pull"}
	if remote != "" {
		args = append(args, remote)
	}
	if branch != "" {
		args = append(args, branch)
	}
	_, err := runGit(l.ActiveContext.Native(), args...)
	return err
}

func (p *gitProvider) Merge(l WorkspaceLayout, target string) error {
	_, err := runGit(l.ActiveContext.Native(), "merge", target)
	return err
}
