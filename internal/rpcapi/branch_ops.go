package rpcapi

import "github.com/wgergely/repository-manager/internal/layout"

func (s *service) detectLayout() (layout.WorkspaceLayout, error) {
	return s.layout.Detect(s.repoRoot)
}

func (s *service) BranchAdd(name, base string) (layout.BranchInfo, error) {
	l, err := s.detectLayout()
	if err != nil {
		return layout.BranchInfo{}, err
	}
	path, err := s.layout.CreateBranch(l, name, base)
	if err != nil {
		return layout.BranchInfo{}, err
	}
	return layout.BranchInfo{Name: name, Path: path}, nil
}

func (s *service) BranchRemove(name string) error {
	l, err := s.detectLayout()
	if err != nil {
		return err
	}
	return s.layout.DeleteBranch(l, name)
}

func (s *service) BranchList() ([]layout.BranchInfo, error) {
	l, err := s.detectLayout()
	if err != nil {
		return nil, err
	}
	return s.layout.ListBranches(l)
}
