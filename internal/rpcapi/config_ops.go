package rpcapi

import (
	"github.com/wgergely/repository-manager/internal/manifest"
	"github.com/wgergely/repository-manager/internal/rmerr"
)

func (s *service) AddTool(slug string) error {
	m, err := s.loadRepoManifest()
	if err != nil {
		return err
	}
	for _, t := range m.Tools {
		if t == slug {
			return nil // already active; adding is idempotent
		}
	}
	m.Tools = append(m.Tools, slug)
	return manifest.Save(s.configPath(), m)
}

func (s *service) RemoveTool(slug string) error {
	m, err := s.loadRepoManifest()
	if err != nil {
		return err
	}
	out := m.Tools[:0]
	for _, t := range m.Tools {
		if t != slug {
			out = append(out, t)
		}
	}
	m.Tools = out
	return manifest.Save(s.configPath(), m)
}

func (s *service) AddRule(rule manifest.Rule) error {
	m, err := s.loadRepoManifest()
	if err != nil {
		return err
	}
	for _, r := range m.Rules {
		if r.ID == rule.ID {
			return rmerr.New(rmerr.KindConflict, rule.ID, "add rule",
				"a rule with this id already exists; remove it first or pick a different id", nil)
		}
	}
	m.Rules = append(m.Rules, rule)
	return manifest.Save(s.configPath(), m)
}

func (s *service) RemoveRule(id string) error {
	m, err := s.loadRepoManifest()
	if err != nil {
		return err
	}
	out := m.Rules[:0]
	for _, r := range m.Rules {
		if r.ID != id {
			out = append(out, r)
		}
	}
	m.Rules = out
	return manifest.Save(s.configPath(), m)
}

func (s *service) AddPreset(id string, opts map[string]any) error {
	m, err := s.loadRepoManifest()
	if err != nil {
		return err
	}
	if m.Presets == nil {
		m.Presets = map[string]any{}
	}
	if opts == nil {
		opts = map[string]any{}
	}
	m.Presets[id] = opts
	return manifest.Save(s.configPath(), m)
}

func (s *service) RemovePreset(id string) error {
	m, err := s.loadRepoManifest()
	if err != nil {
		return err
	}
	delete(m.Presets, id)
	return manifest.Save(s.configPath(), m)
}

func (s *service) ListTools() ([]string, error) {
	resolved, _, err := manifest.Resolve(s.metaDir)
	if err != nil {
		return nil, err
	}
	return resolved.Tools, nil
}

func (s *service) ListRules() ([]manifest.Rule, error) {
	resolved, _, err := manifest.Resolve(s.metaDir)
	if err != nil {
		return nil, err
	}
	return resolved.Rules, nil
}

func (s *service) ListPresets() (map[string]any, error) {
	resolved, _, err := manifest.Resolve(s.metaDir)
	if err != nil {
		return nil, err
	}
	return resolved.Presets, nil
}
