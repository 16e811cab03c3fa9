// Package rpcapi exposes the core's operations as one explicit verb per
// method, decoupled from any particular frontend (CLI, JSON-RPC, …); a
// frontend owns flags and wire framing, rpcapi owns behaviour.
package rpcapi

import (
	"github.com/wgergely/repository-manager/internal/layout"
	"github.com/wgergely/repository-manager/internal/manifest"
	"github.com/wgergely/repository-manager/internal/syncengine"
)

// Core is the full verb surface spec.md §6.5 names, plus the supplemented
// list_intents and backup_prune verbs.
type Core interface {
	Initialise(root string, mode string, tools []string, presets map[string]any) error

	AddTool(slug string) error
	RemoveTool(slug string) error
	AddRule(rule manifest.Rule) error
	RemoveRule(id string) error
	AddPreset(id string, opts map[string]any) error
	RemovePreset(id string) error

	Check(opts syncengine.Options) (syncengine.CheckReport, error)
	Sync(opts syncengine.Options) (syncengine.SyncReport, error)
	Fix(opts syncengine.Options) (syncengine.SyncReport, error)

	ListTools() ([]string, error)
	ListRules() ([]manifest.Rule, error)
	ListPresets() (map[string]any, error)
	ListIntents() ([]IntentSummary, error)

	BranchAdd(name, base string) (layout.BranchInfo, error)
	BranchRemove(name string) error
	BranchList() ([]layout.BranchInfo, error)

	BackupCreate(tool string) (string, error)
	BackupRestore(tool, id string) error
	BackupPrune(tool string, keep int) (int, error)
}

// IntentSummary is the list_intents projection of an intent: enough to
// audit what the ledger currently owns without exposing its internal
// encoding.
type IntentSummary struct {
	ID              string
	UUID            string
	ProjectionCount int
	Files           []string
}
