package syncengine

import (
	"github.com/wgergely/repository-manager/internal/ledger"
	"github.com/wgergely/repository-manager/internal/projection"
)

// ProjectionReport is one projection's observed health during a check.
type ProjectionReport struct {
	IntentID string
	Tool     string
	File     string
	Kind     ledger.Kind
	Status   projection.Status
}

// CheckReport is the outcome of Engine.Check.
type CheckReport struct {
	Projections []ProjectionReport
	Stale       []string // intent ids with no matching resolved declaration
	Overall     projection.Status
}

// SyncReport is the outcome of Engine.Sync or Engine.Fix.
type SyncReport struct {
	DryRun  bool
	Created []string // intent ids newly registered
	Updated []string // intent ids re-applied
	Retired []string // intent ids removed
	Fixed   []string // "tool:file:kind" entries that were non-Healthy before this run (Fix only)
	Actions []string // human-readable description of what would happen, dry-run only
	Errors  []error
}

func firstIntent(intents []ledger.Intent) *ledger.Intent {
	if len(intents) == 0 {
		return nil
	}
	in := intents[0]
	return &in
}

var statusRank = map[projection.Status]int{
	projection.StatusHealthy: 0,
	projection.StatusMissing: 1,
	projection.StatusDrifted: 2,
	projection.StatusBroken:  3,
}

func worstStatus(reports []ProjectionReport) projection.Status {
	worst := projection.StatusHealthy
	for _, r := range reports {
		if statusRank[r.Status] > statusRank[worst] {
			worst = r.Status
		}
	}
	return worst
}
