package rpcapi

import (
	"path/filepath"

	"github.com/wgergely/repository-manager/internal/ledger"
)

// ListIntents surfaces the ledger's current intents for audit; not part of
// spec.md's verb list, but a natural complement to check/sync/fix once the
// ledger exists as a queryable record.
func (s *service) ListIntents() ([]IntentSummary, error) {
	led, err := ledger.Load(filepath.Join(s.metaDir, "ledger.toml"))
	if err != nil {
		return nil, err
	}
	intents := led.All()
	out := make([]IntentSummary, 0, len(intents))
	for _, in := range intents {
		files := make([]string, 0, len(in.Projections))
		for _, p := range in.Projections {
			files = append(files, p.File)
		}
		out = append(out, IntentSummary{
			ID: in.ID, UUID: in.UUID, ProjectionCount: len(in.Projections), Files: files,
		})
	}
	return out, nil
}
