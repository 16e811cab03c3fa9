package syncengine

import (
	"fmt"

	"github.com/wgergely/repository-manager/internal/projection"
)

// Fix runs a check, then reconciles the filesystem exactly as Sync does.
// Because sync's apply step is idempotent (it re-renders and re-writes
// every declared projection rather than only the ones that look wrong),
// fixing is sync preceded by a record of what was unhealthy beforehand.
func (e *Engine) Fix(opts Options) (SyncReport, error) {
	before, err := e.Check(opts)
	if err != nil {
		return SyncReport{}, err
	}

	report, err := e.Sync(opts)
	if err != nil {
		return report, err
	}

	for _, p := range before.Projections {
		if p.Status == "" {
			continue
		}
		if p.Status != projection.StatusHealthy {
			report.Fixed = append(report.Fixed, fmt.Sprintf("%s:%s:%s", p.Tool, p.File, p.Kind))
		}
	}
	return report, nil
}
