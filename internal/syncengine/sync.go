package syncengine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wgergely/repository-manager/internal/ledger"
	"github.com/wgergely/repository-manager/internal/manifest"
	"github.com/wgergely/repository-manager/internal/pathutil"
	"github.com/wgergely/repository-manager/internal/preset"
	"github.com/wgergely/repository-manager/internal/projection"
	"github.com/wgergely/repository-manager/internal/registry"
	"github.com/wgergely/repository-manager/internal/translate"
)

// Sync reconciles the filesystem to the resolved configuration: every
// declared tool and preset gets (or keeps) an intent with fresh
// projections; every intent with no matching declaration is retired.
// Ordering follows spec.md §4.6: tool projections by tool priority
// descending/slug ascending, preset-owned projections last.
func (e *Engine) Sync(opts Options) (SyncReport, error) {
	report := SyncReport{DryRun: opts.DryRun}

	resolved, err := e.resolve()
	if err != nil {
		return report, err
	}

	ledgerLock := pathutil.NewLock(e.ledgerPath() + ".lock")
	if err := ledgerLock.Acquire(lockTimeoutOf(opts)); err != nil {
		return report, err
	}
	defer ledgerLock.Release()

	led, err := ledger.Load(e.ledgerPath())
	if err != nil {
		return report, err
	}

	active := activeIntentIDs(resolved)

	for _, def := range orderedActiveTools(resolved) {
		if err := e.syncTool(led, def, resolved.Rules, opts, &report); err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("tool %q: %w", def.Meta.Slug, err))
		}
	}
	for _, id := range sortedPresetIDs(resolved) {
		if err := e.syncPreset(led, id, opts, &report); err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("preset %q: %w", id, err))
		}
	}
	for _, intent := range led.All() {
		if active[intent.ID] {
			continue
		}
		if err := e.retireIntent(led, intent, opts, &report); err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("retire %q: %w", intent.ID, err))
		}
	}

	if !opts.DryRun {
		if err := led.Save(); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (e *Engine) syncTool(led *ledger.Ledger, def registry.ToolDefinition, rules []manifest.Rule, opts Options, report *SyncReport) error {
	id := intentIDForTool(def.Meta.Slug)
	existing := firstIntent(led.ByID(id))

	caps := translate.Capabilities{
		SupportsCustomInstructions: def.Capabilities.SupportsCustomInstructions,
		SupportsMCP:                def.Capabilities.SupportsMCP,
		SupportsRulesDirectory:     def.Capabilities.SupportsRulesDirectory,
	}
	payload := translate.Translate(caps, rules, nil)
	writes := e.computeWrites(def, payload, existing)

	var stale []ledger.Projection
	if existing != nil {
		stale = staleProjections(existing.Projections, writes)
	}

	// Pre-flight the conflict check against the ledger's current state
	// before any filesystem write is attempted, so a losing tool's write
	// never lands on disk (spec.md §8 Scenario F): the first-registered
	// intent keeps the resource, the second-registered is rejected here,
	// not after it has already clobbered the winner's file.
	prospective := make([]ledger.Projection, len(writes))
	for i, w := range writes {
		prospective[i] = ledger.Projection{Tool: def.Meta.Slug, File: w.File, Kind: w.Kind, Marker: w.Marker, Path: w.DottedPath}
	}
	if err := led.CheckConflicts(id, prospective); err != nil {
		return err
	}

	if opts.DryRun {
		verb := "update"
		if existing == nil {
			verb = "create"
		}
		for _, w := range writes {
			report.Actions = append(report.Actions, fmt.Sprintf("%s %s: %s %s", verb, id, w.Kind, w.File))
		}
		for _, p := range stale {
			report.Actions = append(report.Actions, fmt.Sprintf("retire stale %s: %s %s", id, p.Kind, p.File))
		}
		if existing == nil {
			report.Created = append(report.Created, id)
		} else {
			report.Updated = append(report.Updated, id)
		}
		return nil
	}

	lockPaths := fileSet(writes)
	for _, p := range stale {
		lockPaths = append(lockPaths, p.File)
	}
	locks, err := acquireFileLocks(dedupeSorted(lockPaths), opts)
	if err != nil {
		return err
	}
	defer releaseFileLocks(locks)

	newUUID := uuid.New().String()
	if existing != nil {
		newUUID = existing.UUID
	}

	projections, markers, err := applyWritesAndRetireStale(def, writes, stale)
	if err != nil {
		return err
	}

	newIntent := ledger.Intent{ID: id, UUID: newUUID, Timestamp: time.Now().UTC(), Projections: projections, Args: markers}

	if existing == nil {
		if err := led.Add(newIntent); err != nil {
			return err
		}
		report.Created = append(report.Created, id)
	} else {
		if err := led.Upsert(newIntent); err != nil {
			return err
		}
		report.Updated = append(report.Updated, id)
	}
	return nil
}

// applyWritesAndRetireStale applies every pending write and removes every
// stale projection, grouping operations by file: two writes sharing one
// file (e.g. a "main" and "mcp" text block in the same config) would race
// each other if applied concurrently (both read-modify-write the whole
// file), so each file's operations run in sequence, while distinct files
// are processed concurrently under a bounded errgroup. The returned
// projection slice preserves writes' order (computeWrites' kindRank order)
// regardless of which file group finishes first.
func applyWritesAndRetireStale(def registry.ToolDefinition, writes []pendingWrite, stale []ledger.Projection) ([]ledger.Projection, map[string]string, error) {
	writeIdxByFile := map[string][]int{}
	for i, w := range writes {
		writeIdxByFile[w.File] = append(writeIdxByFile[w.File], i)
	}
	staleByFile := map[string][]ledger.Projection{}
	for _, p := range stale {
		staleByFile[p.File] = append(staleByFile[p.File], p)
	}

	seen := map[string]bool{}
	var files []string
	for _, w := range writes {
		if !seen[w.File] {
			seen[w.File] = true
			files = append(files, w.File)
		}
	}
	for _, p := range stale {
		if !seen[p.File] {
			seen[p.File] = true
			files = append(files, p.File)
		}
	}
	sort.Strings(files)

	projections := make([]ledger.Projection, len(writes))
	markers := map[string]string{}
	var mu sync.Mutex

	g := newGroup()
	for _, file := range files {
		file := file
		g.Go(func() error {
			for _, i := range writeIdxByFile[file] {
				w := writes[i]
				var p ledger.Projection
				var applyErr error
				switch w.Kind {
				case ledger.KindFileManaged:
					p, applyErr = projection.ApplyFileManaged(def.Meta.Slug, w.File, w.Body)
				case ledger.KindTextBlock:
					format := configTypeToFormat(def.Integration.ConfigType)
					p, applyErr = projection.ApplyTextBlock(def.Meta.Slug, w.File, w.Marker, format, w.Body)
				case ledger.KindJSONKey:
					p, applyErr = projection.ApplyJSONKey(def.Meta.Slug, w.File, w.DottedPath, w.Value)
				}
				if applyErr != nil {
					return applyErr
				}
				projections[i] = p
				if w.Kind == ledger.KindTextBlock {
					mu.Lock()
					markers[w.Role] = w.Marker
					mu.Unlock()
				}
			}
			for _, p := range staleByFile[file] {
				var err error
				switch p.Kind {
				case ledger.KindFileManaged:
					err = projection.RemoveFileManaged(p.File)
				case ledger.KindTextBlock:
					err = projection.RemoveTextBlock(p.File, p.Marker, formatForProjection(p))
				case ledger.KindJSONKey:
					err = projection.RemoveJSONKey(p.File, p.Path)
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return projections, markers, nil
}

// dedupeSorted returns paths deduplicated and sorted, for stable lock
// acquisition order.
func dedupeSorted(paths []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (e *Engine) syncPreset(led *ledger.Ledger, id string, opts Options, report *SyncReport) error {
	intentID := intentIDForPreset(id)
	existing := firstIntent(led.ByID(intentID))
	provider := e.presetProvider(id)
	ctx := preset.Context{RepoRoot: e.RepoRoot}

	presetReport, err := provider.Check(ctx)
	if err != nil {
		return err
	}
	if presetReport.Status != projection.StatusHealthy {
		if opts.DryRun {
			report.Actions = append(report.Actions, fmt.Sprintf("apply preset %s: %s", id, presetReport.Details))
		} else {
			result, err := provider.Apply(ctx)
			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("preset %q apply reported failure", id)
			}
		}
	}

	if existing == nil {
		if opts.DryRun {
			report.Created = append(report.Created, intentID)
			return nil
		}
		if err := led.Add(ledger.Intent{ID: intentID, UUID: uuid.New().String(), Timestamp: time.Now().UTC()}); err != nil {
			return err
		}
		report.Created = append(report.Created, intentID)
	} else if !opts.DryRun {
		report.Updated = append(report.Updated, intentID)
	}
	return nil
}

// retireIntent removes every projection a no-longer-declared intent owns,
// then drops the intent itself.
func (e *Engine) retireIntent(led *ledger.Ledger, intent ledger.Intent, opts Options, report *SyncReport) error {
	if opts.DryRun {
		report.Actions = append(report.Actions, fmt.Sprintf("retire %s (%d projections)", intent.ID, len(intent.Projections)))
		report.Retired = append(report.Retired, intent.ID)
		return nil
	}

	byFile := map[string][]ledger.Projection{}
	var files []string
	seen := map[string]bool{}
	for _, p := range intent.Projections {
		if !seen[p.File] {
			seen[p.File] = true
			files = append(files, p.File)
		}
		byFile[p.File] = append(byFile[p.File], p)
	}
	sort.Strings(files)

	locks, err := acquireFileLocks(files, opts)
	if err != nil {
		return err
	}
	defer releaseFileLocks(locks)

	g := newGroup()
	for _, file := range files {
		projs := byFile[file]
		g.Go(func() error {
			for _, p := range projs {
				var err error
				switch p.Kind {
				case ledger.KindFileManaged:
					err = projection.RemoveFileManaged(p.File)
				case ledger.KindTextBlock:
					err = projection.RemoveTextBlock(p.File, p.Marker, formatForProjection(p))
				case ledger.KindJSONKey:
					err = projection.RemoveJSONKey(p.File, p.Path)
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	led.Remove(intent.UUID)
	report.Retired = append(report.Retired, intent.ID)
	return nil
}
