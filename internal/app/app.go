// Package app implements the application layer behind the CLI: inspection,
// statistics, cleaning and verification of a build-data root.
package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"go.trai.ch/zerr"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/depot/internal/engine/manager"
)

// App exposes the store operations offered by the CLI.
type App struct {
	manager *manager.Manager
	tel     ports.Telemetry
	log     ports.Logger
}

// New creates the application layer over an open manager.
func New(m *manager.Manager, tel ports.Telemetry, log ports.Logger) *App {
	return &App{manager: m, tel: tel, log: log}
}

// Manager returns the underlying store manager.
func (a *App) Manager() *manager.Manager { return a.manager }

// SourceOutputs is one source file with the outputs it produced.
type SourceOutputs struct {
	Source  string
	Outputs []string
}

// TargetReport is the dump of one target's recorded build data.
type TargetReport struct {
	Target  domain.Target
	ID      int
	Sources []SourceOutputs
}

// Inspect dumps the recorded source-to-output data of one target. A target
// without persisted data reports domain.ErrTargetUnknown; inspection never
// allocates an id.
func (a *App) Inspect(_ context.Context, target domain.Target) (*TargetReport, error) {
	id, ok, err := a.manager.TargetsState().LookupID(target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, zerr.With(domain.ErrTargetUnknown, "target", target.String())
	}

	srcOut, err := a.manager.SourceToOutputMap(target)
	if err != nil {
		return nil, err
	}
	cursor, err := srcOut.Cursor()
	if err != nil {
		return nil, err
	}

	report := &TargetReport{Target: target, ID: id}
	for cursor.Next() {
		report.Sources = append(report.Sources, SourceOutputs{
			Source:  cursor.Source(),
			Outputs: cursor.Outputs(),
		})
	}
	slices.SortFunc(report.Sources, func(x, y SourceOutputs) int {
		return strings.Compare(x.Source, y.Source)
	})
	return report, nil
}

// TypeStats summarizes one target type.
type TypeStats struct {
	TypeID             string
	LiveTargets        int
	StaleTargets       int
	AverageBuildTimeMs int64
}

// Stats summarizes the whole data root.
type Stats struct {
	MaxTargetID         int
	LastRebuildDuration time.Duration
	Types               []TypeStats
}

// Stats reports target counts, the id high-water mark and historic build
// times per type.
func (a *App) Stats(_ context.Context) (*Stats, error) {
	state := a.manager.TargetsState()

	typeIDs, err := state.TypeIDs()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		MaxTargetID:         state.MaxID(),
		LastRebuildDuration: state.LastSuccessfulRebuildDuration(),
	}
	for _, typeID := range typeIDs {
		live, err := state.LiveTargets(typeID)
		if err != nil {
			return nil, err
		}
		stale, err := state.StaleTargets(typeID)
		if err != nil {
			return nil, err
		}
		avg, err := state.AverageBuildTime(typeID)
		if err != nil {
			return nil, err
		}
		stats.Types = append(stats.Types, TypeStats{
			TypeID:             typeID,
			LiveTargets:        len(live),
			StaleTargets:       len(stale),
			AverageBuildTimeMs: avg,
		})
	}
	return stats, nil
}

// CleanAll wipes the data root, running deferred deletions concurrently.
func (a *App) CleanAll(ctx context.Context) error {
	_, vtx := a.tel.Record(ctx, "clean build data")

	var g errgroup.Group
	err := a.manager.Clean(func(task func() error) {
		g.Go(task)
	})
	if waitErr := g.Wait(); waitErr != nil && err == nil {
		err = waitErr
	}
	vtx.Complete(err)
	return err
}

// VerifyIssue is one inconsistency found between the forward mappings and
// the reverse index.
type VerifyIssue struct {
	Target domain.Target
	Output string
	Reason string
}

// VerifyReport summarizes a consistency walk over the store.
type VerifyReport struct {
	TargetsChecked int
	OutputsChecked int
	Issues         []VerifyIssue
}

// Verify walks every live target's source-to-output mapping and cross-checks
// the reverse index. Targets are checked concurrently; inconsistencies are
// reported, not fixed: the reverse index is advisory and a lagging entry
// only means a wasted cleanup check.
func (a *App) Verify(ctx context.Context) (*VerifyReport, error) {
	ctx, vtx := a.tel.Record(ctx, "verify build data")

	state := a.manager.TargetsState()
	typeIDs, err := state.TypeIDs()
	if err != nil {
		vtx.Complete(err)
		return nil, err
	}

	report := &VerifyReport{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, typeID := range typeIDs {
		live, err := state.LiveTargets(typeID)
		if err != nil {
			vtx.Complete(err)
			return nil, err
		}
		for stringID, intID := range live {
			target := domain.NewTarget(typeID, stringID)
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				checked, issues, err := a.verifyTarget(target, intID)
				if err != nil {
					return err
				}
				mu.Lock()
				report.TargetsChecked++
				report.OutputsChecked += checked
				report.Issues = append(report.Issues, issues...)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		vtx.Complete(err)
		return nil, err
	}

	slices.SortFunc(report.Issues, func(x, y VerifyIssue) int {
		return strings.Compare(x.Target.String()+x.Output, y.Target.String()+y.Output)
	})
	if len(report.Issues) == 0 {
		vtx.Cached()
	} else {
		a.log.Warn(fmt.Sprintf("verify found %d inconsistencies", len(report.Issues)))
		fmt.Fprintf(vtx.Stdout(), "found %d inconsistencies\n", len(report.Issues))
		vtx.Complete(nil)
	}
	return report, nil
}

func (a *App) verifyTarget(target domain.Target, intID int) (int, []VerifyIssue, error) {
	srcOut, err := a.manager.SourceToOutputMap(target)
	if err != nil {
		return 0, nil, err
	}
	cursor, err := srcOut.Cursor()
	if err != nil {
		return 0, nil, err
	}

	index := a.manager.OutputToTargetIndex()
	checked := 0
	var issues []VerifyIssue
	for cursor.Next() {
		for _, output := range cursor.Outputs() {
			checked++
			owners, err := index.TargetIDs(output)
			if err != nil {
				return checked, issues, err
			}
			if !slices.Contains(owners, intID) {
				issues = append(issues, VerifyIssue{
					Target: target,
					Output: output,
					Reason: "output missing from reverse index",
				})
			}
		}
	}
	return checked, issues, nil
}
