package manager

import (
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"go.trai.ch/zerr"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/depot/internal/engine/graph"
)

// CleanStaleTarget removes the persisted data of a parked target. The target
// is removed from the stale list even when the data removal failed, so a
// broken storage cannot wedge the stale queue.
func (m *Manager) CleanStaleTarget(typeID, stringID string) (err error) {
	var stales []domain.StaleTarget
	stales, err = m.state.StaleTargets(typeID)
	if err != nil {
		return err
	}
	for _, stale := range stales {
		if stale.ID != stringID {
			continue
		}
		defer func() {
			if removeErr := m.state.RemoveStaleTarget(typeID, stringID); removeErr != nil && err == nil {
				err = removeErr
			}
		}()
		m.evictTarget(stale.IntID)
		err = m.backend.RemoveMaps(targetPrefix(stale.IntID))
		return err
	}
	return nil
}

// CleanTargetStorages drops a target's stamps and generated-form data. The
// source-to-output mapping survives: the build driver still needs it to
// delete the target's output files before rebuilding.
func (m *Manager) CleanTargetStorages(target domain.Target) error {
	id, err := m.state.TargetID(target)
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.stampsBy, id)
	delete(m.srcForm, id)
	m.mu.Unlock()

	if err := m.backend.RemoveMaps(stampsMapName(id)); err != nil {
		return err
	}
	return m.backend.RemoveMaps(srcFormMapName(id))
}

// CloseSourceToOutputStorages evicts the cached source-to-output mappings of
// the given targets. All are attempted; the first error wins.
func (m *Manager) CloseSourceToOutputStorages(targetList []domain.Target) error {
	var firstErr error
	for _, target := range targetList {
		id, err := m.state.TargetID(target)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		m.mu.Lock()
		delete(m.srcOut, id)
		m.mu.Unlock()
	}
	return firstErr
}

// Clean wipes every storage of the data root and stamps the fresh state with
// the current version. Every step is attempted even when an earlier one
// fails; failures are logged and joined. Deletions that are safe to defer
// are handed to asyncTaskCollector when one is provided, otherwise they run
// inline.
func (m *Manager) Clean(asyncTaskCollector func(task func() error)) error {
	m.mu.Lock()
	m.srcOut = make(map[int]ports.SourceToOutputMapping)
	m.srcForm = make(map[int]ports.OneToManyPathMapping)
	m.stampsBy = make(map[int]ports.StampStorage)
	m.mu.Unlock()

	var errs []error
	step := func(name string, err error) {
		if err != nil {
			err = zerr.With(zerr.Wrap(err, "clean step failed"), "step", name)
			m.log.Error(err)
			errs = append(errs, err)
		}
	}

	step("graph", m.depGraph.Close())
	step("backend", m.backend.Clean())
	step("targets", m.state.Clean())

	// The backend recreates its maps lazily, so the graph and the reverse
	// index reopen on the wiped store.
	g, err := graph.Open(m.backend, m.log)
	step("graph reopen", err)
	if err == nil {
		m.depGraph = g
	}
	outMap, err := m.backend.Map(outputIndexMapName)
	step("output index reopen", err)
	if err == nil {
		m.outMap = outMap
		m.outIndex.Reset(outMap)
	}

	// Stray files from older layouts are never recreated, so their removal
	// can run off the build thread.
	sweep := func() error { return m.sweepStrayFiles() }
	if asyncTaskCollector != nil {
		asyncTaskCollector(sweep)
	} else {
		step("stray sweep", sweep())
	}

	step("version", m.SaveVersion())
	return errors.Join(errs...)
}

// Flush persists in-memory state. The backend flush and the targets state
// save run concurrently.
func (m *Manager) Flush(memoryCachesOnly bool) error {
	var g errgroup.Group
	g.Go(func() error { return m.backend.Flush(memoryCachesOnly) })
	g.Go(func() error { return m.state.Save() })
	return g.Wait()
}

// Close saves the targets state and closes every owned storage. All close
// steps run even under partial failure; the first error is returned.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	var firstErr error
	keep := func(err error) {
		if err != nil {
			m.log.Error(err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	keep(m.state.Save())
	keep(m.depGraph.Close())
	keep(m.backend.Close())
	return firstErr
}

func (m *Manager) evictTarget(id int) {
	m.mu.Lock()
	delete(m.srcOut, id)
	delete(m.srcForm, id)
	delete(m.stampsBy, id)
	m.mu.Unlock()
}

// sweepStrayFiles removes entries in the data root that no current storage
// owns, e.g. leftovers of an older on-disk layout.
func (m *Manager) sweepStrayFiles() error {
	owned := map[string]struct{}{
		"maps":        {},
		"depot.db":    {},
		"targets":     {},
		"version.dat": {},
	}

	entries, err := os.ReadDir(m.settings.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var errs []error
	for _, entry := range entries {
		if _, ok := owned[entry.Name()]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.settings.DataDir, entry.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
