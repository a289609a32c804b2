// Package targets assigns and persists the stable integer ids of build
// targets, together with per-type bookkeeping: average build times, stale
// target parking and configuration digests.
package targets

import (
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/zerr"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
)

// State owns the global free-id counter and the per-type id tables. Integer
// ids are allocated once per (type, string id) pair and survive restarts;
// ids of targets that vanished from the project model are parked as stale,
// never reused.
type State struct {
	root   string
	loader domain.TargetLoader
	log    ports.Logger

	maxID         atomic.Int32
	lastRebuildMs atomic.Int64

	mu    sync.Mutex
	types map[string]*typeState
}

type typeState struct {
	typeID string

	mu             sync.Mutex
	ids            map[string]int
	stale          []domain.StaleTarget
	avgBuildTimeMs int64
	dirty          bool
}

// Load opens the targets state rooted at dir. A missing or unreadable root
// file is not fatal: the max id is re-derived by loading every type state
// found on disk.
func Load(dir string, loader domain.TargetLoader, log ports.Logger) (*State, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create targets data root")
	}

	s := &State{root: dir, loader: loader, log: log, types: make(map[string]*typeState)}

	maxID, lastRebuildMs, err := readRootFile(s.rootFilePath())
	if err == nil {
		s.maxID.Store(maxID)
		s.lastRebuildMs.Store(lastRebuildMs)
		return s, nil
	}
	if !os.IsNotExist(err) {
		log.Warn("targets state root file unreadable, rescanning type states")
	}

	// Recover the counter from whatever type states survived.
	entries, dirErr := os.ReadDir(dir)
	if dirErr != nil {
		return nil, zerr.Wrap(dirErr, "failed to list targets data root")
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, loadErr := s.typeStateFor(entry.Name()); loadErr != nil {
			log.Warn("dropping unreadable type state: " + entry.Name())
		}
	}
	return s, nil
}

// TargetID returns the stable integer id of target, allocating the next free
// id on first sight. A target whose string id was parked as stale gets its
// old id back.
func (s *State) TargetID(target domain.Target) (int, error) {
	ts, err := s.typeStateFor(target.TypeID)
	if err != nil {
		return 0, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if id, ok := ts.ids[target.ID]; ok {
		return id, nil
	}
	for i, stale := range ts.stale {
		if stale.ID == target.ID {
			ts.stale = append(ts.stale[:i], ts.stale[i+1:]...)
			ts.ids[target.ID] = stale.IntID
			ts.dirty = true
			return stale.IntID, nil
		}
	}

	id := int(s.maxID.Add(1))
	ts.ids[target.ID] = id
	ts.dirty = true
	return id, nil
}

// LookupID returns the integer id of target without allocating one. The
// second result is false when the target was never registered.
func (s *State) LookupID(target domain.Target) (int, bool, error) {
	ts, err := s.typeStateFor(target.TypeID)
	if err != nil {
		return 0, false, err
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	id, ok := ts.ids[target.ID]
	return id, ok, nil
}

// MaxID returns the id allocation high-water mark.
func (s *State) MaxID() int {
	return int(s.maxID.Load())
}

// TypeIDs lists every known target type: the ones loaded in memory plus the
// ones with persisted state on disk.
func (s *State) TypeIDs() ([]string, error) {
	seen := make(map[string]struct{})

	s.mu.Lock()
	for typeID := range s.types {
		seen[typeID] = struct{}{}
	}
	s.mu.Unlock()

	entries, err := os.ReadDir(s.root)
	if err != nil && !os.IsNotExist(err) {
		return nil, zerr.Wrap(err, "failed to list targets data root")
	}
	for _, entry := range entries {
		if entry.IsDir() {
			seen[entry.Name()] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for typeID := range seen {
		out = append(out, typeID)
	}
	slices.Sort(out)
	return out, nil
}

// LiveTargets returns a copy of the type's string-id to integer-id table.
func (s *State) LiveTargets(typeID string) (map[string]int, error) {
	ts, err := s.typeStateFor(typeID)
	if err != nil {
		return nil, err
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := make(map[string]int, len(ts.ids))
	for stringID, intID := range ts.ids {
		out[stringID] = intID
	}
	return out, nil
}

// MarkUsedID raises the free-id counter to at least id. Called for every id
// seen while loading persisted state.
func (s *State) MarkUsedID(id int) {
	for {
		cur := s.maxID.Load()
		if cur >= int32(id) || s.maxID.CompareAndSwap(cur, int32(id)) {
			return
		}
	}
}

// StaleTargets lists the parked targets of the given type: string ids that no
// longer resolve but whose data may still need cleanup.
func (s *State) StaleTargets(typeID string) ([]domain.StaleTarget, error) {
	ts, err := s.typeStateFor(typeID)
	if err != nil {
		return nil, err
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := make([]domain.StaleTarget, len(ts.stale))
	copy(out, ts.stale)
	return out, nil
}

// RemoveStaleTarget forgets a parked target after its data was cleaned. The
// integer id stays burned.
func (s *State) RemoveStaleTarget(typeID, stringID string) error {
	ts, err := s.typeStateFor(typeID)
	if err != nil {
		return err
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i, stale := range ts.stale {
		if stale.ID == stringID {
			ts.stale = append(ts.stale[:i], ts.stale[i+1:]...)
			ts.dirty = true
			return nil
		}
	}
	return nil
}

// AverageBuildTime returns the historic average build time for the type in
// milliseconds, or -1 when unknown.
func (s *State) AverageBuildTime(typeID string) (int64, error) {
	ts, err := s.typeStateFor(typeID)
	if err != nil {
		return -1, err
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.avgBuildTimeMs, nil
}

// SetAverageBuildTime records the average build time for the type.
func (s *State) SetAverageBuildTime(typeID string, ms int64) error {
	ts, err := s.typeStateFor(typeID)
	if err != nil {
		return err
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.avgBuildTimeMs != ms {
		ts.avgBuildTimeMs = ms
		ts.dirty = true
	}
	return nil
}

// LastSuccessfulRebuildDuration returns the recorded duration of the last
// successful full rebuild, zero when none was recorded.
func (s *State) LastSuccessfulRebuildDuration() time.Duration {
	return time.Duration(s.lastRebuildMs.Load()) * time.Millisecond
}

// SetLastSuccessfulRebuildDuration records the duration of a completed full
// rebuild.
func (s *State) SetLastSuccessfulRebuildDuration(d time.Duration) {
	s.lastRebuildMs.Store(d.Milliseconds())
}

// Save persists the root file and every dirty type state.
func (s *State) Save() error {
	s.mu.Lock()
	states := make([]*typeState, 0, len(s.types))
	for _, ts := range s.types {
		states = append(states, ts)
	}
	s.mu.Unlock()

	var firstErr error
	for _, ts := range states {
		if err := s.saveTypeState(ts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := writeRootFile(s.rootFilePath(), s.maxID.Load(), s.lastRebuildMs.Load()); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Clean removes all persisted targets state and resets the in-memory tables.
func (s *State) Clean() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.RemoveAll(s.root); err != nil {
		return zerr.Wrap(err, "failed to remove targets data root")
	}
	if err := os.MkdirAll(s.root, 0o750); err != nil {
		return zerr.Wrap(err, "failed to recreate targets data root")
	}
	s.types = make(map[string]*typeState)
	s.maxID.Store(0)
	s.lastRebuildMs.Store(0)
	return nil
}

func (s *State) rootFilePath() string {
	return filepath.Join(s.root, "targetTypes.dat")
}

func (s *State) typeDir(typeID string) string {
	return filepath.Join(s.root, typeID)
}

// typeStateFor returns the state of one target type, loading it from disk on
// first access.
func (s *State) typeStateFor(typeID string) (*typeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ts, ok := s.types[typeID]; ok {
		return ts, nil
	}

	ts, err := s.loadTypeState(typeID)
	if err != nil {
		return nil, err
	}
	s.types[typeID] = ts
	return ts, nil
}

func (s *State) loadTypeState(typeID string) (*typeState, error) {
	ts := &typeState{typeID: typeID, ids: make(map[string]int), avgBuildTimeMs: -1}

	entries, avgMs, err := readTypeFile(filepath.Join(s.typeDir(typeID), "targets.dat"))
	if os.IsNotExist(err) {
		return ts, nil
	}
	if err != nil {
		return nil, err
	}
	ts.avgBuildTimeMs = avgMs

	for _, e := range entries {
		s.MarkUsedID(e.intID)
		if _, ok := s.loader(typeID, e.stringID); ok {
			ts.ids[e.stringID] = e.intID
		} else {
			ts.stale = append(ts.stale, domain.StaleTarget{ID: e.stringID, IntID: e.intID})
		}
	}
	return ts, nil
}

func (s *State) saveTypeState(ts *typeState) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if !ts.dirty {
		return nil
	}

	entries := make([]targetEntry, 0, len(ts.ids)+len(ts.stale))
	for stringID, intID := range ts.ids {
		entries = append(entries, targetEntry{stringID: stringID, intID: intID})
	}
	for _, stale := range ts.stale {
		entries = append(entries, targetEntry{stringID: stale.ID, intID: stale.IntID})
	}
	slices.SortFunc(entries, func(a, b targetEntry) int { return a.intID - b.intID })

	if err := writeTypeFile(filepath.Join(s.typeDir(ts.typeID), "targets.dat"), entries, ts.avgBuildTimeMs); err != nil {
		return err
	}
	ts.dirty = false
	return nil
}
