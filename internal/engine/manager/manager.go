// Package manager provides the façade owning every storage of one build-data
// root: per-target mappings and stamps, the reverse output index, the
// dependency graph and the targets state.
package manager

import (
	"fmt"
	"sync"

	"go.trai.ch/zerr"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/depot/internal/engine/graph"
	"go.trai.ch/depot/internal/engine/mapping"
	"go.trai.ch/depot/internal/engine/stamps"
	"go.trai.ch/depot/internal/engine/targets"
)

const (
	outputIndexMapName = "out-target"
	targetMapPrefix    = "target/"
)

// Manager owns the storages of one build-data root. A build driver opens one
// Manager per session, asks for per-target storages before compiling and
// records outputs and stamps after. Per-target storages are created lazily
// and cached; only the id allocator, the reverse index and the dependency
// graph are shared across targets.
type Manager struct {
	settings *domain.Settings
	backend  ports.Backend
	rel      ports.Relativizer
	state    *targets.State
	hasher   ports.FileHasher
	log      ports.Logger

	outIndex *mapping.OutputIndex
	outMap   ports.ByteMap
	depGraph ports.DependencyGraph

	mu       sync.Mutex
	closed   bool
	srcOut   map[int]ports.SourceToOutputMapping
	srcForm  map[int]ports.OneToManyPathMapping
	stampsBy map[int]ports.StampStorage

	versionMu     sync.Mutex
	versionKnown  bool
	versionStale  bool
}

// New opens a Manager over the given backend. On failure every storage
// opened so far is closed before the error is returned.
func New(
	settings *domain.Settings,
	backend ports.Backend,
	rel ports.Relativizer,
	state *targets.State,
	hasher ports.FileHasher,
	log ports.Logger,
) (*Manager, error) {
	m := &Manager{
		settings: settings,
		backend:  backend,
		rel:      rel,
		state:    state,
		hasher:   hasher,
		log:      log,
		srcOut:   make(map[int]ports.SourceToOutputMapping),
		srcForm:  make(map[int]ports.OneToManyPathMapping),
		stampsBy: make(map[int]ports.StampStorage),
	}

	outMap, err := backend.Map(outputIndexMapName)
	if err != nil {
		_ = backend.Close()
		return nil, zerr.Wrap(err, "failed to open output index")
	}
	m.outMap = outMap
	m.outIndex = mapping.NewOutputIndex(outMap, rel, log, settings.CheckCollisions)

	g, err := graph.Open(backend, log)
	if err != nil {
		_ = backend.Close()
		return nil, zerr.Wrap(err, "failed to open dependency graph")
	}
	m.depGraph = g

	return m, nil
}

// TargetsState returns the target id registry.
func (m *Manager) TargetsState() *targets.State { return m.state }

// Relativizer returns the path relativizer shared by all storages.
func (m *Manager) Relativizer() ports.Relativizer { return m.rel }

// OutputToTargetIndex returns the reverse output index.
func (m *Manager) OutputToTargetIndex() ports.OutputToTargetIndex { return m.outIndex }

// DependencyGraph returns the symbol dependency graph.
func (m *Manager) DependencyGraph() ports.DependencyGraph { return m.depGraph }

// SourceToOutputMap returns the source-to-output mapping of target. Writes
// through the returned mapping also register the outputs with the reverse
// index.
func (m *Manager) SourceToOutputMap(target domain.Target) (ports.SourceToOutputMapping, error) {
	id, err := m.state.TargetID(target)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, domain.ErrStorageClosed
	}
	if cached, ok := m.srcOut[id]; ok {
		return cached, nil
	}

	forward, err := m.openPathMapping(srcOutMapName(id))
	if err != nil {
		return nil, err
	}
	wrapped := &trackedSourceToOutputMap{forward: forward, index: m.outIndex, targetID: id}
	m.srcOut[id] = wrapped
	return wrapped, nil
}

// SourceToOutputMapForStaleTarget opens the source-to-output mapping of a
// parked target by its burned integer id, for cleanup of leftover outputs.
// Writes do not feed the reverse index.
func (m *Manager) SourceToOutputMapForStaleTarget(stale domain.StaleTarget) (ports.SourceToOutputMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, domain.ErrStorageClosed
	}
	return m.openPathMapping(srcOutMapName(stale.IntID))
}

// FileStampStorage returns the stamp storage of target.
func (m *Manager) FileStampStorage(target domain.Target) (ports.StampStorage, error) {
	id, err := m.state.TargetID(target)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, domain.ErrStorageClosed
	}
	if cached, ok := m.stampsBy[id]; ok {
		return cached, nil
	}

	bm, err := m.backend.Map(stampsMapName(id))
	if err != nil {
		return nil, err
	}
	store := stamps.New(bm, m.rel, m.hasher)
	m.stampsBy[id] = store
	return store, nil
}

// SourceToFormMap returns target's mapping from source files to the
// generated forms extracted from them.
func (m *Manager) SourceToFormMap(target domain.Target) (ports.OneToManyPathMapping, error) {
	id, err := m.state.TargetID(target)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, domain.ErrStorageClosed
	}
	if cached, ok := m.srcForm[id]; ok {
		return cached, nil
	}

	pm, err := m.openPathMapping(srcFormMapName(id))
	if err != nil {
		return nil, err
	}
	m.srcForm[id] = pm
	return pm, nil
}

func (m *Manager) openPathMapping(name string) (*mapping.PathMapping, error) {
	bm, err := m.backend.Map(name)
	if err != nil {
		return nil, err
	}
	return mapping.NewPathMapping(bm, m.rel), nil
}

func srcOutMapName(id int) string  { return fmt.Sprintf("target/%d/src-out", id) }
func srcFormMapName(id int) string { return fmt.Sprintf("target/%d/src-form", id) }
func stampsMapName(id int) string  { return fmt.Sprintf("target/%d/stamps", id) }
func targetPrefix(id int) string   { return fmt.Sprintf("target/%d/", id) }
