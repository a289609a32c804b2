// Package graph persists symbol-level dependencies between sources and
// computes the ripple set of a recompilation.
package graph

import (
	"fmt"
	"slices"
	"sync"

	"go.trai.ch/zerr"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/depot/internal/engine/mapping"
)

const (
	defsMapName = "graph/defs"
	usesMapName = "graph/uses"
	refsMapName = "graph/refs"
)

var _ ports.DependencyGraph = (*Graph)(nil)

// Graph stores three persistent maps: defs (source to defined symbols),
// uses (symbol to depending sources) and refs (source to referenced
// symbols). refs exists so a deleted source's entries in uses can be
// withdrawn without rescanning the whole map.
//
// CreateDelta and Differentiate take the read lock; Integrate and Close take
// the write lock. Sources are stored exactly as given; callers relativize.
type Graph struct {
	mu     sync.RWMutex
	closed bool

	defs ports.ByteMap
	uses ports.ByteMap
	refs ports.ByteMap
	log  ports.Logger
}

// Open opens the dependency graph maps on the given backend.
func Open(backend ports.Backend, log ports.Logger) (*Graph, error) {
	defs, err := backend.Map(defsMapName)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open definitions map")
	}
	uses, err := backend.Map(usesMapName)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open usages map")
	}
	refs, err := backend.Map(refsMapName)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open references map")
	}
	return &Graph{defs: defs, uses: uses, refs: refs, log: log}, nil
}

// CreateDelta opens a change set for the given sources, snapshotting the
// symbols they currently define.
func (g *Graph) CreateDelta(changed, deleted []string) (*domain.Delta, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return nil, domain.ErrStorageClosed
	}

	delta := &domain.Delta{
		Changed:  slices.Clone(changed),
		Deleted:  slices.Clone(deleted),
		BaseDefs: make(map[string][]string, len(changed)+len(deleted)),
	}
	for _, source := range delta.Changed {
		defs, err := g.symbolList(g.defs, source)
		if err != nil {
			return nil, err
		}
		delta.BaseDefs[source] = defs
	}
	for _, source := range delta.Deleted {
		defs, err := g.symbolList(g.defs, source)
		if err != nil {
			return nil, err
		}
		delta.BaseDefs[source] = defs
	}

	g.log.Info(fmt.Sprintf("graph: delta created for %d changed, %d deleted sources", len(changed), len(deleted)))
	return delta, nil
}

// Differentiate computes the sources outside the delta that depend on a
// symbol whose definition disappeared from a changed or deleted source.
// Symbols still defined after recompilation are assumed compatible.
func (g *Graph) Differentiate(delta *domain.Delta) (*domain.DiffResult, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return nil, domain.ErrStorageClosed
	}

	inDelta := make(map[string]struct{}, len(delta.Changed)+len(delta.Deleted))
	for _, source := range delta.Changed {
		inDelta[source] = struct{}{}
	}
	for _, source := range delta.Deleted {
		inDelta[source] = struct{}{}
	}

	removed := make(map[string]struct{})
	for _, source := range delta.Changed {
		kept := make(map[string]struct{}, len(delta.Defs[source]))
		for _, sym := range delta.Defs[source] {
			kept[sym] = struct{}{}
		}
		for _, sym := range delta.BaseDefs[source] {
			if _, ok := kept[sym]; !ok {
				removed[sym] = struct{}{}
			}
		}
	}
	for _, source := range delta.Deleted {
		for _, sym := range delta.BaseDefs[source] {
			removed[sym] = struct{}{}
		}
	}

	affected := make(map[string]struct{})
	for sym := range removed {
		users, err := g.symbolList(g.uses, sym)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			if _, ok := inDelta[user]; !ok {
				affected[user] = struct{}{}
			}
		}
	}

	result := &domain.DiffResult{Delta: delta, Affected: make([]string, 0, len(affected))}
	for source := range affected {
		result.Affected = append(result.Affected, source)
	}
	slices.Sort(result.Affected)

	g.log.Info(fmt.Sprintf("graph: %d removed symbols affect %d sources", len(removed), len(result.Affected)))
	return result, nil
}

// Integrate applies the differentiated change set to the persisted maps.
func (g *Graph) Integrate(diff *domain.DiffResult) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return domain.ErrStorageClosed
	}
	delta := diff.Delta

	for _, source := range delta.Deleted {
		oldRefs, err := g.symbolList(g.refs, source)
		if err != nil {
			return err
		}
		for _, sym := range oldRefs {
			if err := g.removeUser(sym, source); err != nil {
				return err
			}
		}
		if err := g.refs.Delete([]byte(source)); err != nil {
			return err
		}
		if err := g.defs.Delete([]byte(source)); err != nil {
			return err
		}
	}

	for _, source := range delta.Changed {
		oldRefs, err := g.symbolList(g.refs, source)
		if err != nil {
			return err
		}
		newRefs := delta.Uses[source]

		for _, sym := range oldRefs {
			if !slices.Contains(newRefs, sym) {
				if err := g.removeUser(sym, source); err != nil {
					return err
				}
			}
		}
		for _, sym := range newRefs {
			if !slices.Contains(oldRefs, sym) {
				if err := g.addUser(sym, source); err != nil {
					return err
				}
			}
		}

		if err := g.refs.Put([]byte(source), mapping.EncodeList(newRefs)); err != nil {
			return err
		}
		if err := g.defs.Put([]byte(source), mapping.EncodeList(delta.Defs[source])); err != nil {
			return err
		}
	}

	g.log.Info(fmt.Sprintf("graph: integrated %d changed, %d deleted sources", len(delta.Changed), len(delta.Deleted)))
	return nil
}

// DependingSources returns the sources that reference the symbol, sorted.
func (g *Graph) DependingSources(symbol string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return nil, domain.ErrStorageClosed
	}
	users, err := g.symbolList(g.uses, symbol)
	if err != nil {
		return nil, err
	}
	slices.Sort(users)
	return users, nil
}

// Close marks the graph unusable. The underlying maps belong to the backend
// and are closed with it.
func (g *Graph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

func (g *Graph) symbolList(m ports.ByteMap, key string) ([]string, error) {
	data, err := m.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return mapping.DecodeList(data)
}

func (g *Graph) addUser(symbol, source string) error {
	return g.uses.Update([]byte(symbol), func(old []byte) ([]byte, bool, error) {
		if old == nil {
			return mapping.EncodeList([]string{source}), true, nil
		}
		users, err := mapping.DecodeList(old)
		if err != nil {
			return nil, false, err
		}
		if slices.Contains(users, source) {
			return old, true, nil
		}
		return mapping.EncodeList(append(users, source)), true, nil
	})
}

func (g *Graph) removeUser(symbol, source string) error {
	return g.uses.Update([]byte(symbol), func(old []byte) ([]byte, bool, error) {
		if old == nil {
			return nil, false, nil
		}
		users, err := mapping.DecodeList(old)
		if err != nil {
			return nil, false, err
		}
		idx := slices.Index(users, source)
		if idx < 0 {
			return old, true, nil
		}
		if len(users) == 1 {
			return nil, false, nil
		}
		return mapping.EncodeList(slices.Delete(users, idx, idx+1)), true, nil
	})
}
