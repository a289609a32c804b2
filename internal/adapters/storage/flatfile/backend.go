// Package flatfile implements the default storage backend: one flat binary
// file per logical map, loaded fully on open and rewritten on flush.
package flatfile

import (
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/depot/internal/adapters/fs"
	"go.trai.ch/depot/internal/core/ports"
)

var _ ports.Backend = (*Backend)(nil)

// Backend implements ports.Backend over a directory of flat map files.
// Map names become file paths below the root, so per-target maps live in
// physically separate files and one target's corruption cannot spread.
type Backend struct {
	root string

	mu   sync.Mutex
	maps map[string]*Map
}

// New creates a flatfile backend rooted at the given directory.
func New(root string) *Backend {
	return &Backend{
		root: filepath.Clean(root),
		maps: make(map[string]*Map),
	}
}

// Map opens the named logical map, creating it on first use.
func (b *Backend) Map(name string) (ports.ByteMap, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m, ok := b.maps[name]; ok {
		return m, nil
	}

	m, err := Open(filepath.Join(b.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	b.maps[name] = m
	return m, nil
}

// RemoveMaps deletes every map whose name starts with prefix, both the open
// instances and their files.
func (b *Backend) RemoveMaps(prefix string) error {
	b.mu.Lock()
	for name := range b.maps {
		if strings.HasPrefix(name, prefix) {
			delete(b.maps, name)
		}
	}
	b.mu.Unlock()

	return fs.DeleteRecursively(filepath.Join(b.root, filepath.FromSlash(prefix)))
}

// Flush writes every dirty map to disk. With memoryCachesOnly set there is
// nothing to do: this backend keeps no caches apart from the maps themselves.
func (b *Backend) Flush(memoryCachesOnly bool) error {
	if memoryCachesOnly {
		return nil
	}

	b.mu.Lock()
	open := make([]*Map, 0, len(b.maps))
	for _, m := range b.maps {
		open = append(open, m)
	}
	b.mu.Unlock()

	var firstErr error
	for _, m := range open {
		if err := m.Save(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Clean drops every open map and wipes the backend directory.
func (b *Backend) Clean() error {
	b.mu.Lock()
	b.maps = make(map[string]*Map)
	b.mu.Unlock()

	return fs.DeleteRecursively(b.root)
}

// Close flushes all maps and releases them.
func (b *Backend) Close() error {
	err := b.Flush(false)

	b.mu.Lock()
	b.maps = make(map[string]*Map)
	b.mu.Unlock()

	return err
}
