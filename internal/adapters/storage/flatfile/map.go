package flatfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/zerr"
)

// magic identifies a flatfile map file; bump on incompatible format changes.
var magic = [4]byte{'D', 'P', 'M', '1'}

// maxCASAttempts bounds the optimistic retry loop in Update before falling
// back to the map-wide write lock.
const maxCASAttempts = 16

var _ ports.ByteMap = (*Map)(nil)

// Map is one persistent key-value map held fully in memory and flushed to a
// single flat file. Mutations go through per-key compare-and-swap on a
// sync.Map; the file itself is only touched on Save.
type Map struct {
	path string

	entries sync.Map // string -> *box
	dirty   atomic.Bool

	// fallback serializes Update calls that exhausted the CAS budget.
	fallback sync.Mutex
}

// box wraps a value so sync.Map CAS can compare by pointer identity.
type box struct {
	data []byte
}

// Open loads the map file at path, creating an empty map if none exists.
// A file that cannot be decoded reports domain.ErrDataCorrupted.
func Open(path string) (*Map, error) {
	m := &Map{path: path}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map) load() error {
	f, err := os.Open(m.path) //nolint:gosec // Path is derived from the data root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to open map file"), "path", m.path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	r := bufio.NewReader(f)

	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return corrupted(err, m.path)
	}
	if header != magic {
		return corrupted(errors.New("bad magic"), m.path)
	}

	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return corrupted(err, m.path)
	}

	for range count {
		key, err := readBytes(r)
		if err != nil {
			return corrupted(err, m.path)
		}
		value, err := readBytes(r)
		if err != nil {
			return corrupted(err, m.path)
		}
		m.entries.Store(string(key), &box{data: value})
	}
	return nil
}

// Save writes the full map to disk via a temp file and rename, so a crash
// mid-write leaves the previous file intact.
func (m *Map) Save() error {
	if !m.dirty.Swap(false) {
		return nil
	}

	type pair struct {
		key   string
		value []byte
	}
	var pairs []pair
	m.entries.Range(func(k, v any) bool {
		pairs = append(pairs, pair{key: k.(string), value: v.(*box).data})
		return true
	})
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	if err := os.MkdirAll(filepath.Dir(m.path), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create map directory")
	}

	tmp := m.path + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // Path is derived from the data root
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create map file"), "path", tmp)
	}

	w := bufio.NewWriter(f)
	writeErr := func() error {
		if _, err := w.Write(magic[:]); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(pairs))); err != nil {
			return err
		}
		for _, p := range pairs {
			if err := writeBytes(w, []byte(p.key)); err != nil {
				return err
			}
			if err := writeBytes(w, p.value); err != nil {
				return err
			}
		}
		return w.Flush()
	}()
	if writeErr == nil {
		writeErr = f.Close()
	} else {
		_ = f.Close()
	}
	if writeErr != nil {
		_ = os.Remove(tmp)
		m.dirty.Store(true)
		return zerr.With(zerr.Wrap(writeErr, "failed to write map file"), "path", tmp)
	}

	if err := os.Rename(tmp, m.path); err != nil {
		m.dirty.Store(true)
		return zerr.With(zerr.Wrap(err, "failed to replace map file"), "path", m.path)
	}
	return nil
}

// Get returns the stored value or nil if the key is absent. The returned
// bytes must be treated as immutable.
func (m *Map) Get(key []byte) ([]byte, error) {
	v, ok := m.entries.Load(string(key))
	if !ok {
		return nil, nil
	}
	return v.(*box).data, nil
}

// Put stores the value, replacing any previous one.
func (m *Map) Put(key, value []byte) error {
	m.entries.Store(string(key), &box{data: value})
	m.dirty.Store(true)
	return nil
}

// Delete removes the key. Deleting an absent key is a no-op.
func (m *Map) Delete(key []byte) error {
	if _, loaded := m.entries.LoadAndDelete(string(key)); loaded {
		m.dirty.Store(true)
	}
	return nil
}

// Update atomically transforms the value under key using an optimistic CAS
// loop; pathological contention falls back to a short-lived map-wide lock.
func (m *Map) Update(key []byte, fn func(old []byte) ([]byte, bool, error)) error {
	k := string(key)

	for range maxCASAttempts {
		applied, err := m.tryUpdate(k, fn)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}

	m.fallback.Lock()
	defer m.fallback.Unlock()
	for {
		applied, err := m.tryUpdate(k, fn)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}
}

func (m *Map) tryUpdate(k string, fn func(old []byte) ([]byte, bool, error)) (bool, error) {
	cur, loaded := m.entries.Load(k)

	var old []byte
	if loaded {
		old = cur.(*box).data
	}

	value, keep, err := fn(old)
	if err != nil {
		return false, err
	}

	switch {
	case !loaded && !keep:
		// Deleting an absent entry: done, unless someone stored it meanwhile.
		if _, raced := m.entries.Load(k); raced {
			return false, nil
		}
		return true, nil
	case !loaded:
		if _, raced := m.entries.LoadOrStore(k, &box{data: value}); raced {
			return false, nil
		}
	case !keep:
		if !m.entries.CompareAndDelete(k, cur) {
			return false, nil
		}
	default:
		if !m.entries.CompareAndSwap(k, cur, &box{data: value}) {
			return false, nil
		}
	}
	m.dirty.Store(true)
	return true, nil
}

// Keys invokes fn for each stored key until fn returns false. No map-wide
// lock is held; per-key reads during iteration are point-in-time snapshots.
func (m *Map) Keys(fn func(key []byte) bool) error {
	m.entries.Range(func(k, _ any) bool {
		return fn([]byte(k.(string)))
	})
	return nil
}

// Clear removes every entry.
func (m *Map) Clear() error {
	m.entries.Range(func(k, _ any) bool {
		m.entries.Delete(k)
		return true
	})
	m.dirty.Store(true)
	return nil
}

func corrupted(err error, path string) error {
	return zerr.With(zerr.Wrap(domain.ErrDataCorrupted, err.Error()), "path", path)
}

func readBytes(r *bufio.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
