// Package boltdb implements the experimental storage backend on bbolt, a
// memory-mapped B+tree store. One database file holds every logical map as a
// bucket; mutations are transactional, so the decision-maker style Update is
// a single write transaction rather than a CAS loop.
package boltdb

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Backend = (*Backend)(nil)

// Backend implements ports.Backend over a single bbolt database file.
type Backend struct {
	db   *bolt.DB
	path string
}

// Open opens (or creates) the database file at path. A file bbolt cannot
// open reports domain.ErrDataCorrupted so callers fall back to a rebuild.
func Open(path string) (*Backend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create backend directory")
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrDataCorrupted, err.Error()), "path", path)
	}
	return &Backend{db: db, path: path}, nil
}

// Map opens the named logical map, creating its bucket on first use.
func (b *Backend) Map(name string) (ports.ByteMap, error) {
	err := b.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create bucket"), "map", name)
	}
	return &bucketMap{db: b.db, name: []byte(name)}, nil
}

// RemoveMaps deletes every bucket whose name starts with prefix.
func (b *Backend) RemoveMaps(prefix string) error {
	p := []byte(prefix)
	err := b.db.Update(func(tx *bolt.Tx) error {
		var doomed [][]byte
		if err := tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if bytes.HasPrefix(name, p) {
				doomed = append(doomed, append([]byte(nil), name...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, name := range doomed {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove buckets"), "prefix", prefix)
	}
	return nil
}

// Flush forces the database to disk unless only memory caches are targeted.
func (b *Backend) Flush(memoryCachesOnly bool) error {
	if memoryCachesOnly {
		return nil
	}
	if err := b.db.Sync(); err != nil {
		return zerr.Wrap(err, "failed to sync database")
	}
	return nil
}

// Clean drops every bucket.
func (b *Backend) Clean() error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		var doomed [][]byte
		if err := tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			doomed = append(doomed, append([]byte(nil), name...))
			return nil
		}); err != nil {
			return err
		}
		for _, name := range doomed {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return zerr.Wrap(err, "failed to clean database")
	}
	return nil
}

// Close closes the database file.
func (b *Backend) Close() error {
	if err := b.db.Close(); err != nil {
		return zerr.Wrap(err, "failed to close database")
	}
	return nil
}

var _ ports.ByteMap = (*bucketMap)(nil)

// bucketMap is a ports.ByteMap view of one bucket.
type bucketMap struct {
	db   *bolt.DB
	name []byte
}

func (m *bucketMap) Get(key []byte) ([]byte, error) {
	var value []byte
	err := m.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(m.name)
		if b == nil {
			return nil
		}
		if v := b.Get(key); v != nil {
			// Bucket memory is only valid inside the transaction.
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read key")
	}
	return value, nil
}

func (m *bucketMap) Put(key, value []byte) error {
	err := m.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(m.name)
		if err != nil {
			return err
		}
		return b.Put(key, value)
	})
	if err != nil {
		return zerr.Wrap(err, "failed to write key")
	}
	return nil
}

func (m *bucketMap) Delete(key []byte) error {
	err := m.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(m.name)
		if b == nil {
			return nil
		}
		return b.Delete(key)
	})
	if err != nil {
		return zerr.Wrap(err, "failed to delete key")
	}
	return nil
}

func (m *bucketMap) Update(key []byte, fn func(old []byte) ([]byte, bool, error)) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(m.name)
		if err != nil {
			return err
		}

		var old []byte
		if v := b.Get(key); v != nil {
			old = append([]byte(nil), v...)
		}

		value, keep, err := fn(old)
		if err != nil {
			return err
		}
		if !keep {
			return b.Delete(key)
		}
		return b.Put(key, value)
	})
}

func (m *bucketMap) Keys(fn func(key []byte) bool) error {
	return m.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(m.name)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if !fn(append([]byte(nil), k...)) {
				return nil
			}
		}
		return nil
	})
}

func (m *bucketMap) Clear() error {
	err := m.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(m.name) == nil {
			return nil
		}
		if err := tx.DeleteBucket(m.name); err != nil {
			return err
		}
		_, err := tx.CreateBucket(m.name)
		return err
	})
	if err != nil {
		return zerr.Wrap(err, "failed to clear bucket")
	}
	return nil
}
