package ports

// Backend is the storage backend strategy behind all persistent maps.
// Two implementations exist: a flat-file persistent hash map (the default)
// and a memory-mapped B-tree store (experimental). The manager selects one
// at construction; nothing above this interface knows which is in use.
//
//go:generate mockgen -source=backend.go -destination=mocks/mock_backend.go -package=mocks
type Backend interface {
	// Map opens the named logical map, creating it on first use. Map names
	// use '/'-separated segments, e.g. "target/42/src-out".
	Map(name string) (ByteMap, error)
	// RemoveMaps deletes every map whose name starts with prefix.
	RemoveMaps(prefix string) error
	// Flush persists in-memory state. When memoryCachesOnly is true, backends
	// may drop caches without forcing data to disk.
	Flush(memoryCachesOnly bool) error
	// Clean wipes all data owned by the backend.
	Clean() error
	// Close releases all resources. The backend is unusable afterwards.
	Close() error
}

// ByteMap is one persistent key-value map. Keys and values are opaque bytes;
// the engine layers codecs on top.
type ByteMap interface {
	// Get returns the stored value or nil if the key is absent.
	Get(key []byte) ([]byte, error)
	// Put stores the value, replacing any previous one.
	Put(key, value []byte) error
	// Delete removes the key. Deleting an absent key is a no-op.
	Delete(key []byte) error
	// Update atomically transforms the value under key. fn receives the
	// current value (nil if absent) and returns the replacement; keep=false
	// deletes the entry. Concurrent Updates of the same key serialize.
	Update(key []byte, fn func(old []byte) (value []byte, keep bool, err error)) error
	// Keys invokes fn for each stored key until fn returns false. Iteration
	// does not hold a map-wide lock; values read during iteration reflect
	// the state at the time of each individual lookup.
	Keys(fn func(key []byte) bool) error
	// Clear removes every entry.
	Clear() error
}
