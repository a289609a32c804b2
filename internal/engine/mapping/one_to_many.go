// Package mapping implements the persistent path mappings of the build-data
// store: one-to-many path maps, the per-target source-to-output mapping, and
// the reverse output-to-target index.
package mapping

import (
	"slices"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
)

var _ ports.SourceToOutputMapping = (*PathMapping)(nil)

// PathMapping is a persistent map from one path to an ordered collection of
// paths, backed by a ports.ByteMap. Keys and values are relativized on write
// and resolved back to full paths on read.
type PathMapping struct {
	m   ports.ByteMap
	rel ports.Relativizer
}

// NewPathMapping creates a PathMapping over the given byte map.
func NewPathMapping(m ports.ByteMap, rel ports.Relativizer) *PathMapping {
	return &PathMapping{m: m, rel: rel}
}

// SetOutputs atomically replaces the full value list for key.
func (p *PathMapping) SetOutputs(key string, values []string) error {
	return p.m.Put([]byte(p.rel.ToRelative(key)), EncodeList(p.normalize(values)))
}

// SetOutput replaces the value list with a single value.
func (p *PathMapping) SetOutput(key, value string) error {
	return p.SetOutputs(key, []string{value})
}

// AppendOutput adds value unless it is already present. Returns whether the
// value was added.
func (p *PathMapping) AppendOutput(key, value string) (bool, error) {
	relValue := p.rel.ToRelative(value)

	added := false
	err := p.m.Update([]byte(p.rel.ToRelative(key)), func(old []byte) ([]byte, bool, error) {
		if old == nil {
			added = true
			return EncodeList([]string{relValue}), true, nil
		}
		values, err := DecodeList(old)
		if err != nil {
			return nil, false, err
		}
		if slices.Contains(values, relValue) {
			return old, true, nil
		}
		added = true
		return EncodeList(append(values, relValue)), true, nil
	})
	return added, err
}

// RemoveOutput removes a single value. Removing the last remaining value
// removes the key entirely; a missing key or value is a no-op.
func (p *PathMapping) RemoveOutput(key, value string) error {
	relValue := p.rel.ToRelative(value)

	return p.m.Update([]byte(p.rel.ToRelative(key)), func(old []byte) ([]byte, bool, error) {
		if old == nil {
			// Keep the entry absent rather than creating it.
			return nil, false, nil
		}
		values, err := DecodeList(old)
		if err != nil {
			return nil, false, err
		}
		idx := slices.Index(values, relValue)
		if idx < 0 {
			return old, true, nil
		}
		if len(values) == 1 {
			return nil, false, nil
		}
		return EncodeList(slices.Delete(values, idx, idx+1)), true, nil
	})
}

// Remove drops the key and all its values.
func (p *PathMapping) Remove(key string) error {
	return p.m.Delete([]byte(p.rel.ToRelative(key)))
}

// Outputs returns the ordered value list resolved to full paths, or nil if
// the key has no entry. An existing entry with no values yields a non-nil
// empty slice; the two cases must never be conflated.
func (p *PathMapping) Outputs(key string) ([]string, error) {
	data, err := p.m.Get([]byte(p.rel.ToRelative(key)))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	values, err := DecodeList(data)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = p.rel.ToFull(v)
	}
	return values, nil
}

// Keys invokes fn for each stored key, resolved to a full path, until fn
// returns false.
func (p *PathMapping) Keys(fn func(key string) bool) error {
	return p.m.Keys(func(key []byte) bool {
		return fn(p.rel.ToFull(string(key)))
	})
}

// Cursor iterates all known source keys. The key set is snapshotted at call
// time; per-key output lookups happen live, without a scan-wide lock. Keys
// are interned: the same source paths recur across every per-target map.
func (p *PathMapping) Cursor() (ports.SourceCursor, error) {
	var keys []domain.InternedPath
	if err := p.Keys(func(key string) bool {
		keys = append(keys, domain.NewInternedPath(key))
		return true
	}); err != nil {
		return nil, err
	}
	return &cursor{mapping: p, keys: keys, idx: -1}, nil
}

func (p *PathMapping) normalize(values []string) []string {
	normalized := make([]string, len(values))
	for i, v := range values {
		normalized[i] = p.rel.ToRelative(v)
	}
	return normalized
}

type cursor struct {
	mapping *PathMapping
	keys    []domain.InternedPath
	idx     int
}

func (c *cursor) Next() bool {
	c.idx++
	return c.idx < len(c.keys)
}

func (c *cursor) Source() string {
	return c.keys[c.idx].String()
}

// Outputs returns the current source's outputs, never nil. A key removed
// since the cursor was created yields an empty slice.
func (c *cursor) Outputs() []string {
	outputs, err := c.mapping.Outputs(c.Source())
	if err != nil || outputs == nil {
		return []string{}
	}
	return outputs
}
