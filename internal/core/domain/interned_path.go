package domain

import "unique"

// InternedPath is a value object wrapping a unique.Handle[string].
// Source and output paths repeat heavily across mappings and cursors, so
// interning them keeps the per-build memory footprint flat.
type InternedPath struct {
	h unique.Handle[string]
}

// NewInternedPath interns the given path string.
func NewInternedPath(p string) InternedPath {
	return InternedPath{h: unique.Make(p)}
}

// String returns the underlying path value.
func (ip InternedPath) String() string {
	var zero unique.Handle[string]
	if ip.h == zero {
		return ""
	}
	return ip.h.Value()
}

// MarshalText implements encoding.TextMarshaler.
func (ip InternedPath) MarshalText() ([]byte, error) {
	return []byte(ip.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ip *InternedPath) UnmarshalText(text []byte) error {
	ip.h = unique.Make(string(text))
	return nil
}
