package targets

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"

	"go.trai.ch/depot/internal/core/domain"
)

// Configuration tracks the digest of one target's build settings. A digest
// mismatch means the target's settings changed since its last build and its
// outputs cannot be trusted.
type Configuration struct {
	path string

	digest uint64
	known  bool
}

// Configuration returns the persisted settings digest handle for target.
func (s *State) Configuration(target domain.Target) *Configuration {
	name := fmt.Sprintf("%016x.cfg", xxhash.Sum64String(target.ID))
	c := &Configuration{path: filepath.Join(s.typeDir(target.TypeID), "configs", name)}

	data, err := os.ReadFile(c.path) //nolint:gosec // Path is under the data root
	if err == nil && len(data) == 8 {
		c.digest = binary.BigEndian.Uint64(data)
		c.known = true
	}
	return c
}

// IsDirty reports whether the settings payload differs from the digest
// recorded at the last successful build. An unknown digest is always dirty.
func (c *Configuration) IsDirty(payload []byte) bool {
	return !c.known || xxhash.Sum64(payload) != c.digest
}

// Save records the payload's digest as the current build settings.
func (c *Configuration) Save(payload []byte) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, xxhash.Sum64(payload))
	if err := writeFileAtomic(c.path, buf); err != nil {
		return zerr.Wrap(err, "failed to save configuration digest")
	}
	c.digest = xxhash.Sum64(payload)
	c.known = true
	return nil
}

// Invalidate forgets the recorded digest so the next build treats the target
// as configuration-dirty.
func (c *Configuration) Invalidate() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return zerr.Wrap(err, "failed to remove configuration digest")
	}
	c.known = false
	c.digest = 0
	return nil
}
