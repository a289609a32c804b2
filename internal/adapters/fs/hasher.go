// Package fs provides file system adapters for hashing and data-root cleanup.
package fs

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileHasher = (*Hasher)(nil)

// Hasher computes content hashes and stamps for files on disk.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashFile computes the XXHash of a file's content.
func (h *Hasher) HashFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// StampOf returns the current (hash, mtime) stamp of the file.
func (h *Hasher) StampOf(path string) (domain.Stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Stamp{}, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}

	hash, err := h.HashFile(path)
	if err != nil {
		return domain.Stamp{}, err
	}

	return domain.Stamp{Hash: hash, ModTime: info.ModTime().UnixNano()}, nil
}
