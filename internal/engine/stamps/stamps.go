// Package stamps persists per-file content stamps used for incremental
// staleness detection.
package stamps

import (
	"encoding/binary"
	"io/fs"
	"os"

	"go.trai.ch/zerr"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
)

const stampSize = 16

var _ ports.StampStorage = (*Store)(nil)

// Store implements ports.StampStorage over one byte map per target.
type Store struct {
	m      ports.ByteMap
	rel    ports.Relativizer
	hasher ports.FileHasher
}

// New creates a stamp store over the given byte map.
func New(m ports.ByteMap, rel ports.Relativizer, hasher ports.FileHasher) *Store {
	return &Store{m: m, rel: rel, hasher: hasher}
}

// UpdateStamp computes and stores the current (hash, mtime) stamp for path.
func (s *Store) UpdateStamp(path string) error {
	stamp, err := s.hasher.StampOf(path)
	if err != nil {
		return err
	}
	return s.m.Put([]byte(s.rel.ToRelative(path)), encodeStamp(stamp))
}

// CurrentStampIfUpToDate returns the stored stamp when the file on disk still
// matches it. The modification time is compared first; on a mismatch the
// content hash is recomputed, so a touched-but-unchanged file stays current.
// A nil stamp means the file must be reprocessed.
func (s *Store) CurrentStampIfUpToDate(path string, info fs.FileInfo) (*domain.Stamp, error) {
	data, err := s.m.Get([]byte(s.rel.ToRelative(path)))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	stamp, err := decodeStamp(data)
	if err != nil {
		return nil, err
	}

	if info == nil {
		info, err = os.Stat(path)
		if err != nil {
			return nil, nil //nolint:nilerr // Unreadable file is simply stale
		}
	}

	if info.ModTime().UnixNano() == stamp.ModTime {
		return &stamp, nil
	}
	hash, err := s.hasher.HashFile(path)
	if err != nil || hash != stamp.Hash {
		return nil, nil //nolint:nilerr // Unreadable file is simply stale
	}
	return &stamp, nil
}

// RemoveStamp forgets the stamp for path.
func (s *Store) RemoveStamp(path string) error {
	return s.m.Delete([]byte(s.rel.ToRelative(path)))
}

func encodeStamp(stamp domain.Stamp) []byte {
	buf := make([]byte, stampSize)
	binary.BigEndian.PutUint64(buf[0:8], stamp.Hash)
	binary.BigEndian.PutUint64(buf[8:16], uint64(stamp.ModTime))
	return buf
}

func decodeStamp(data []byte) (domain.Stamp, error) {
	if len(data) != stampSize {
		return domain.Stamp{}, zerr.Wrap(domain.ErrDataCorrupted, "malformed stamp record")
	}
	return domain.Stamp{
		Hash:    binary.BigEndian.Uint64(data[0:8]),
		ModTime: int64(binary.BigEndian.Uint64(data[8:16])),
	}, nil
}
