package ports

import (
	"io/fs"

	"go.trai.ch/depot/internal/core/domain"
)

// StampStorage records per-file content stamps used for staleness detection.
//
//go:generate mockgen -source=stamps.go -destination=mocks/mock_stamps.go -package=mocks
type StampStorage interface {
	// UpdateStamp computes and stores the (hash, mtime) stamp for path.
	UpdateStamp(path string) error
	// CurrentStampIfUpToDate returns the stored stamp if the file is still
	// current: the modification time from info matches exactly, or the
	// recomputed content hash matches the stored hash. A nil stamp means the
	// file must be reprocessed. info may be nil; the file is stat'ed then.
	CurrentStampIfUpToDate(path string, info fs.FileInfo) (*domain.Stamp, error)
	// RemoveStamp forgets the stamp for path.
	RemoveStamp(path string) error
}

// FileHasher computes content hashes and stamps for files on disk.
type FileHasher interface {
	// HashFile returns the xxhash of the file's content.
	HashFile(path string) (uint64, error)
	// StampOf returns the current (hash, mtime) stamp of the file.
	StampOf(path string) (domain.Stamp, error)
}
