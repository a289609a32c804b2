package domain

import "go.trai.ch/zerr"

var (
	// ErrDataCorrupted signals that a persisted storage file could not be
	// opened or decoded. Callers treat it as "discard and rebuild this
	// target's data", not as a fatal failure.
	ErrDataCorrupted = zerr.New("build data corrupted")

	// ErrOutputCollision is returned in collision-check mode when two
	// different sources claim the same output path within one target.
	ErrOutputCollision = zerr.New("output claimed by another source")

	// ErrStorageClosed is returned when an operation reaches a storage that
	// has already been closed.
	ErrStorageClosed = zerr.New("storage is closed")

	// ErrUnknownBackend is returned when the configured storage backend name
	// is not recognized.
	ErrUnknownBackend = zerr.New("unknown storage backend")

	// ErrTargetUnknown is returned when a query names a target that was
	// never registered in the data root.
	ErrTargetUnknown = zerr.New("target not found in build data")
)
