package ports

// Relativizer rewrites absolute paths into storage-relative keys and back.
// Both directions are total functions: a path that cannot be shortened passes
// through unchanged (and is recorded for diagnostics). The mapping must be
// stable across process restarts, otherwise every persisted key silently
// corrupts.
//
//go:generate mockgen -source=relativizer.go -destination=mocks/mock_relativizer.go -package=mocks
type Relativizer interface {
	// ToRelative converts an absolute path to its storage key.
	ToRelative(path string) string
	// ToFull converts a storage key back to an absolute path.
	ToFull(key string) string
	// ReportUnhandledPaths logs every path seen so far that could not be
	// shortened, once per path.
	ReportUnhandledPaths(log Logger)
}
