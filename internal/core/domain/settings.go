package domain

// Backend names accepted in settings.
const (
	BackendFlatFile = "flatfile"
	BackendBolt     = "bolt"
)

// Settings holds the build-data store configuration loaded from depot.yaml.
type Settings struct {
	// DataDir is the build-data root directory.
	DataDir string
	// ProjectRoot is the directory all stored paths are relativized against.
	ProjectRoot string
	// Backend selects the storage backend: BackendFlatFile or BackendBolt.
	Backend string
	// Compression enables value compression in backends that support it.
	// It participates in the store version stamp.
	Compression bool
	// CheckCollisions makes an output path claimed by a second source a hard
	// error instead of a logged overwrite.
	CheckCollisions bool
	// ExtraRoots maps additional logical root names to absolute directories
	// for path relativization, e.g. "MAVEN_REPOSITORY" -> "/home/ci/.m2".
	ExtraRoots map[string]string
}

// BackendKnown reports whether the configured backend name is recognized.
func (s *Settings) BackendKnown() bool {
	return s.Backend == BackendFlatFile || s.Backend == BackendBolt
}
