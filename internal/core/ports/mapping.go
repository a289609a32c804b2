package ports

// OneToManyPathMapping is a persistent map from one path to a small ordered
// collection of paths. Keys and values are absolute paths at the interface;
// implementations relativize on write and resolve on read.
//
// Outputs distinguishes "no entry" (nil) from "entry with nothing" (empty
// non-nil slice); callers short-circuit on nil and must never conflate the
// two.
//
//go:generate mockgen -source=mapping.go -destination=mocks/mock_mapping.go -package=mocks
type OneToManyPathMapping interface {
	// SetOutputs atomically replaces the full value list for key.
	SetOutputs(key string, values []string) error
	// AppendOutput adds value unless already present. Returns whether the
	// value was added.
	AppendOutput(key, value string) (bool, error)
	// RemoveOutput removes a single value; removing the last value removes
	// the key. A missing key or value is a no-op.
	RemoveOutput(key, value string) error
	// Remove drops the key and all its values.
	Remove(key string) error
	// Outputs returns the ordered value list, nil if the key has no entry.
	Outputs(key string) ([]string, error)
}

// SourceToOutputMapping tracks which output artifacts each source file of one
// target produced, and supports cursor iteration over all known sources.
type SourceToOutputMapping interface {
	OneToManyPathMapping

	// SetOutput replaces the value list with a single output.
	SetOutput(key, value string) error
	// Cursor iterates all known source keys. Per-key output lookups are
	// snapshots at call time; no scan-wide lock is held.
	Cursor() (SourceCursor, error)
}

// SourceCursor walks the source keys of a SourceToOutputMapping.
type SourceCursor interface {
	// Next advances to the next source, returning false when exhausted.
	Next() bool
	// Source returns the current absolute source path.
	Source() string
	// Outputs returns the current source's outputs, never nil.
	Outputs() []string
}

// OutputToTargetIndex is the reverse index from output path to the integer
// ids of the targets that produced it. It exists for orphan cleanup only;
// it may lag the forward mapping after a crash and must never be used for
// correctness-critical decisions.
type OutputToTargetIndex interface {
	// AddMapping registers the output as produced by targetID.
	AddMapping(output string, targetID int) error
	// AddMappings registers several outputs at once.
	AddMappings(outputs []string, targetID int) error
	// RemoveMapping withdraws targetID's claim on output.
	RemoveMapping(output string, targetID int) error
	// RemoveTargetIDs withdraws targetID's claim on all given outputs.
	RemoveTargetIDs(outputs []string, targetID int) error
	// TargetIDs returns the ids of all targets claiming the output, sorted.
	TargetIDs(output string) ([]int, error)
}
