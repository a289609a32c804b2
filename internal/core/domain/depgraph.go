package domain

// Delta is a pending change set against the dependency graph. It is created
// before a group of sources is recompiled and filled with the freshly
// extracted symbol information afterwards.
type Delta struct {
	// Changed lists the relativized sources being recompiled.
	Changed []string
	// Deleted lists the relativized sources removed from the project.
	Deleted []string

	// Defs holds, per changed source, the symbols it defines after
	// recompilation. Filled via Associate.
	Defs map[string][]string
	// Uses holds, per changed source, the symbols it references after
	// recompilation. Filled via Associate.
	Uses map[string][]string

	// BaseDefs snapshots the defined symbols per changed/deleted source as
	// they were when the delta was created.
	BaseDefs map[string][]string
}

// Associate records the symbol information extracted from a recompiled source.
func (d *Delta) Associate(source string, defs, uses []string) {
	if d.Defs == nil {
		d.Defs = make(map[string][]string)
	}
	if d.Uses == nil {
		d.Uses = make(map[string][]string)
	}
	d.Defs[source] = defs
	d.Uses[source] = uses
}

// DiffResult is the outcome of differentiating a delta against the graph:
// the set of additional sources whose dependencies were touched and that
// must be scheduled for recompilation.
type DiffResult struct {
	Delta *Delta
	// Affected lists relativized sources outside the delta that depend on a
	// symbol whose definition changed or disappeared.
	Affected []string
}
