package domain

// Target identifies a single compilation unit, e.g. one module's production
// or test source set. TypeID groups targets that share a loader and an id
// namespace file on disk; ID is unique within the type.
type Target struct {
	TypeID string
	ID     string
}

// NewTarget creates a Target from its type and string id.
func NewTarget(typeID, id string) Target {
	return Target{TypeID: typeID, ID: id}
}

// String returns the canonical "<type>:<id>" form used in logs and vertex names.
func (t Target) String() string {
	return t.TypeID + ":" + t.ID
}

// StaleTarget is a previously known target whose string id no longer resolves
// in the current project model. Its integer id is parked, never reused, so
// cleanup code can still locate leftover output data.
type StaleTarget struct {
	ID    string
	IntID int
}

// TargetLoader resolves a persisted string id back to a Target.
// Returning false marks the id as stale.
type TargetLoader func(typeID, id string) (Target, bool)
