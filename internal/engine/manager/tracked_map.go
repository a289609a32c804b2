package manager

import (
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/depot/internal/engine/mapping"
)

var _ ports.SourceToOutputMapping = (*trackedSourceToOutputMap)(nil)

// trackedSourceToOutputMap couples a target's forward source-to-output
// mapping with the shared reverse index. Outputs are registered with the
// index even when the forward write failed: a too-large reverse index only
// costs a wasted cleanup check, a too-small one leaks orphaned outputs.
// After a crash the index may therefore lag the forward map; it is advisory
// and never consulted for correctness.
type trackedSourceToOutputMap struct {
	forward  *mapping.PathMapping
	index    ports.OutputToTargetIndex
	targetID int
}

func (t *trackedSourceToOutputMap) SetOutputs(key string, values []string) error {
	err := t.forward.SetOutputs(key, values)
	if regErr := t.index.AddMappings(values, t.targetID); regErr != nil && err == nil {
		err = regErr
	}
	return err
}

func (t *trackedSourceToOutputMap) SetOutput(key, value string) error {
	err := t.forward.SetOutput(key, value)
	if regErr := t.index.AddMapping(value, t.targetID); regErr != nil && err == nil {
		err = regErr
	}
	return err
}

func (t *trackedSourceToOutputMap) AppendOutput(key, value string) (bool, error) {
	added, err := t.forward.AppendOutput(key, value)
	if regErr := t.index.AddMapping(value, t.targetID); regErr != nil && err == nil {
		err = regErr
	}
	return added, err
}

// RemoveOutput only touches the forward map. The same output may still be
// produced by another source of this target, so the index claim stays until
// the target's data is cleaned.
func (t *trackedSourceToOutputMap) RemoveOutput(key, value string) error {
	return t.forward.RemoveOutput(key, value)
}

func (t *trackedSourceToOutputMap) Remove(key string) error {
	return t.forward.Remove(key)
}

func (t *trackedSourceToOutputMap) Outputs(key string) ([]string, error) {
	return t.forward.Outputs(key)
}

func (t *trackedSourceToOutputMap) Keys(fn func(key string) bool) error {
	return t.forward.Keys(fn)
}

func (t *trackedSourceToOutputMap) Cursor() (ports.SourceCursor, error) {
	return t.forward.Cursor()
}
