package mapping

import (
	"slices"

	"go.trai.ch/zerr"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
)

var _ ports.OutputToTargetIndex = (*OutputIndex)(nil)

// OutputIndex is the reverse index from output path to the integer ids of the
// targets that produced it. It is advisory: writers keep it in sync on a
// best-effort basis and cleanup code treats it as a hint, never as truth.
type OutputIndex struct {
	m   ports.ByteMap
	rel ports.Relativizer
	log ports.Logger

	// checkCollisions turns a second target claiming the same output into a
	// hard error instead of a logged overwrite.
	checkCollisions bool
}

// NewOutputIndex creates an OutputIndex over the given byte map.
func NewOutputIndex(m ports.ByteMap, rel ports.Relativizer, log ports.Logger, checkCollisions bool) *OutputIndex {
	return &OutputIndex{m: m, rel: rel, log: log, checkCollisions: checkCollisions}
}

// Reset rebinds the index to a fresh byte map, used after the data root was
// wiped.
func (o *OutputIndex) Reset(m ports.ByteMap) {
	o.m = m
}

// AddMapping registers the output as produced by targetID.
func (o *OutputIndex) AddMapping(output string, targetID int) error {
	return o.m.Update([]byte(o.rel.ToRelative(output)), func(old []byte) ([]byte, bool, error) {
		if old == nil {
			return EncodeIDs([]int{targetID}), true, nil
		}
		ids, err := DecodeIDs(old)
		if err != nil {
			return nil, false, err
		}
		idx, found := slices.BinarySearch(ids, targetID)
		if found {
			return old, true, nil
		}
		if len(ids) > 0 {
			if o.checkCollisions {
				return nil, false, zerr.With(
					zerr.Wrap(domain.ErrOutputCollision, "output already produced by another target"),
					"output", output,
				)
			}
			o.log.Warn("output claimed by multiple targets: " + output)
		}
		return EncodeIDs(slices.Insert(ids, idx, targetID)), true, nil
	})
}

// AddMappings registers several outputs at once.
func (o *OutputIndex) AddMappings(outputs []string, targetID int) error {
	for _, output := range outputs {
		if err := o.AddMapping(output, targetID); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMapping withdraws targetID's claim on output. Removing the last
// claim removes the entry.
func (o *OutputIndex) RemoveMapping(output string, targetID int) error {
	return o.m.Update([]byte(o.rel.ToRelative(output)), func(old []byte) ([]byte, bool, error) {
		if old == nil {
			return nil, false, nil
		}
		ids, err := DecodeIDs(old)
		if err != nil {
			return nil, false, err
		}
		idx, found := slices.BinarySearch(ids, targetID)
		if !found {
			return old, true, nil
		}
		if len(ids) == 1 {
			return nil, false, nil
		}
		return EncodeIDs(slices.Delete(ids, idx, idx+1)), true, nil
	})
}

// RemoveTargetIDs withdraws targetID's claim on all given outputs.
func (o *OutputIndex) RemoveTargetIDs(outputs []string, targetID int) error {
	for _, output := range outputs {
		if err := o.RemoveMapping(output, targetID); err != nil {
			return err
		}
	}
	return nil
}

// TargetIDs returns the ids of all targets claiming the output, sorted
// ascending. An unknown output yields nil.
func (o *OutputIndex) TargetIDs(output string) ([]int, error) {
	data, err := o.m.Get([]byte(o.rel.ToRelative(output)))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return DecodeIDs(data)
}
