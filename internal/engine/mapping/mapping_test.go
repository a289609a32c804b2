package mapping_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/depot/internal/adapters/logger"
	"go.trai.ch/depot/internal/adapters/relativizer"
	"go.trai.ch/depot/internal/adapters/storage/flatfile"
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/depot/internal/engine/mapping"
)

func newTestMapping(t *testing.T) (*mapping.PathMapping, ports.Relativizer, string) {
	t.Helper()

	root := t.TempDir()
	backend := flatfile.New(filepath.Join(root, "maps"))
	t.Cleanup(func() { _ = backend.Close() })

	m, err := backend.Map("target/1/src-out")
	require.NoError(t, err)

	rel := relativizer.New(&domain.Settings{ProjectRoot: root, DataDir: filepath.Join(root, ".depot")})
	return mapping.NewPathMapping(m, rel), rel, root
}

func TestPathMappingSetAndGet(t *testing.T) {
	pm, _, root := newTestMapping(t)

	src := filepath.Join(root, "src", "Foo.java")
	outs := []string{
		filepath.Join(root, "out", "Foo.class"),
		filepath.Join(root, "out", "Foo$Inner.class"),
	}
	require.NoError(t, pm.SetOutputs(src, outs))

	got, err := pm.Outputs(src)
	require.NoError(t, err)
	assert.Equal(t, outs, got, "outputs must round-trip in insertion order as full paths")
}

func TestPathMappingMissingKeyIsNil(t *testing.T) {
	pm, _, root := newTestMapping(t)

	got, err := pm.Outputs(filepath.Join(root, "src", "Nope.java"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPathMappingEmptyEntryIsNotNil(t *testing.T) {
	pm, _, root := newTestMapping(t)

	src := filepath.Join(root, "src", "package-info.java")
	require.NoError(t, pm.SetOutputs(src, nil))

	got, err := pm.Outputs(src)
	require.NoError(t, err)
	require.NotNil(t, got, "an entry with no outputs is distinct from a missing entry")
	assert.Empty(t, got)
}

func TestPathMappingAppendOutput(t *testing.T) {
	pm, _, root := newTestMapping(t)

	src := filepath.Join(root, "src", "Foo.java")
	out := filepath.Join(root, "out", "Foo.class")

	added, err := pm.AppendOutput(src, out)
	require.NoError(t, err)
	assert.True(t, added)

	// Appending the same value again must not duplicate it.
	added, err = pm.AppendOutput(src, out)
	require.NoError(t, err)
	assert.False(t, added)

	got, err := pm.Outputs(src)
	require.NoError(t, err)
	assert.Equal(t, []string{out}, got)
}

func TestPathMappingRemoveOutput(t *testing.T) {
	pm, _, root := newTestMapping(t)

	src := filepath.Join(root, "src", "Foo.java")
	outA := filepath.Join(root, "out", "Foo.class")
	outB := filepath.Join(root, "out", "Foo$Inner.class")
	require.NoError(t, pm.SetOutputs(src, []string{outA, outB}))

	require.NoError(t, pm.RemoveOutput(src, outB))
	got, err := pm.Outputs(src)
	require.NoError(t, err)
	assert.Equal(t, []string{outA}, got)

	// Removing the last value removes the key entirely.
	require.NoError(t, pm.RemoveOutput(src, outA))
	got, err = pm.Outputs(src)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Absent key and absent value are both no-ops.
	require.NoError(t, pm.RemoveOutput(src, outA))
	require.NoError(t, pm.RemoveOutput(filepath.Join(root, "src", "Bar.java"), outA))
}

func TestPathMappingRemove(t *testing.T) {
	pm, _, root := newTestMapping(t)

	src := filepath.Join(root, "src", "Foo.java")
	require.NoError(t, pm.SetOutput(src, filepath.Join(root, "out", "Foo.class")))
	require.NoError(t, pm.Remove(src))

	got, err := pm.Outputs(src)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPathMappingCursor(t *testing.T) {
	pm, _, root := newTestMapping(t)

	srcA := filepath.Join(root, "src", "A.java")
	srcB := filepath.Join(root, "src", "B.java")
	require.NoError(t, pm.SetOutput(srcA, filepath.Join(root, "out", "A.class")))
	require.NoError(t, pm.SetOutputs(srcB, nil))

	cur, err := pm.Cursor()
	require.NoError(t, err)

	seen := map[string][]string{}
	for cur.Next() {
		seen[cur.Source()] = cur.Outputs()
	}

	require.Len(t, seen, 2)
	assert.Equal(t, []string{filepath.Join(root, "out", "A.class")}, seen[srcA])
	assert.NotNil(t, seen[srcB], "cursor outputs are never nil")
	assert.Empty(t, seen[srcB])
}

func TestPathMappingKeysAreRelativized(t *testing.T) {
	pm, rel, root := newTestMapping(t)

	src := filepath.Join(root, "deep", "nested", "Foo.java")
	require.NoError(t, pm.SetOutput(src, filepath.Join(root, "out", "Foo.class")))

	assert.NotEqual(t, src, rel.ToRelative(src), "project paths must shorten under the project macro")

	var keys []string
	require.NoError(t, pm.Keys(func(key string) bool {
		keys = append(keys, key)
		return true
	}))
	assert.Equal(t, []string{src}, keys, "Keys resolves stored keys back to full paths")
}

func newTestIndex(t *testing.T, checkCollisions bool) (*mapping.OutputIndex, string) {
	t.Helper()

	root := t.TempDir()
	backend := flatfile.New(filepath.Join(root, "maps"))
	t.Cleanup(func() { _ = backend.Close() })

	m, err := backend.Map("out-target")
	require.NoError(t, err)

	rel := relativizer.New(&domain.Settings{ProjectRoot: root, DataDir: filepath.Join(root, ".depot")})
	return mapping.NewOutputIndex(m, rel, logger.New(), checkCollisions), root
}

func TestOutputIndexAddAndQuery(t *testing.T) {
	idx, root := newTestIndex(t, false)

	out := filepath.Join(root, "out", "Foo.class")
	require.NoError(t, idx.AddMapping(out, 7))
	require.NoError(t, idx.AddMapping(out, 3))
	require.NoError(t, idx.AddMapping(out, 7))

	ids, err := idx.TargetIDs(out)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, ids, "ids are deduplicated and sorted")
}

func TestOutputIndexUnknownOutput(t *testing.T) {
	idx, root := newTestIndex(t, false)

	ids, err := idx.TargetIDs(filepath.Join(root, "out", "Nope.class"))
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestOutputIndexRemove(t *testing.T) {
	idx, root := newTestIndex(t, false)

	out := filepath.Join(root, "out", "Foo.class")
	require.NoError(t, idx.AddMapping(out, 3))
	require.NoError(t, idx.AddMapping(out, 7))

	require.NoError(t, idx.RemoveMapping(out, 3))
	ids, err := idx.TargetIDs(out)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, ids)

	require.NoError(t, idx.RemoveMapping(out, 7))
	ids, err = idx.TargetIDs(out)
	require.NoError(t, err)
	assert.Nil(t, ids, "removing the last claim removes the entry")

	require.NoError(t, idx.RemoveMapping(out, 7))
}

func TestOutputIndexBatchOperations(t *testing.T) {
	idx, root := newTestIndex(t, false)

	outs := []string{
		filepath.Join(root, "out", "A.class"),
		filepath.Join(root, "out", "B.class"),
	}
	require.NoError(t, idx.AddMappings(outs, 5))

	for _, out := range outs {
		ids, err := idx.TargetIDs(out)
		require.NoError(t, err)
		assert.Equal(t, []int{5}, ids)
	}

	require.NoError(t, idx.RemoveTargetIDs(outs, 5))
	for _, out := range outs {
		ids, err := idx.TargetIDs(out)
		require.NoError(t, err)
		assert.Nil(t, ids)
	}
}

func TestOutputIndexCollisionCheck(t *testing.T) {
	idx, root := newTestIndex(t, true)

	out := filepath.Join(root, "out", "Foo.class")
	require.NoError(t, idx.AddMapping(out, 3))

	err := idx.AddMapping(out, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOutputCollision)

	// The colliding claim must not have been recorded.
	ids, err := idx.TargetIDs(out)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, ids)
}

func TestOutputIndexCollisionCheckAllowsReclaim(t *testing.T) {
	idx, root := newTestIndex(t, true)

	out := filepath.Join(root, "out", "Foo.class")
	require.NoError(t, idx.AddMapping(out, 3))
	require.NoError(t, idx.AddMapping(out, 3), "re-adding the same target is never a collision")
}
