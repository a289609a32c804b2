package flatfile_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/depot/internal/adapters/storage/flatfile"
	"go.trai.ch/depot/internal/core/domain"
)

func TestMap_PutGetDelete(t *testing.T) {
	m, err := flatfile.Open(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	require.NoError(t, m.Put([]byte("k"), []byte("v")))

	got, err := m.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, m.Delete([]byte("k")))
	got, err = m.Get([]byte("k"))
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is a no-op.
	require.NoError(t, m.Delete([]byte("k")))
}

func TestMap_SaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")

	m, err := flatfile.Open(path)
	require.NoError(t, err)
	require.NoError(t, m.Put([]byte("a"), []byte("1")))
	require.NoError(t, m.Put([]byte("b"), []byte("2")))
	require.NoError(t, m.Save())

	reopened, err := flatfile.Open(path)
	require.NoError(t, err)

	got, err := reopened.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
	got, err = reopened.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestMap_SaveSkipsWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")

	m, err := flatfile.Open(path)
	require.NoError(t, err)
	require.NoError(t, m.Save())

	// Nothing was written, so the file must not exist.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, []byte("not a map file"), 0o600))

	_, err := flatfile.Open(path)
	require.ErrorIs(t, err, domain.ErrDataCorrupted)
}

func TestMap_UpdateInsertAndDelete(t *testing.T) {
	m, err := flatfile.Open(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	// Insert through Update.
	require.NoError(t, m.Update([]byte("k"), func(old []byte) ([]byte, bool, error) {
		assert.Nil(t, old)
		return []byte("v1"), true, nil
	}))

	// Transform.
	require.NoError(t, m.Update([]byte("k"), func(old []byte) ([]byte, bool, error) {
		assert.Equal(t, []byte("v1"), old)
		return []byte("v2"), true, nil
	}))
	got, err := m.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	// Delete through Update.
	require.NoError(t, m.Update([]byte("k"), func(old []byte) ([]byte, bool, error) {
		return nil, false, nil
	}))
	got, err = m.Get([]byte("k"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMap_UpdateConcurrentCounters(t *testing.T) {
	m, err := flatfile.Open(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	const workers = 8
	const iterations = 100

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iterations {
				err := m.Update([]byte("counter"), func(old []byte) ([]byte, bool, error) {
					return append(old, byte(w)), true, nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	got, err := m.Get([]byte("counter"))
	require.NoError(t, err)
	assert.Len(t, got, workers*iterations, "every concurrent update must be applied exactly once")
}

func TestBackend_MapIsolationAndRemove(t *testing.T) {
	b := flatfile.New(t.TempDir())

	for i := range 3 {
		m, err := b.Map(fmt.Sprintf("target/%d/src-out", i))
		require.NoError(t, err)
		require.NoError(t, m.Put([]byte("k"), []byte("v")))
	}
	require.NoError(t, b.Flush(false))

	require.NoError(t, b.RemoveMaps("target/1"))

	m0, err := b.Map("target/0/src-out")
	require.NoError(t, err)
	got, err := m0.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got, "other targets' maps must survive RemoveMaps")

	m1, err := b.Map("target/1/src-out")
	require.NoError(t, err)
	got, err = m1.Get([]byte("k"))
	require.NoError(t, err)
	assert.Nil(t, got, "removed map must come back empty")
}
