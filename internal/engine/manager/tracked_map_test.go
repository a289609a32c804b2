package manager_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/depot/internal/adapters/fs"
	"go.trai.ch/depot/internal/adapters/logger"
	"go.trai.ch/depot/internal/adapters/relativizer"
	"go.trai.ch/depot/internal/adapters/storage/flatfile"
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/depot/internal/core/ports/mocks"
	"go.trai.ch/depot/internal/engine/manager"
	"go.trai.ch/depot/internal/engine/targets"
	"go.trai.ch/zerr"
)

// The reverse index must learn about outputs even when the forward write
// fails, so a crash-interrupted build can still find its orphans.
func TestOutputsRegisteredDespiteForwardFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	settings := testSettings(root)

	// Real maps for everything except the target's forward map, which fails
	// on write.
	real := flatfile.New(filepath.Join(settings.DataDir, "maps"))
	t.Cleanup(func() { _ = real.Close() })

	writeErr := zerr.New("disk full")
	broken := mocks.NewMockByteMap(ctrl)
	broken.EXPECT().Put(gomock.Any(), gomock.Any()).Return(writeErr)

	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().Map(gomock.Any()).DoAndReturn(func(name string) (ports.ByteMap, error) {
		if name == "target/1/src-out" {
			return broken, nil
		}
		return real.Map(name)
	}).AnyTimes()
	backend.EXPECT().Close().Return(nil).AnyTimes()

	loader := func(typeID, id string) (domain.Target, bool) {
		return domain.NewTarget(typeID, id), true
	}
	state, err := targets.Load(filepath.Join(settings.DataDir, "targets"), loader, logger.New())
	require.NoError(t, err)

	m, err := manager.New(settings, backend, relativizer.New(settings), state, fs.NewHasher(), logger.New())
	require.NoError(t, err)
	defer m.Close() //nolint:errcheck // Cleanup

	target := domain.NewTarget("java-production", "moduleA")
	srcOut, err := m.SourceToOutputMap(target)
	require.NoError(t, err)

	out := filepath.Join(root, "out", "Foo.class")
	err = srcOut.SetOutput(filepath.Join(root, "src", "Foo.java"), out)
	assert.ErrorIs(t, err, writeErr, "the forward failure is reported")

	owners, err := m.OutputToTargetIndex().TargetIDs(out)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, owners, "the output is registered regardless")
}
