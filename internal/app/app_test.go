package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/depot/internal/adapters/fs"
	"go.trai.ch/depot/internal/adapters/logger"
	"go.trai.ch/depot/internal/adapters/relativizer"
	"go.trai.ch/depot/internal/adapters/storage"
	"go.trai.ch/depot/internal/adapters/telemetry"
	"go.trai.ch/depot/internal/app"
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/engine/manager"
	"go.trai.ch/depot/internal/engine/targets"
)

func newTestApp(t *testing.T, root string) *app.App {
	t.Helper()

	settings := &domain.Settings{
		ProjectRoot: root,
		DataDir:     filepath.Join(root, ".depot"),
		Backend:     domain.BackendFlatFile,
	}
	backend, err := storage.ForSettings(settings)
	require.NoError(t, err)

	loader := func(typeID, id string) (domain.Target, bool) {
		return domain.NewTarget(typeID, id), true
	}
	state, err := targets.Load(filepath.Join(settings.DataDir, "targets"), loader, logger.New())
	require.NoError(t, err)

	m, err := manager.New(settings, backend, relativizer.New(settings), state, fs.NewHasher(), logger.New())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	return app.New(m, telemetry.NewNoOp(), logger.New())
}

func recordOutput(t *testing.T, a *app.App, target domain.Target, src string, outs ...string) {
	t.Helper()
	srcOut, err := a.Manager().SourceToOutputMap(target)
	require.NoError(t, err)
	require.NoError(t, srcOut.SetOutputs(src, outs))
}

func TestInspect(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root)

	target := domain.NewTarget("java-production", "moduleA")
	src := filepath.Join(root, "src", "Foo.java")
	out := filepath.Join(root, "out", "Foo.class")
	recordOutput(t, a, target, src, out)

	report, err := a.Inspect(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, target, report.Target)
	require.Len(t, report.Sources, 1)
	assert.Equal(t, src, report.Sources[0].Source)
	assert.Equal(t, []string{out}, report.Sources[0].Outputs)
}

func TestInspectUnknownTarget(t *testing.T) {
	a := newTestApp(t, t.TempDir())

	_, err := a.Inspect(context.Background(), domain.NewTarget("java-production", "ghost"))
	assert.ErrorIs(t, err, domain.ErrTargetUnknown)
}

func TestStats(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root)

	recordOutput(t, a, domain.NewTarget("java-production", "moduleA"),
		filepath.Join(root, "src", "A.java"), filepath.Join(root, "out", "A.class"))
	recordOutput(t, a, domain.NewTarget("java-test", "moduleA"),
		filepath.Join(root, "test", "ATest.java"), filepath.Join(root, "out", "ATest.class"))
	require.NoError(t, a.Manager().TargetsState().SetAverageBuildTime("java-production", 1200))

	stats, err := a.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.MaxTargetID)
	require.Len(t, stats.Types, 2)

	byType := map[string]app.TypeStats{}
	for _, ts := range stats.Types {
		byType[ts.TypeID] = ts
	}
	assert.Equal(t, 1, byType["java-production"].LiveTargets)
	assert.EqualValues(t, 1200, byType["java-production"].AverageBuildTimeMs)
	assert.EqualValues(t, -1, byType["java-test"].AverageBuildTimeMs)
}

func TestVerifyCleanStore(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root)

	recordOutput(t, a, domain.NewTarget("java-production", "moduleA"),
		filepath.Join(root, "src", "Foo.java"), filepath.Join(root, "out", "Foo.class"))

	report, err := a.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TargetsChecked)
	assert.Equal(t, 1, report.OutputsChecked)
	assert.Empty(t, report.Issues)
}

func TestVerifyDetectsMissingIndexEntry(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root)

	target := domain.NewTarget("java-production", "moduleA")
	src := filepath.Join(root, "src", "Foo.java")
	out := filepath.Join(root, "out", "Foo.class")
	recordOutput(t, a, target, src, out)

	// Withdraw the index entry behind the forward map's back.
	id, err := a.Manager().TargetsState().TargetID(target)
	require.NoError(t, err)
	require.NoError(t, a.Manager().OutputToTargetIndex().RemoveMapping(out, id))

	report, err := a.Verify(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, out, report.Issues[0].Output)
	assert.Equal(t, target, report.Issues[0].Target)
}

func TestCleanAll(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root)

	target := domain.NewTarget("java-production", "moduleA")
	src := filepath.Join(root, "src", "Foo.java")
	recordOutput(t, a, target, src, filepath.Join(root, "out", "Foo.class"))

	require.NoError(t, a.CleanAll(context.Background()))

	report, err := a.Verify(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.TargetsChecked)

	_, err = a.Inspect(context.Background(), target)
	assert.ErrorIs(t, err, domain.ErrTargetUnknown)
}
