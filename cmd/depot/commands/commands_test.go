package commands_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/depot/cmd/depot/commands"
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

func newTestCLI(t *testing.T, root string) (*commands.CLI, *app.App, *bytes.Buffer) {
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

	a := app.New(m, telemetry.NewNoOp(), logger.New())
	cli := commands.New(a)

	var out bytes.Buffer
	cli.SetOutput(&out)
	return cli, a, &out
}

func TestVersionCommand(t *testing.T) {
	cli, _, out := newTestCLI(t, t.TempDir())

	cli.SetArgs([]string{"version"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, out.String(), "depot version")
}

func TestInspectCommand(t *testing.T) {
	root := t.TempDir()
	cli, a, out := newTestCLI(t, root)

	target := domain.NewTarget("java-production", "moduleA")
	srcOut, err := a.Manager().SourceToOutputMap(target)
	require.NoError(t, err)
	src := filepath.Join(root, "src", "Foo.java")
	require.NoError(t, srcOut.SetOutput(src, filepath.Join(root, "out", "Foo.class")))

	cli.SetArgs([]string{"inspect", "java-production", "moduleA"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, out.String(), "java-production:moduleA")
	assert.Contains(t, out.String(), "Foo.class")
}

func TestInspectCommandUnknownTarget(t *testing.T) {
	cli, _, _ := newTestCLI(t, t.TempDir())

	cli.SetArgs([]string{"inspect", "java-production", "ghost"})
	err := cli.Execute(context.Background())
	assert.ErrorIs(t, err, domain.ErrTargetUnknown)
}

func TestVerifyCommand(t *testing.T) {
	cli, _, out := newTestCLI(t, t.TempDir())

	cli.SetArgs([]string{"verify"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, out.String(), "no inconsistencies found")
}

func TestCleanCommand(t *testing.T) {
	cli, _, out := newTestCLI(t, t.TempDir())

	cli.SetArgs([]string{"clean"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, out.String(), "build data cleaned")
}

func TestStatsCommand(t *testing.T) {
	root := t.TempDir()
	cli, a, out := newTestCLI(t, root)

	_, err := a.Manager().SourceToOutputMap(domain.NewTarget("java-production", "moduleA"))
	require.NoError(t, err)

	cli.SetArgs([]string{"stats"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, out.String(), "high-water mark: 1")
	assert.Contains(t, out.String(), "java-production: 1 targets")
}
