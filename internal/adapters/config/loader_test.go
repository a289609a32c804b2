package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/depot/internal/adapters/config"
	"go.trai.ch/depot/internal/core/domain"
)

func TestLoad_Success(t *testing.T) {
	content := `
dataDir: /var/build/depot
projectRoot: /home/ci/project
backend: bolt
compression: true
checkCollisions: true
extraRoots:
  MAVEN_REPOSITORY: /home/ci/.m2
`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "depot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	settings, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/build/depot", settings.DataDir)
	assert.Equal(t, "/home/ci/project", settings.ProjectRoot)
	assert.Equal(t, domain.BackendBolt, settings.Backend)
	assert.True(t, settings.Compression)
	assert.True(t, settings.CheckCollisions)
	assert.Equal(t, "/home/ci/.m2", settings.ExtraRoots["MAVEN_REPOSITORY"])
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	settings, err := config.Load(filepath.Join(tmpDir, "depot.yaml"))
	require.NoError(t, err)

	assert.Equal(t, tmpDir, settings.ProjectRoot)
	assert.Equal(t, filepath.Join(tmpDir, ".depot"), settings.DataDir)
	assert.Equal(t, domain.BackendFlatFile, settings.Backend)
	assert.False(t, settings.Compression)
}

func TestLoad_UnknownBackend(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "depot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: leveldb\n"), 0o600))

	_, err := config.Load(path)
	require.ErrorIs(t, err, domain.ErrUnknownBackend)
}

func TestLoad_EnvOverridesCollisionCheck(t *testing.T) {
	t.Setenv(config.CheckCollisionsEnv, "true")

	settings, err := config.Load(filepath.Join(t.TempDir(), "depot.yaml"))
	require.NoError(t, err)
	assert.True(t, settings.CheckCollisions)
}

func TestLoad_EnvOverridesDataDir(t *testing.T) {
	override := filepath.Join(t.TempDir(), "elsewhere")
	t.Setenv(config.DataDirEnv, override)

	settings, err := config.Load(filepath.Join(t.TempDir(), "depot.yaml"))
	require.NoError(t, err)
	assert.Equal(t, override, settings.DataDir)
}

func TestLoader_EnvSelectsSettingsFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "ci.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: bolt\n"), 0o600))
	t.Setenv(config.SettingsFileEnv, path)

	loader := &config.FileSettingsLoader{Filename: "depot.yaml"}
	settings, err := loader.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, domain.BackendBolt, settings.Backend)
}

func TestLoad_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "depot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataDir: [unclosed"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
