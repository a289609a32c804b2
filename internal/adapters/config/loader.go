// Package config provides the settings loader for depot.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// CheckCollisionsEnv overrides the collision-check flag from the
	// environment, mirroring the settings file field.
	CheckCollisionsEnv = "DEPOT_CHECK_COLLISIONS"
	// SettingsFileEnv points at an alternative settings file.
	SettingsFileEnv = "DEPOT_CONFIG"
	// DataDirEnv overrides the data directory from the settings file.
	DataDirEnv = "DEPOT_DATA_DIR"
)

// FileSettingsLoader implements ports.SettingsLoader using a YAML file.
type FileSettingsLoader struct {
	Filename string
}

// Load reads the settings from the given working directory. A missing file
// yields defaults; a malformed one is an error.
func (l *FileSettingsLoader) Load(cwd string) (*domain.Settings, error) {
	path := filepath.Join(cwd, l.Filename)
	if env := os.Getenv(SettingsFileEnv); env != "" {
		path = env
	}
	return Load(path)
}

// Depotfile represents the structure of the depot.yaml settings file.
type Depotfile struct {
	DataDir         string            `yaml:"dataDir"`
	ProjectRoot     string            `yaml:"projectRoot"`
	Backend         string            `yaml:"backend"`
	Compression     bool              `yaml:"compression"`
	CheckCollisions bool              `yaml:"checkCollisions"`
	ExtraRoots      map[string]string `yaml:"extraRoots"`
}

// Load reads a settings file from the given path and returns domain.Settings.
func Load(path string) (*domain.Settings, error) {
	var depotfile Depotfile

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.Wrap(err, "failed to read settings file")
		}
	} else if err := yaml.Unmarshal(data, &depotfile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse settings file")
	}

	settings := &domain.Settings{
		DataDir:         depotfile.DataDir,
		ProjectRoot:     depotfile.ProjectRoot,
		Backend:         depotfile.Backend,
		Compression:     depotfile.Compression,
		CheckCollisions: depotfile.CheckCollisions,
		ExtraRoots:      depotfile.ExtraRoots,
	}
	applyDefaults(settings, filepath.Dir(path))

	if !settings.BackendKnown() {
		return nil, zerr.With(domain.ErrUnknownBackend, "backend", settings.Backend)
	}
	return settings, nil
}

func applyDefaults(s *domain.Settings, cwd string) {
	if s.ProjectRoot == "" {
		s.ProjectRoot = cwd
	}
	if s.DataDir == "" {
		s.DataDir = filepath.Join(s.ProjectRoot, ".depot")
	}
	if s.Backend == "" {
		s.Backend = domain.BackendFlatFile
	}
	if env := os.Getenv(DataDirEnv); env != "" {
		s.DataDir = env
	}
	if v, ok := os.LookupEnv(CheckCollisionsEnv); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.CheckCollisions = b
		}
	}
}
