package manager

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// baseFormatVersion is bumped whenever the on-disk layout of any storage
// changes incompatibly. Optional features shift the effective version so
// toggling them also forces a rebuild.
const (
	baseFormatVersion        = 39
	compressionVersionOffset = 1
	depGraphVersionOffset    = 2
)

const versionFileName = "version.dat"

// formatVersion is the effective version of this data root's layout.
func (m *Manager) formatVersion() int32 {
	v := int32(baseFormatVersion + depGraphVersionOffset)
	if m.settings.Compression {
		v += compressionVersionOffset
	}
	return v
}

func (m *Manager) versionFilePath() string {
	return filepath.Join(m.settings.DataDir, versionFileName)
}

// VersionDiffers reports whether the data root was written by an
// incompatible layout version. A missing version file means a fresh data
// root and reports false; an unreadable one reports true. A mismatch is a
// full-rebuild signal, never an error. The answer is cached.
func (m *Manager) VersionDiffers() bool {
	m.versionMu.Lock()
	defer m.versionMu.Unlock()
	if m.versionKnown {
		return m.versionStale
	}

	data, err := os.ReadFile(m.versionFilePath())
	switch {
	case os.IsNotExist(err):
		m.versionStale = false
	case err != nil || len(data) != 4:
		m.versionStale = true
	default:
		m.versionStale = int32(binary.BigEndian.Uint32(data)) != m.formatVersion()
	}
	m.versionKnown = true
	return m.versionStale
}

// SaveVersion stamps the data root with the current layout version. The
// write is skipped when the version is already known to match.
func (m *Manager) SaveVersion() error {
	m.versionMu.Lock()
	defer m.versionMu.Unlock()
	if m.versionKnown && !m.versionStale {
		return nil
	}

	if err := os.MkdirAll(m.settings.DataDir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create data root")
	}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(m.formatVersion()))
	if err := os.WriteFile(m.versionFilePath(), buf, 0o600); err != nil {
		return zerr.Wrap(err, "failed to write version stamp")
	}
	m.versionKnown = true
	m.versionStale = false
	return nil
}
