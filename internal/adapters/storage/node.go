// Package storage selects the configured storage backend.
package storage

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/depot/internal/adapters/config" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/depot/internal/adapters/storage/boltdb"
	"go.trai.ch/depot/internal/adapters/storage/flatfile"
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/zerr"
)

const NodeID graft.ID = "adapter.storage_backend"

// ForSettings constructs the backend named in the settings, rooted inside
// the data directory.
func ForSettings(settings *domain.Settings) (ports.Backend, error) {
	switch settings.Backend {
	case domain.BackendFlatFile:
		return flatfile.New(filepath.Join(settings.DataDir, "maps")), nil
	case domain.BackendBolt:
		return boltdb.Open(filepath.Join(settings.DataDir, "depot.db"))
	default:
		return nil, zerr.With(domain.ErrUnknownBackend, "backend", settings.Backend)
	}
}

func init() {
	graft.Register(graft.Node[ports.Backend]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.Backend, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return ForSettings(settings)
		},
	})
}
