package manager

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/depot/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/depot/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/depot/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/depot/internal/adapters/relativizer"
	"go.trai.ch/depot/internal/adapters/storage"
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/depot/internal/engine/targets"
)

const NodeID graft.ID = "engine.manager"

func init() {
	graft.Register(graft.Node[*Manager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.SettingsNodeID,
			storage.NodeID,
			relativizer.NodeID,
			targets.NodeID,
			fs.HasherNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Manager, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			backend, err := graft.Dep[ports.Backend](ctx)
			if err != nil {
				return nil, err
			}
			rel, err := graft.Dep[ports.Relativizer](ctx)
			if err != nil {
				return nil, err
			}
			state, err := graft.Dep[*targets.State](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.FileHasher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(settings, backend, rel, state, hasher, log)
		},
	})
}
