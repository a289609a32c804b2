package targets

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/depot/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/depot/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
)

const NodeID graft.ID = "engine.targets_state"

func init() {
	graft.Register(graft.Node[*State]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*State, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			// The CLI has no project model to resolve string ids against;
			// every persisted target stays live and nothing is parked.
			loader := func(typeID, id string) (domain.Target, bool) {
				return domain.NewTarget(typeID, id), true
			}
			return Load(filepath.Join(settings.DataDir, "targets"), loader, log)
		},
	})
}
