package relativizer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/depot/internal/adapters/config" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
)

const NodeID graft.ID = "adapter.relativizer"

func init() {
	graft.Register(graft.Node[ports.Relativizer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.Relativizer, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return New(settings), nil
		},
	})
}
