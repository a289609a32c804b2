package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
)

const (
	// NodeID identifies the settings loader node.
	NodeID graft.ID = "adapter.settings_loader"
	// SettingsNodeID identifies the loaded settings node.
	SettingsNodeID graft.ID = "adapter.settings"
)

func init() {
	graft.Register(graft.Node[ports.SettingsLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.SettingsLoader, error) {
			return &FileSettingsLoader{Filename: "depot.yaml"}, nil
		},
	})

	graft.Register(graft.Node[*domain.Settings]{
		ID:        SettingsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (*domain.Settings, error) {
			loader, err := graft.Dep[ports.SettingsLoader](ctx)
			if err != nil {
				return nil, err
			}
			return loader.Load(".")
		},
	})
}
