package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/depot/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/depot/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/depot/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
	"go.trai.ch/depot/internal/engine/manager"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles everything the CLI entry point needs.
type Components struct {
	App      *App
	Logger   ports.Logger
	Settings *domain.Settings
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{manager.NodeID, telemetry.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*App, error) {
			m, err := graft.Dep[*manager.Manager](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(m, tel, log), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID, config.SettingsNodeID},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log, Settings: settings}, nil
		},
	})
}
