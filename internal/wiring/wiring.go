// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/depot/internal/adapters/config"
	_ "go.trai.ch/depot/internal/adapters/fs"
	_ "go.trai.ch/depot/internal/adapters/logger"
	_ "go.trai.ch/depot/internal/adapters/relativizer"
	_ "go.trai.ch/depot/internal/adapters/storage"
	_ "go.trai.ch/depot/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/depot/internal/app"
	_ "go.trai.ch/depot/internal/engine/manager"
	_ "go.trai.ch/depot/internal/engine/targets"
)
