package ports

import "go.trai.ch/depot/internal/core/domain"

// SettingsLoader reads the store configuration.
//
//go:generate mockgen -source=settings_loader.go -destination=mocks/mock_settings_loader.go -package=mocks
type SettingsLoader interface {
	// Load reads settings from the given working directory, applying
	// defaults for anything unset.
	Load(cwd string) (*domain.Settings, error)
}
