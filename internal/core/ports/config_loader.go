package ports

import "go.trai.ch/ripple/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at the given path and returns the
	// compile tasks it declares.
	Load(path string) ([]*domain.Task, error)
}
