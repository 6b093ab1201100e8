package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/config"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations: databases, repositories, services.
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	InitializeRepositories(container, log)
	InitializeServices(container, cfg, log)

	log.Info().Msg("Dependency injection wiring completed")
	return container, nil
}
