package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/config"
	"github.com/tzagara/curvecast/internal/database"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// engine.db - users, forecasts and per-symbol consensus
	engineDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/engine.db",
		Profile: database.ProfileLedger, // token balances live here
		Name:    "engine",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine database: %w", err)
	}
	container.EngineDB = engineDB

	// history.db - append-only performance snapshots
	historyDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/history.db",
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		_ = engineDB.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}
	container.HistoryDB = historyDB

	for _, db := range []*database.DB{engineDB, historyDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases initialized")
	return container, nil
}
