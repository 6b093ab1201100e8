package di

import (
	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/modules/consensus"
	"github.com/tzagara/curvecast/internal/modules/forecast"
	"github.com/tzagara/curvecast/internal/modules/leaderboard"
	"github.com/tzagara/curvecast/internal/modules/performance"
	"github.com/tzagara/curvecast/internal/modules/users"
)

// InitializeRepositories wires the data access layer
func InitializeRepositories(container *Container, log zerolog.Logger) {
	engine := container.EngineDB.Conn()

	container.UserRepo = users.NewRepository(engine, log)
	container.ForecastRepo = forecast.NewRepository(engine, log)
	container.ConsensusRepo = consensus.NewRepository(engine, log)
	container.LeaderboardRepo = leaderboard.NewRepository(engine, log)
	container.PerformanceRepo = performance.NewRepository(container.HistoryDB.Conn(), log)
}
