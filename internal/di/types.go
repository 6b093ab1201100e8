// Package di provides dependency injection wiring for the application.
package di

import (
	"github.com/tzagara/curvecast/internal/clients/pricefeed"
	"github.com/tzagara/curvecast/internal/database"
	"github.com/tzagara/curvecast/internal/domain"
	"github.com/tzagara/curvecast/internal/modules/consensus"
	"github.com/tzagara/curvecast/internal/modules/forecast"
	"github.com/tzagara/curvecast/internal/modules/leaderboard"
	"github.com/tzagara/curvecast/internal/modules/performance"
	"github.com/tzagara/curvecast/internal/modules/settlement"
	"github.com/tzagara/curvecast/internal/modules/users"
)

// Container holds all application dependencies. It is the single source of
// truth for databases, repositories and services, created by Wire() and
// handed to the server and scheduler.
type Container struct {
	// Databases
	EngineDB  *database.DB // users, forecasts, consensus
	HistoryDB *database.DB // performance snapshots

	// Shared collaborators
	Clock     domain.Clock
	PriceFeed domain.PriceFeed

	// Repositories
	UserRepo        *users.Repository
	ForecastRepo    *forecast.Repository
	ConsensusRepo   *consensus.Repository
	LeaderboardRepo *leaderboard.Repository
	PerformanceRepo *performance.Repository

	// Services
	ConsensusAggregator *consensus.Aggregator
	ForecastService     *forecast.Service
	SettlementService   *settlement.Service
	LeaderboardService  *leaderboard.Service
	PerformanceService  *performance.Service

	// Price feed client (also exposed through PriceFeed)
	PriceFeedClient *pricefeed.Client
}

// Close releases the container's database connections
func (c *Container) Close() {
	if c.HistoryDB != nil {
		_ = c.HistoryDB.Close()
	}
	if c.EngineDB != nil {
		_ = c.EngineDB.Close()
	}
}
