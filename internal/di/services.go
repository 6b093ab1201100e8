package di

import (
	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/clients/pricefeed"
	"github.com/tzagara/curvecast/internal/config"
	"github.com/tzagara/curvecast/internal/domain"
	"github.com/tzagara/curvecast/internal/modules/consensus"
	"github.com/tzagara/curvecast/internal/modules/forecast"
	"github.com/tzagara/curvecast/internal/modules/leaderboard"
	"github.com/tzagara/curvecast/internal/modules/performance"
	"github.com/tzagara/curvecast/internal/modules/settlement"
)

// InitializeServices wires the business logic layer on top of the
// repositories
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) {
	container.Clock = domain.SystemClock{}

	container.PriceFeedClient = pricefeed.NewClient(pricefeed.Options{
		BaseURL: cfg.PriceFeedURL,
	}, container.Clock, log)
	container.PriceFeed = container.PriceFeedClient

	container.ConsensusAggregator = consensus.NewAggregator(container.ConsensusRepo, log)

	container.ForecastService = forecast.NewService(
		container.ForecastRepo,
		container.UserRepo,
		container.ConsensusAggregator,
		container.Clock,
		log,
	)

	container.SettlementService = settlement.NewService(
		container.ForecastRepo,
		container.PriceFeed,
		container.Clock,
		settlement.Settings{
			MinEarlyCloseProgress: cfg.Engine.MinEarlyCloseProgress,
			MinScoringProgress:    cfg.Engine.MinScoringProgress,
			PayoffMinMultiple:     cfg.Engine.PayoffMinMultiple,
			PayoffMaxMultiple:     cfg.Engine.PayoffMaxMultiple,
		},
		log,
	)

	container.LeaderboardService = leaderboard.NewService(
		container.LeaderboardRepo,
		container.Clock,
		cfg.Engine.HalfLifeDays,
		log,
	)

	container.PerformanceService = performance.NewService(
		container.PerformanceRepo,
		container.UserRepo,
		container.ForecastRepo,
		container.LeaderboardService,
		container.Clock,
		log,
	)
}
